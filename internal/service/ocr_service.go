package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buildflow/internal/metrics"
	"buildflow/internal/model"
	"buildflow/internal/websocket"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OCRPlaceholderText is merged into the bill until a real extraction backend
// replaces the stub.
const OCRPlaceholderText = "SCAN_RECEIVED_EXTRACTION_PENDING"

// ScanRef identifies the bill a storage object belongs to.
type ScanRef struct {
	ProjectID uuid.UUID
	BillID    uuid.UUID
	Ext       string
}

// ParseScanPath parses object names of the form
// bills/{projectId}/{billId}.<ext>. Anything else is rejected.
func ParseScanPath(objectName string) (ScanRef, bool) {
	parts := strings.Split(objectName, "/")
	if len(parts) != 3 || parts[0] != "bills" {
		return ScanRef{}, false
	}

	projectID, err := uuid.Parse(parts[1])
	if err != nil {
		return ScanRef{}, false
	}

	base := parts[2]
	dot := strings.LastIndex(base, ".")
	if dot <= 0 || dot == len(base)-1 {
		return ScanRef{}, false
	}

	billID, err := uuid.Parse(base[:dot])
	if err != nil {
		return ScanRef{}, false
	}

	return ScanRef{ProjectID: projectID, BillID: billID, Ext: base[dot+1:]}, true
}

// --- Interface ---

// OCRService ingests storage-finalize events for uploaded bill scans.
type OCRService interface {
	IngestScan(ctx context.Context, objectName string) error
}

type ocrService struct {
	db  *gorm.DB
	hub Notifier
	log *zap.Logger
}

func NewOCRService(db *gorm.DB, hub Notifier, log *zap.Logger) OCRService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ocrService{db: db, hub: hub, log: log}
}

// IngestScan merges placeholder extracted fields into the bill a scan object
// belongs to, tagging the bill source as OCR. Malformed object names and
// unknown bills are not errors to the caller: the event is dead-lettered on
// the hub, logged and counted, and the handler returns nil. The merge is
// idempotent, so redelivery of the same event is harmless.
func (s *ocrService) IngestScan(ctx context.Context, objectName string) error {
	ref, ok := ParseScanPath(objectName)
	if !ok {
		s.deadLetter(objectName, "malformed object name")
		return nil
	}

	var bill model.Bill
	err := s.db.WithContext(ctx).
		First(&bill, "id = ? AND project_id = ?", ref.BillID, ref.ProjectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.deadLetter(objectName, "no bill for scan object")
			return nil
		}
		return fmt.Errorf("failed to fetch bill for scan: %w", err)
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Bill{}).
			Where("id = ?", bill.ID).
			Updates(map[string]interface{}{
				"source":        model.BillSourceOCR,
				"ocr_text":      OCRPlaceholderText,
				"ocr_merged_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to merge scan into bill: %w", res.Error)
		}

		// Automated actor, no user id
		return writeAuditLog(tx, nil, model.ActionOCRMergeBill, bill.ID.String(), objectName, map[string]string{
			"object": objectName,
			"ext":    ref.Ext,
		})
	})
	if err != nil {
		return err
	}

	metrics.OCRIngestsTotal.Inc()
	s.log.Info("merged scan into bill",
		zap.String("object", objectName),
		zap.String("bill_id", bill.ID.String()),
	)
	publish(s.hub, websocket.Event{
		Type:      websocket.EventTransition,
		Entity:    "bill",
		EntityID:  bill.ID.String(),
		ProjectID: bill.ProjectID.String(),
		Status:    bill.Status,
		Detail:    map[string]interface{}{"ocr_merged": true, "object": objectName},
	})

	return nil
}

// deadLetter surfaces a rejected ingest event on the observable side channel
// without raising an error to the uploader.
func (s *ocrService) deadLetter(objectName, reason string) {
	metrics.OCRRejectsTotal.Inc()
	s.log.Warn("rejected scan ingest event",
		zap.String("object", objectName),
		zap.String("reason", reason),
	)
	publish(s.hub, websocket.Event{
		Type:   websocket.EventDeadLetter,
		Entity: "bill_scan",
		Detail: map[string]interface{}{"object": objectName, "reason": reason},
	})
}
