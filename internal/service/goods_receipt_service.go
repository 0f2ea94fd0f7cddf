package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"buildflow/internal/apperr"
	"buildflow/internal/metrics"
	"buildflow/internal/model"
	"buildflow/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type ReceivedItem struct {
	Material string  `json:"material" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit"`
}

type ConfirmGoodsReceiptRequest struct {
	PurchaseOrderID string         `json:"po_id" binding:"required,uuid"`
	ReceivedQty     []ReceivedItem `json:"received_qty" binding:"required,min=1,dive"`
}

type GoodsReceiptResponse struct {
	ID              string `json:"id"`
	ProjectID       string `json:"project_id"`
	PurchaseOrderID string `json:"purchase_order_id"`
	ReceivedQty     string `json:"received_qty"`
	VerifiedBy      string `json:"verified_by"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}

// --- Interface ---

type GoodsReceiptService interface {
	Confirm(ctx context.Context, projectID, callerID string, req ConfirmGoodsReceiptRequest) (*GoodsReceiptResponse, error)
	ListByProject(ctx context.Context, projectID, callerID string, p pagination.Params) ([]GoodsReceiptResponse, int64, error)
}

type goodsReceiptService struct {
	db    *gorm.DB
	guard AccessGuard
	hub   Notifier
}

func NewGoodsReceiptService(db *gorm.DB, guard AccessGuard, hub Notifier) GoodsReceiptService {
	return &goodsReceiptService{db: db, guard: guard, hub: hub}
}

// --- Implementation ---

func (s *goodsReceiptService) Confirm(ctx context.Context, projectID, callerID string, req ConfirmGoodsReceiptRequest) (*GoodsReceiptResponse, error) {
	projUUID, err := uuid.Parse(projectID)
	if err != nil {
		return nil, apperr.NotFound("project not found")
	}

	authCtx, err := s.guard.CheckScope(ctx, projUUID, callerID, model.RoleManager, model.RoleFieldManager)
	if err != nil {
		return nil, err
	}

	poUUID, _ := uuid.Parse(req.PurchaseOrderID)
	var po model.PurchaseOrder
	if err := s.db.WithContext(ctx).First(&po, "id = ?", poUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("purchase order not found")
		}
		return nil, fmt.Errorf("failed to fetch purchase order: %w", err)
	}

	if err := ValidatePOForGRN(&po, authCtx.Project.ID); err != nil {
		return nil, err
	}

	receivedJSON, err := json.Marshal(req.ReceivedQty)
	if err != nil {
		return nil, fmt.Errorf("failed to encode received quantities: %w", err)
	}

	grn := model.GoodsReceipt{
		ProjectID:       authCtx.Project.ID,
		PurchaseOrderID: po.ID,
		ReceivedQty:     string(receivedJSON),
		VerifiedBy:      authCtx.CallerID,
		Status:          model.GRNStatusConfirmed,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if createErr := tx.Create(&grn).Error; createErr != nil {
			return fmt.Errorf("failed to create goods receipt: %w", createErr)
		}
		return writeAuditLog(tx, &authCtx.CallerID, model.ActionConfirmGoodsReceipt, grn.ID.String(), po.Vendor, map[string]string{
			"po_id": po.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.TransitionsTotal.WithLabelValues("goods_receipt", model.GRNStatusConfirmed).Inc()
	publish(s.hub, transitionEvent("goods_receipt", grn.ID.String(), grn.ProjectID.String(), grn.Status))

	resp := toGoodsReceiptResponse(grn)
	return &resp, nil
}

func (s *goodsReceiptService) ListByProject(ctx context.Context, projectID, callerID string, p pagination.Params) ([]GoodsReceiptResponse, int64, error) {
	projUUID, err := uuid.Parse(projectID)
	if err != nil {
		return nil, 0, apperr.NotFound("project not found")
	}

	if _, err := s.guard.CheckScope(ctx, projUUID, callerID,
		model.RoleOwner, model.RoleOwnerClient, model.RoleEngineer, model.RoleProjectEngineer,
		model.RoleManager, model.RoleFieldManager, model.RolePurchaseManager); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.GoodsReceipt{}).
		Where("project_id = ?", projUUID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count goods receipts: %w", err)
	}

	var grns []model.GoodsReceipt
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projUUID).
		Order("created_at DESC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&grns).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch goods receipts: %w", err)
	}

	result := make([]GoodsReceiptResponse, 0, len(grns))
	for _, grn := range grns {
		result = append(result, toGoodsReceiptResponse(grn))
	}

	return result, total, nil
}

// ValidatePOForGRN checks that a purchase order can back a new goods receipt:
// it must belong to the acting project and be exactly PO_CREATED.
func ValidatePOForGRN(po *model.PurchaseOrder, projectID uuid.UUID) error {
	if po.ProjectID != projectID {
		return apperr.Precondition("purchase order does not belong to this project")
	}
	if po.Status != model.POStatusCreated {
		return apperr.Preconditionf("purchase order must be %s, got %s", model.POStatusCreated, po.Status)
	}
	return nil
}

func toGoodsReceiptResponse(grn model.GoodsReceipt) GoodsReceiptResponse {
	return GoodsReceiptResponse{
		ID:              grn.ID.String(),
		ProjectID:       grn.ProjectID.String(),
		PurchaseOrderID: grn.PurchaseOrderID.String(),
		ReceivedQty:     grn.ReceivedQty,
		VerifiedBy:      grn.VerifiedBy.String(),
		Status:          grn.Status,
		CreatedAt:       grn.CreatedAt.Format(time.RFC3339),
	}
}
