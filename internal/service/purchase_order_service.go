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

type RateDetail struct {
	Material string  `json:"material" binding:"required"`
	Rate     float64 `json:"rate" binding:"required,gt=0"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit"`
}

type CreatePurchaseOrderRequest struct {
	MaterialRequestID string       `json:"mr_id" binding:"required,uuid"`
	Vendor            string       `json:"vendor" binding:"required"`
	RateDetails       []RateDetail `json:"rate_details" binding:"required,min=1,dive"`
	GSTType           string       `json:"gst_type" binding:"omitempty,oneof=CGST_SGST IGST"`
}

type PurchaseOrderResponse struct {
	ID                string `json:"id"`
	ProjectID         string `json:"project_id"`
	MaterialRequestID string `json:"material_request_id"`
	Vendor            string `json:"vendor"`
	RateDetails       string `json:"rate_details"`
	GSTType           string `json:"gst_type"`
	Status            string `json:"status"`
	CreatedBy         string `json:"created_by"`
	CreatedAt         string `json:"created_at"`
}

// --- Interface ---

type PurchaseOrderService interface {
	Create(ctx context.Context, projectID, callerID string, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error)
	ListByProject(ctx context.Context, projectID, callerID string, p pagination.Params) ([]PurchaseOrderResponse, int64, error)
}

type purchaseOrderService struct {
	db    *gorm.DB
	guard AccessGuard
	hub   Notifier
}

func NewPurchaseOrderService(db *gorm.DB, guard AccessGuard, hub Notifier) PurchaseOrderService {
	return &purchaseOrderService{db: db, guard: guard, hub: hub}
}

// --- Implementation ---

func (s *purchaseOrderService) Create(ctx context.Context, projectID, callerID string, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	projUUID, err := uuid.Parse(projectID)
	if err != nil {
		return nil, apperr.NotFound("project not found")
	}

	authCtx, err := s.guard.CheckScope(ctx, projUUID, callerID, model.RolePurchaseManager)
	if err != nil {
		return nil, err
	}

	mrUUID, _ := uuid.Parse(req.MaterialRequestID)
	var mr model.MaterialRequest
	if err := s.db.WithContext(ctx).First(&mr, "id = ?", mrUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("material request not found")
		}
		return nil, fmt.Errorf("failed to fetch material request: %w", err)
	}

	if err := ValidateMRForPO(&mr, authCtx.Project.ID); err != nil {
		return nil, err
	}

	ratesJSON, err := json.Marshal(req.RateDetails)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rate details: %w", err)
	}

	po := model.PurchaseOrder{
		ProjectID:         authCtx.Project.ID,
		MaterialRequestID: mr.ID,
		Vendor:            req.Vendor,
		RateDetails:       string(ratesJSON),
		GSTType:           req.GSTType,
		Status:            model.POStatusCreated,
		CreatedBy:         authCtx.CallerID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if createErr := tx.Create(&po).Error; createErr != nil {
			return fmt.Errorf("failed to create purchase order: %w", createErr)
		}
		return writeAuditLog(tx, &authCtx.CallerID, model.ActionCreatePurchaseOrder, po.ID.String(), req.Vendor, map[string]string{
			"mr_id":    mr.ID.String(),
			"gst_type": req.GSTType,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.TransitionsTotal.WithLabelValues("purchase_order", model.POStatusCreated).Inc()
	publish(s.hub, transitionEvent("purchase_order", po.ID.String(), po.ProjectID.String(), po.Status))

	resp := toPurchaseOrderResponse(po)
	return &resp, nil
}

func (s *purchaseOrderService) ListByProject(ctx context.Context, projectID, callerID string, p pagination.Params) ([]PurchaseOrderResponse, int64, error) {
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
	if err := s.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Where("project_id = ?", projUUID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchase orders: %w", err)
	}

	var pos []model.PurchaseOrder
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projUUID).
		Order("created_at DESC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&pos).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchase orders: %w", err)
	}

	result := make([]PurchaseOrderResponse, 0, len(pos))
	for _, po := range pos {
		result = append(result, toPurchaseOrderResponse(po))
	}

	return result, total, nil
}

// ValidateMRForPO checks that a material request can back a new purchase
// order: it must belong to the acting project and be exactly OWNER_APPROVED.
func ValidateMRForPO(mr *model.MaterialRequest, projectID uuid.UUID) error {
	if mr.ProjectID != projectID {
		return apperr.Precondition("material request does not belong to this project")
	}
	if mr.Status != model.MRStatusOwnerApproved {
		return apperr.Preconditionf("material request must be %s, got %s", model.MRStatusOwnerApproved, mr.Status)
	}
	return nil
}

func toPurchaseOrderResponse(po model.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:                po.ID.String(),
		ProjectID:         po.ProjectID.String(),
		MaterialRequestID: po.MaterialRequestID.String(),
		Vendor:            po.Vendor,
		RateDetails:       po.RateDetails,
		GSTType:           po.GSTType,
		Status:            po.Status,
		CreatedBy:         po.CreatedBy.String(),
		CreatedAt:         po.CreatedAt.Format(time.RFC3339),
	}
}
