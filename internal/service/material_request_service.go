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

type MaterialItem struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit"`
}

type CreateMaterialRequestRequest struct {
	Materials []MaterialItem `json:"materials" binding:"required,min=1,dive"`
}

type MaterialRequestResponse struct {
	ID                 string  `json:"id"`
	ProjectID          string  `json:"project_id"`
	Materials          string  `json:"materials"`
	Status             string  `json:"status"`
	RequestedBy        string  `json:"requested_by"`
	EngineerApprovedBy *string `json:"engineer_approved_by"`
	EngineerApprovedAt *string `json:"engineer_approved_at"`
	OwnerApprovedBy    *string `json:"owner_approved_by"`
	OwnerApprovedAt    *string `json:"owner_approved_at"`
	CreatedAt          string  `json:"created_at"`
}

// --- Interface ---

type MaterialRequestService interface {
	Create(ctx context.Context, projectID, callerID string, req CreateMaterialRequestRequest) (*MaterialRequestResponse, error)
	EngineerApprove(ctx context.Context, mrID, callerID string) error
	OwnerApprove(ctx context.Context, mrID, callerID string) error
	ListByProject(ctx context.Context, projectID, callerID string, p pagination.Params) ([]MaterialRequestResponse, int64, error)
}

type materialRequestService struct {
	db    *gorm.DB
	guard AccessGuard
	hub   Notifier
}

func NewMaterialRequestService(db *gorm.DB, guard AccessGuard, hub Notifier) MaterialRequestService {
	return &materialRequestService{db: db, guard: guard, hub: hub}
}

// --- Implementation ---

func (s *materialRequestService) Create(ctx context.Context, projectID, callerID string, req CreateMaterialRequestRequest) (*MaterialRequestResponse, error) {
	projUUID, err := uuid.Parse(projectID)
	if err != nil {
		return nil, apperr.NotFound("project not found")
	}

	authCtx, err := s.guard.CheckScope(ctx, projUUID, callerID, model.RoleManager, model.RoleFieldManager)
	if err != nil {
		return nil, err
	}

	materialsJSON, err := json.Marshal(req.Materials)
	if err != nil {
		return nil, fmt.Errorf("failed to encode materials: %w", err)
	}

	mr := model.MaterialRequest{
		ProjectID:   authCtx.Project.ID,
		Materials:   string(materialsJSON),
		Status:      model.MRStatusRequested,
		RequestedBy: authCtx.CallerID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if createErr := tx.Create(&mr).Error; createErr != nil {
			return fmt.Errorf("failed to create material request: %w", createErr)
		}
		return writeAuditLog(tx, &authCtx.CallerID, model.ActionCreateMaterialRequest, mr.ID.String(), authCtx.Project.Name, req)
	})
	if err != nil {
		return nil, err
	}

	metrics.TransitionsTotal.WithLabelValues("material_request", model.MRStatusRequested).Inc()
	publish(s.hub, transitionEvent("material_request", mr.ID.String(), mr.ProjectID.String(), mr.Status))

	resp := toMaterialRequestResponse(mr)
	return &resp, nil
}

// EngineerApprove advances a REQUESTED material request to ENGINEER_APPROVED.
// The status move is a conditional update on the expected prior status, so two
// racing approvers cannot both advance the same record.
func (s *materialRequestService) EngineerApprove(ctx context.Context, mrID, callerID string) error {
	return s.approve(ctx, mrID, callerID, approvalStep{
		allowedRoles: []string{model.RoleEngineer, model.RoleProjectEngineer},
		fromStatus:   model.MRStatusRequested,
		toStatus:     model.MRStatusEngineerApproved,
		flagColumn:   "engineer_approved",
		byColumn:     "engineer_approved_by",
		atColumn:     "engineer_approved_at",
		action:       model.ActionEngineerApproveMR,
	})
}

// OwnerApprove advances an ENGINEER_APPROVED material request to
// OWNER_APPROVED, the terminal state for a material request.
func (s *materialRequestService) OwnerApprove(ctx context.Context, mrID, callerID string) error {
	return s.approve(ctx, mrID, callerID, approvalStep{
		allowedRoles: []string{model.RoleOwner, model.RoleOwnerClient},
		fromStatus:   model.MRStatusEngineerApproved,
		toStatus:     model.MRStatusOwnerApproved,
		flagColumn:   "owner_approved",
		byColumn:     "owner_approved_by",
		atColumn:     "owner_approved_at",
		action:       model.ActionOwnerApproveMR,
	})
}

type approvalStep struct {
	allowedRoles []string
	fromStatus   string
	toStatus     string
	flagColumn   string
	byColumn     string
	atColumn     string
	action       string
}

func (s *materialRequestService) approve(ctx context.Context, mrID, callerID string, step approvalStep) error {
	id, err := uuid.Parse(mrID)
	if err != nil {
		return apperr.NotFound("material request not found")
	}

	var mr model.MaterialRequest
	if err := s.db.WithContext(ctx).First(&mr, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("material request not found")
		}
		return fmt.Errorf("failed to fetch material request: %w", err)
	}

	authCtx, err := s.guard.CheckScope(ctx, mr.ProjectID, callerID, step.allowedRoles...)
	if err != nil {
		return err
	}

	if err := ValidateMRTransition(&mr, step.fromStatus); err != nil {
		return err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.MaterialRequest{}).
			Where("id = ? AND status = ?", mr.ID, step.fromStatus).
			Updates(map[string]interface{}{
				"status":        step.toStatus,
				step.flagColumn: true,
				step.byColumn:   authCtx.CallerID,
				step.atColumn:   now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update material request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Preconditionf("material request must be %s, got %s", step.fromStatus, mr.Status)
		}

		return writeAuditLog(tx, &authCtx.CallerID, step.action, mr.ID.String(), authCtx.Project.Name, map[string]string{
			"from": step.fromStatus,
			"to":   step.toStatus,
		})
	})
	if err != nil {
		return err
	}

	metrics.TransitionsTotal.WithLabelValues("material_request", step.toStatus).Inc()
	publish(s.hub, transitionEvent("material_request", mr.ID.String(), mr.ProjectID.String(), step.toStatus))

	return nil
}

func (s *materialRequestService) ListByProject(ctx context.Context, projectID, callerID string, p pagination.Params) ([]MaterialRequestResponse, int64, error) {
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
	if err := s.db.WithContext(ctx).Model(&model.MaterialRequest{}).
		Where("project_id = ?", projUUID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count material requests: %w", err)
	}

	var mrs []model.MaterialRequest
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projUUID).
		Order("created_at DESC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&mrs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch material requests: %w", err)
	}

	result := make([]MaterialRequestResponse, 0, len(mrs))
	for _, mr := range mrs {
		result = append(result, toMaterialRequestResponse(mr))
	}

	return result, total, nil
}

// --- Helpers ---

// ValidateMRTransition checks that a material request sits in the state an
// approval step moves it out of. The conditional update inside approve
// re-checks the same predicate atomically against concurrent approvers; this
// is the front door that turns a stale record into a precondition error.
func ValidateMRTransition(mr *model.MaterialRequest, fromStatus string) error {
	if mr.Status != fromStatus {
		return apperr.Preconditionf("material request must be %s, got %s", fromStatus, mr.Status)
	}
	return nil
}

func toMaterialRequestResponse(mr model.MaterialRequest) MaterialRequestResponse {
	resp := MaterialRequestResponse{
		ID:          mr.ID.String(),
		ProjectID:   mr.ProjectID.String(),
		Materials:   mr.Materials,
		Status:      mr.Status,
		RequestedBy: mr.RequestedBy.String(),
		CreatedAt:   mr.CreatedAt.Format(time.RFC3339),
	}
	if mr.EngineerApprovedBy != nil {
		s := mr.EngineerApprovedBy.String()
		resp.EngineerApprovedBy = &s
	}
	if mr.EngineerApprovedAt != nil {
		s := mr.EngineerApprovedAt.Format(time.RFC3339)
		resp.EngineerApprovedAt = &s
	}
	if mr.OwnerApprovedBy != nil {
		s := mr.OwnerApprovedBy.String()
		resp.OwnerApprovedBy = &s
	}
	if mr.OwnerApprovedAt != nil {
		s := mr.OwnerApprovedAt.Format(time.RFC3339)
		resp.OwnerApprovedAt = &s
	}
	return resp
}
