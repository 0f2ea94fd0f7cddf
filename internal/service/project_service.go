package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buildflow/internal/apperr"
	"buildflow/internal/model"
	"buildflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateProjectRequest struct {
	Name              string `json:"name" binding:"required"`
	StateCode         string `json:"state_code" binding:"omitempty,len=2"`
	OwnerID           string `json:"owner_id" binding:"omitempty,uuid"`
	EngineerID        string `json:"engineer_id" binding:"omitempty,uuid"`
	ManagerID         string `json:"manager_id" binding:"omitempty,uuid"`
	PurchaseManagerID string `json:"purchase_manager_id" binding:"omitempty,uuid"`
}

type UpdateProjectStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE ON_HOLD CLOSED"`
}

type ProjectResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Status            string  `json:"status"`
	StateCode         string  `json:"state_code"`
	OwnerID           *string `json:"owner_id"`
	EngineerID        *string `json:"engineer_id"`
	ManagerID         *string `json:"manager_id"`
	PurchaseManagerID *string `json:"purchase_manager_id"`
	CreatedAt         string  `json:"created_at"`
}

// --- Interface ---

type ProjectService interface {
	Create(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error)
	GetByID(ctx context.Context, id string) (*ProjectResponse, error)
	List(ctx context.Context, page, limit int) ([]ProjectResponse, int64, error)
	UpdateStatus(ctx context.Context, id string, req UpdateProjectStatusRequest) error
}

type projectService struct {
	repo  repository.ProjectRepository
	users repository.UserRepository
}

func NewProjectService(repo repository.ProjectRepository, users repository.UserRepository) ProjectService {
	return &projectService{repo: repo, users: users}
}

// --- Implementation ---

func (s *projectService) Create(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error) {
	project := model.Project{
		Name:      req.Name,
		Status:    model.ProjectStatusActive,
		StateCode: req.StateCode,
	}

	slots := []struct {
		id   string
		dest **uuid.UUID
	}{
		{req.OwnerID, &project.OwnerID},
		{req.EngineerID, &project.EngineerID},
		{req.ManagerID, &project.ManagerID},
		{req.PurchaseManagerID, &project.PurchaseManagerID},
	}
	for _, slot := range slots {
		if slot.id == "" {
			continue
		}
		if _, err := s.users.GetByID(ctx, slot.id); err != nil {
			return nil, apperr.Preconditionf("member %s is not a registered user", slot.id)
		}
		parsed, err := uuid.Parse(slot.id)
		if err != nil {
			return nil, apperr.Preconditionf("invalid member id %s", slot.id)
		}
		*slot.dest = &parsed
	}

	if err := s.repo.Create(ctx, &project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (*ProjectResponse, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}

	resp := toProjectResponse(*project)
	return &resp, nil
}

func (s *projectService) List(ctx context.Context, page, limit int) ([]ProjectResponse, int64, error) {
	projects, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch projects: %w", err)
	}

	result := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		result = append(result, toProjectResponse(p))
	}

	return result, total, nil
}

func (s *projectService) UpdateStatus(ctx context.Context, id string, req UpdateProjectStatusRequest) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("project not found")
		}
		return fmt.Errorf("failed to fetch project: %w", err)
	}
	return s.repo.UpdateStatus(ctx, id, req.Status)
}

// --- Helpers ---

func toProjectResponse(p model.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Status:    p.Status,
		StateCode: p.StateCode,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if p.OwnerID != nil {
		s := p.OwnerID.String()
		resp.OwnerID = &s
	}
	if p.EngineerID != nil {
		s := p.EngineerID.String()
		resp.EngineerID = &s
	}
	if p.ManagerID != nil {
		s := p.ManagerID.String()
		resp.ManagerID = &s
	}
	if p.PurchaseManagerID != nil {
		s := p.PurchaseManagerID.String()
		resp.PurchaseManagerID = &s
	}
	return resp
}
