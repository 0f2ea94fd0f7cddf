package service

import (
	"context"
	"errors"
	"fmt"

	"buildflow/internal/apperr"
	"buildflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthContext is the resolved authorization snapshot for one operation: the
// project, the caller and the caller's role. It is built once by CheckScope
// and handed to the operation, so services never consult ambient state
// mid-operation.
type AuthContext struct {
	Project  *model.Project
	CallerID uuid.UUID
	Role     string
}

// AccessGuard resolves a caller's role and project membership, rejecting
// unauthorized actions. It performs no writes.
type AccessGuard interface {
	CheckScope(ctx context.Context, projectID uuid.UUID, callerID string, allowedRoles ...string) (*AuthContext, error)
}

type accessGuard struct {
	db *gorm.DB
}

// NewAccessGuard returns a new instance of AccessGuard
func NewAccessGuard(db *gorm.DB) AccessGuard {
	return &accessGuard{db: db}
}

func (g *accessGuard) CheckScope(ctx context.Context, projectID uuid.UUID, callerID string, allowedRoles ...string) (*AuthContext, error) {
	callerUUID, err := uuid.Parse(callerID)
	if err != nil {
		return nil, apperr.Precondition("caller identity is not a valid user id")
	}

	var project model.Project
	if err := g.db.WithContext(ctx).First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}

	var caller model.User
	if err := g.db.WithContext(ctx).First(&caller, "id = ?", callerUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Precondition("caller is not a registered user")
		}
		return nil, fmt.Errorf("failed to fetch caller: %w", err)
	}

	if err := Authorize(&project, callerUUID, caller.Role, allowedRoles); err != nil {
		return nil, err
	}

	return &AuthContext{
		Project:  &project,
		CallerID: callerUUID,
		Role:     caller.Role,
	}, nil
}

// Authorize is the pure membership and role check behind CheckScope: the
// project must be ACTIVE, the role must be in the allowed set, and the caller
// must occupy one of the project's member slots.
func Authorize(project *model.Project, callerID uuid.UUID, role string, allowedRoles []string) error {
	if project.Status != model.ProjectStatusActive {
		return apperr.Precondition("project is not active")
	}

	roleAllowed := false
	for _, allowed := range allowedRoles {
		if role == allowed {
			roleAllowed = true
			break
		}
	}
	if !roleAllowed {
		return apperr.Preconditionf("role %s is not permitted to perform this action", role)
	}

	if !project.HasMember(callerID) {
		return apperr.Precondition("caller is not a member of this project")
	}

	return nil
}
