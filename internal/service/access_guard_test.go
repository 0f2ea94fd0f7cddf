package service

import (
	"testing"

	"buildflow/internal/apperr"
	"buildflow/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeProject(managerID uuid.UUID) *model.Project {
	return &model.Project{
		ID:        uuid.New(),
		Name:      "Tower A",
		Status:    model.ProjectStatusActive,
		StateCode: "27",
		ManagerID: &managerID,
	}
}

func TestAuthorizeHappyPath(t *testing.T) {
	managerID := uuid.New()
	project := activeProject(managerID)

	err := Authorize(project, managerID, model.RoleManager, []string{model.RoleManager, model.RoleFieldManager})
	require.NoError(t, err)
}

func TestAuthorizeRejectsInactiveProject(t *testing.T) {
	managerID := uuid.New()
	project := activeProject(managerID)
	project.Status = model.ProjectStatusOnHold

	err := Authorize(project, managerID, model.RoleManager, []string{model.RoleManager})
	assert.ErrorIs(t, err, apperr.ErrPrecondition)
}

func TestAuthorizeRejectsDisallowedRole(t *testing.T) {
	engineerID := uuid.New()
	project := activeProject(engineerID)
	project.EngineerID = &engineerID

	// Engineers approve requests but never raise them.
	err := Authorize(project, engineerID, model.RoleEngineer, []string{model.RoleManager, model.RoleFieldManager})
	assert.ErrorIs(t, err, apperr.ErrPrecondition)
}

func TestAuthorizeRejectsNonMember(t *testing.T) {
	managerID := uuid.New()
	project := activeProject(managerID)

	outsider := uuid.New()
	err := Authorize(project, outsider, model.RoleManager, []string{model.RoleManager})
	assert.ErrorIs(t, err, apperr.ErrPrecondition)
}

func TestAuthorizeChecksAllMemberSlots(t *testing.T) {
	ownerID := uuid.New()
	purchaseManagerID := uuid.New()
	project := activeProject(uuid.New())
	project.OwnerID = &ownerID
	project.PurchaseManagerID = &purchaseManagerID

	assert.NoError(t, Authorize(project, ownerID, model.RoleOwner, []string{model.RoleOwner, model.RoleOwnerClient}))
	assert.NoError(t, Authorize(project, purchaseManagerID, model.RolePurchaseManager, []string{model.RolePurchaseManager}))
}
