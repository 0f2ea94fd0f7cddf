package service

import (
	"testing"

	"buildflow/internal/apperr"
	"buildflow/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateMRForPO(t *testing.T) {
	projectID := uuid.New()

	t.Run("accepts owner-approved request in project", func(t *testing.T) {
		mr := &model.MaterialRequest{ID: uuid.New(), ProjectID: projectID, Status: model.MRStatusOwnerApproved}
		assert.NoError(t, ValidateMRForPO(mr, projectID))
	})

	t.Run("rejects request pending approval", func(t *testing.T) {
		for _, status := range []string{model.MRStatusRequested, model.MRStatusEngineerApproved} {
			mr := &model.MaterialRequest{ID: uuid.New(), ProjectID: projectID, Status: status}
			assert.ErrorIs(t, ValidateMRForPO(mr, projectID), apperr.ErrPrecondition, "status %s", status)
		}
	})

	t.Run("rejects request from another project regardless of status", func(t *testing.T) {
		mr := &model.MaterialRequest{ID: uuid.New(), ProjectID: uuid.New(), Status: model.MRStatusOwnerApproved}
		assert.ErrorIs(t, ValidateMRForPO(mr, projectID), apperr.ErrPrecondition)
	})
}

func TestValidateMRTransition(t *testing.T) {
	t.Run("engineer approve accepts REQUESTED", func(t *testing.T) {
		mr := &model.MaterialRequest{ID: uuid.New(), Status: model.MRStatusRequested}
		assert.NoError(t, ValidateMRTransition(mr, model.MRStatusRequested))
	})

	t.Run("engineer approve rejects already-advanced record", func(t *testing.T) {
		for _, status := range []string{model.MRStatusEngineerApproved, model.MRStatusOwnerApproved} {
			mr := &model.MaterialRequest{ID: uuid.New(), Status: status}
			assert.ErrorIs(t, ValidateMRTransition(mr, model.MRStatusRequested), apperr.ErrPrecondition, "status %s", status)
		}
	})

	t.Run("owner approve accepts ENGINEER_APPROVED only", func(t *testing.T) {
		mr := &model.MaterialRequest{ID: uuid.New(), Status: model.MRStatusEngineerApproved}
		assert.NoError(t, ValidateMRTransition(mr, model.MRStatusEngineerApproved))

		for _, status := range []string{model.MRStatusRequested, model.MRStatusOwnerApproved} {
			mr := &model.MaterialRequest{ID: uuid.New(), Status: status}
			assert.ErrorIs(t, ValidateMRTransition(mr, model.MRStatusEngineerApproved), apperr.ErrPrecondition, "status %s", status)
		}
	})
}

func TestValidateBillApproval(t *testing.T) {
	t.Run("accepts generated bill", func(t *testing.T) {
		bill := &model.Bill{ID: uuid.New(), Status: model.BillStatusGenerated}
		assert.NoError(t, ValidateBillApproval(bill))
	})

	t.Run("rejects already-approved bill", func(t *testing.T) {
		bill := &model.Bill{ID: uuid.New(), Status: model.BillStatusApproved}
		assert.ErrorIs(t, ValidateBillApproval(bill), apperr.ErrPrecondition)
	})
}

func TestValidatePOForGRN(t *testing.T) {
	projectID := uuid.New()

	t.Run("accepts created order in project", func(t *testing.T) {
		po := &model.PurchaseOrder{ID: uuid.New(), ProjectID: projectID, Status: model.POStatusCreated}
		assert.NoError(t, ValidatePOForGRN(po, projectID))
	})

	t.Run("rejects order from another project", func(t *testing.T) {
		po := &model.PurchaseOrder{ID: uuid.New(), ProjectID: uuid.New(), Status: model.POStatusCreated}
		assert.ErrorIs(t, ValidatePOForGRN(po, projectID), apperr.ErrPrecondition)
	})

	t.Run("rejects order in unexpected state", func(t *testing.T) {
		po := &model.PurchaseOrder{ID: uuid.New(), ProjectID: projectID, Status: "PO_CANCELLED"}
		assert.ErrorIs(t, ValidatePOForGRN(po, projectID), apperr.ErrPrecondition)
	})
}

func TestValidateBillRefs(t *testing.T) {
	projectID := uuid.New()

	newPO := func() *model.PurchaseOrder {
		return &model.PurchaseOrder{ID: uuid.New(), ProjectID: projectID, Status: model.POStatusCreated}
	}
	newGRN := func(po *model.PurchaseOrder) *model.GoodsReceipt {
		return &model.GoodsReceipt{
			ID:              uuid.New(),
			ProjectID:       projectID,
			PurchaseOrderID: po.ID,
			Status:          model.GRNStatusConfirmed,
		}
	}

	t.Run("accepts confirmed receipt chained to order", func(t *testing.T) {
		po := newPO()
		assert.NoError(t, ValidateBillRefs(po, newGRN(po), projectID))
	})

	t.Run("purchase order status is not re-checked", func(t *testing.T) {
		// Once goods are confirmed received, the bill stands on the GRN;
		// whatever happened to the PO since is not the bill's concern.
		po := newPO()
		po.Status = "PO_CANCELLED"
		assert.NoError(t, ValidateBillRefs(po, newGRN(po), projectID))
	})

	t.Run("rejects order from another project", func(t *testing.T) {
		po := newPO()
		po.ProjectID = uuid.New()
		grn := newGRN(po)
		grn.ProjectID = projectID
		assert.ErrorIs(t, ValidateBillRefs(po, grn, projectID), apperr.ErrPrecondition)
	})

	t.Run("rejects receipt from another project", func(t *testing.T) {
		po := newPO()
		grn := newGRN(po)
		grn.ProjectID = uuid.New()
		assert.ErrorIs(t, ValidateBillRefs(po, grn, projectID), apperr.ErrPrecondition)
	})

	t.Run("rejects receipt referencing a different order", func(t *testing.T) {
		po := newPO()
		grn := newGRN(newPO())
		assert.ErrorIs(t, ValidateBillRefs(po, grn, projectID), apperr.ErrPrecondition)
	})

	t.Run("rejects unconfirmed receipt", func(t *testing.T) {
		po := newPO()
		grn := newGRN(po)
		grn.Status = "GRN_DRAFT"
		assert.ErrorIs(t, ValidateBillRefs(po, grn, projectID), apperr.ErrPrecondition)
	})
}
