package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buildflow/internal/apperr"
	"buildflow/internal/gst"
	"buildflow/internal/metrics"
	"buildflow/internal/model"
	"buildflow/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateBillRequest struct {
	PurchaseOrderID  string `json:"po_id" binding:"required,uuid"`
	GoodsReceiptID   string `json:"grn_id" binding:"required,uuid"`
	Source           string `json:"source" binding:"omitempty,oneof=MANUAL OCR"`
	VendorGSTIN      string `json:"vendor_gstin"`
	TaxableAmount    string `json:"taxable_amount" binding:"required"` // Decimal string, e.g. "1000.00"
	GSTRate          string `json:"gst_rate" binding:"required"`       // Percent, e.g. "18"
	VendorStateCode  string `json:"vendor_state_code"`
	ProjectStateCode string `json:"project_state_code"`
	PDFURL           string `json:"pdf_url"`
}

type BillResponse struct {
	ID              string  `json:"id"`
	ProjectID       string  `json:"project_id"`
	PurchaseOrderID string  `json:"purchase_order_id"`
	GoodsReceiptID  string  `json:"goods_receipt_id"`
	Source          string  `json:"source"`
	VendorGSTIN     string  `json:"vendor_gstin"`
	TaxableAmount   string  `json:"taxable_amount"`
	CGST            string  `json:"cgst"`
	SGST            string  `json:"sgst"`
	IGST            string  `json:"igst"`
	TotalAmount     string  `json:"total_amount"`
	Status          string  `json:"status"`
	PDFURL          string  `json:"pdf_url"`
	ApprovedBy      *string `json:"approved_by"`
	ApprovedAt      *string `json:"approved_at"`
	CreatedAt       string  `json:"created_at"`
}

// --- Interface ---

type BillService interface {
	Create(ctx context.Context, projectID, callerID string, req CreateBillRequest) (*BillResponse, error)
	Approve(ctx context.Context, billID, callerID string) error
	ListByProject(ctx context.Context, projectID, callerID string, p pagination.Params) ([]BillResponse, int64, error)
}

type billService struct {
	db    *gorm.DB
	guard AccessGuard
	hub   Notifier
}

func NewBillService(db *gorm.DB, guard AccessGuard, hub Notifier) BillService {
	return &billService{db: db, guard: guard, hub: hub}
}

// --- Implementation ---

func (s *billService) Create(ctx context.Context, projectID, callerID string, req CreateBillRequest) (*BillResponse, error) {
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

	grnUUID, _ := uuid.Parse(req.GoodsReceiptID)
	var grn model.GoodsReceipt
	if err := s.db.WithContext(ctx).First(&grn, "id = ?", grnUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("goods receipt not found")
		}
		return nil, fmt.Errorf("failed to fetch goods receipt: %w", err)
	}

	if err := ValidateBillRefs(&po, &grn, authCtx.Project.ID); err != nil {
		return nil, err
	}

	taxable, err := decimal.NewFromString(req.TaxableAmount)
	if err != nil {
		return nil, apperr.Precondition("invalid taxable amount")
	}
	rate, err := decimal.NewFromString(req.GSTRate)
	if err != nil {
		return nil, apperr.Precondition("invalid gst rate")
	}

	projectState := req.ProjectStateCode
	if projectState == "" {
		projectState = authCtx.Project.StateCode
	}

	breakdown := gst.Split(taxable, rate, req.VendorStateCode, projectState)

	source := req.Source
	if source == "" {
		source = model.BillSourceManual
	}

	bill := model.Bill{
		ProjectID:       authCtx.Project.ID,
		PurchaseOrderID: po.ID,
		GoodsReceiptID:  grn.ID,
		Source:          source,
		VendorGSTIN:     req.VendorGSTIN,
		TaxableAmount:   breakdown.Taxable,
		CGST:            breakdown.CGST,
		SGST:            breakdown.SGST,
		IGST:            breakdown.IGST,
		TotalAmount:     breakdown.Total,
		Status:          model.BillStatusGenerated,
		PDFURL:          req.PDFURL,
		CreatedBy:       authCtx.CallerID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if createErr := tx.Create(&bill).Error; createErr != nil {
			return fmt.Errorf("failed to create bill: %w", createErr)
		}
		return writeAuditLog(tx, &authCtx.CallerID, model.ActionCreateBill, bill.ID.String(), po.Vendor, map[string]string{
			"po_id":  po.ID.String(),
			"grn_id": grn.ID.String(),
			"total":  breakdown.Total.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.TransitionsTotal.WithLabelValues("bill", model.BillStatusGenerated).Inc()
	publish(s.hub, transitionEvent("bill", bill.ID.String(), bill.ProjectID.String(), bill.Status))

	resp := toBillResponse(bill)
	return &resp, nil
}

// Approve advances a BILL_GENERATED bill to BILL_APPROVED, the terminal state.
// The status move is a conditional update on the expected prior status.
func (s *billService) Approve(ctx context.Context, billID, callerID string) error {
	id, err := uuid.Parse(billID)
	if err != nil {
		return apperr.NotFound("bill not found")
	}

	var bill model.Bill
	if err := s.db.WithContext(ctx).First(&bill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("bill not found")
		}
		return fmt.Errorf("failed to fetch bill: %w", err)
	}

	authCtx, err := s.guard.CheckScope(ctx, bill.ProjectID, callerID, model.RoleEngineer, model.RoleProjectEngineer)
	if err != nil {
		return err
	}

	if err := ValidateBillApproval(&bill); err != nil {
		return err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Bill{}).
			Where("id = ? AND status = ?", bill.ID, model.BillStatusGenerated).
			Updates(map[string]interface{}{
				"status":      model.BillStatusApproved,
				"approved_by": authCtx.CallerID,
				"approved_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update bill: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Preconditionf("bill must be %s, got %s", model.BillStatusGenerated, bill.Status)
		}

		return writeAuditLog(tx, &authCtx.CallerID, model.ActionApproveBill, bill.ID.String(), bill.VendorGSTIN, map[string]string{
			"total": bill.TotalAmount.StringFixed(2),
		})
	})
	if err != nil {
		return err
	}

	metrics.TransitionsTotal.WithLabelValues("bill", model.BillStatusApproved).Inc()
	publish(s.hub, transitionEvent("bill", bill.ID.String(), bill.ProjectID.String(), model.BillStatusApproved))

	return nil
}

func (s *billService) ListByProject(ctx context.Context, projectID, callerID string, p pagination.Params) ([]BillResponse, int64, error) {
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
	if err := s.db.WithContext(ctx).Model(&model.Bill{}).
		Where("project_id = ?", projUUID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}

	var bills []model.Bill
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projUUID).
		Order("created_at DESC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&bills).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bills: %w", err)
	}

	result := make([]BillResponse, 0, len(bills))
	for _, b := range bills {
		result = append(result, toBillResponse(b))
	}

	return result, total, nil
}

// ValidateBillApproval checks that a bill is still awaiting approval. Approve
// re-checks the status atomically in its conditional update; this front door
// turns a stale record into a precondition error.
func ValidateBillApproval(bill *model.Bill) error {
	if bill.Status != model.BillStatusGenerated {
		return apperr.Preconditionf("bill must be %s, got %s", model.BillStatusGenerated, bill.Status)
	}
	return nil
}

// ValidateBillRefs checks the predecessor records backing a new bill. The PO
// status is not re-checked: existence and project match are the only PO
// requirements once the GRN has confirmed receipt.
func ValidateBillRefs(po *model.PurchaseOrder, grn *model.GoodsReceipt, projectID uuid.UUID) error {
	if po.ProjectID != projectID {
		return apperr.Precondition("purchase order does not belong to this project")
	}
	if grn.ProjectID != projectID {
		return apperr.Precondition("goods receipt does not belong to this project")
	}
	if grn.PurchaseOrderID != po.ID {
		return apperr.Precondition("goods receipt does not reference this purchase order")
	}
	if grn.Status != model.GRNStatusConfirmed {
		return apperr.Preconditionf("goods receipt must be %s, got %s", model.GRNStatusConfirmed, grn.Status)
	}
	return nil
}

func toBillResponse(b model.Bill) BillResponse {
	resp := BillResponse{
		ID:              b.ID.String(),
		ProjectID:       b.ProjectID.String(),
		PurchaseOrderID: b.PurchaseOrderID.String(),
		GoodsReceiptID:  b.GoodsReceiptID.String(),
		Source:          b.Source,
		VendorGSTIN:     b.VendorGSTIN,
		TaxableAmount:   b.TaxableAmount.StringFixed(2),
		CGST:            b.CGST.StringFixed(2),
		SGST:            b.SGST.StringFixed(2),
		IGST:            b.IGST.StringFixed(2),
		TotalAmount:     b.TotalAmount.StringFixed(2),
		Status:          b.Status,
		PDFURL:          b.PDFURL,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
	if b.ApprovedBy != nil {
		s := b.ApprovedBy.String()
		resp.ApprovedBy = &s
	}
	if b.ApprovedAt != nil {
		s := b.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	return resp
}
