package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"buildflow/internal/apperr"
	"buildflow/internal/model"
	"buildflow/internal/pdf"
	"buildflow/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SignedURLTTL is how long a generated bill PDF link stays valid.
const SignedURLTTL = 24 * time.Hour

var billTemplate = template.Must(template.New("bill").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Bill {{.ID}}</title></head>
<body>
  <h1>Tax Invoice</h1>
  <p>Project: {{.ProjectName}}</p>
  <p>Bill: {{.ID}} ({{.Status}})</p>
  <p>Vendor GSTIN: {{.VendorGSTIN}}</p>
  <table border="1" cellpadding="6" cellspacing="0">
    <tr><td>Taxable Amount</td><td>{{.TaxableAmount}}</td></tr>
    <tr><td>CGST</td><td>{{.CGST}}</td></tr>
    <tr><td>SGST</td><td>{{.SGST}}</td></tr>
    <tr><td>IGST</td><td>{{.IGST}}</td></tr>
    <tr><td><b>Total</b></td><td><b>{{.TotalAmount}}</b></td></tr>
  </table>
  <p>Generated at {{.GeneratedAt}}</p>
</body>
</html>`))

type billTemplateData struct {
	ID            string
	ProjectName   string
	Status        string
	VendorGSTIN   string
	TaxableAmount string
	CGST          string
	SGST          string
	IGST          string
	TotalAmount   string
	GeneratedAt   string
}

// --- Interface ---

// BillPDFService renders a bill to PDF, stores it and returns a signed URL.
type BillPDFService interface {
	Generate(ctx context.Context, billID, callerID string) (string, error)
}

type billPDFService struct {
	db       *gorm.DB
	guard    AccessGuard
	renderer pdf.Renderer
	store    *storage.Store
}

func NewBillPDFService(db *gorm.DB, guard AccessGuard, renderer pdf.Renderer, store *storage.Store) BillPDFService {
	return &billPDFService{db: db, guard: guard, renderer: renderer, store: store}
}

// --- Implementation ---

func (s *billPDFService) Generate(ctx context.Context, billID, callerID string) (string, error) {
	id, err := uuid.Parse(billID)
	if err != nil {
		return "", apperr.NotFound("bill not found")
	}

	var bill model.Bill
	if err := s.db.WithContext(ctx).First(&bill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound("bill not found")
		}
		return "", fmt.Errorf("failed to fetch bill: %w", err)
	}

	authCtx, err := s.guard.CheckScope(ctx, bill.ProjectID, callerID,
		model.RoleEngineer, model.RoleProjectEngineer, model.RoleManager,
		model.RoleFieldManager, model.RoleOwner, model.RoleOwnerClient)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	data := billTemplateData{
		ID:            bill.ID.String(),
		ProjectName:   authCtx.Project.Name,
		Status:        bill.Status,
		VendorGSTIN:   bill.VendorGSTIN,
		TaxableAmount: bill.TaxableAmount.StringFixed(2),
		CGST:          bill.CGST.StringFixed(2),
		SGST:          bill.SGST.StringFixed(2),
		IGST:          bill.IGST.StringFixed(2),
		TotalAmount:   bill.TotalAmount.StringFixed(2),
		GeneratedAt:   time.Now().Format(time.RFC3339),
	}
	if err := billTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render bill template: %w", err)
	}

	pdfBytes, err := s.renderer.RenderHTML(ctx, buf.String())
	if err != nil {
		return "", fmt.Errorf("failed to render bill pdf: %w", err)
	}

	objectName := fmt.Sprintf("bills/%s/%s.pdf", bill.ProjectID, bill.ID)
	if err := s.store.Save(objectName, pdfBytes); err != nil {
		return "", err
	}

	signedURL, err := s.store.SignedURL(objectName, SignedURLTTL)
	if err != nil {
		return "", err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if updateErr := tx.Model(&model.Bill{}).
			Where("id = ?", bill.ID).
			Update("pdf_url", signedURL).Error; updateErr != nil {
			return fmt.Errorf("failed to store pdf url: %w", updateErr)
		}
		return writeAuditLog(tx, &authCtx.CallerID, model.ActionGenerateBillPDF, bill.ID.String(), objectName, map[string]string{
			"object": objectName,
		})
	})
	if err != nil {
		return "", err
	}

	return signedURL, nil
}
