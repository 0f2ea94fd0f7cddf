package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill status enum constants
const (
	BillStatusGenerated = "BILL_GENERATED"
	BillStatusApproved  = "BILL_APPROVED"
)

// Bill source enum constants
const (
	BillSourceManual = "MANUAL"
	BillSourceOCR    = "OCR"
)

// Bill is the vendor invoice raised against a confirmed goods receipt. All
// monetary fields are persisted with exactly two decimal places.
type Bill struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"project_id"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	GoodsReceiptID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"goods_receipt_id"`
	Source          string          `gorm:"type:varchar(10);not null;default:'MANUAL'" json:"source"`
	VendorGSTIN     string          `gorm:"type:varchar(15)" json:"vendor_gstin"`
	TaxableAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"taxable_amount"`
	CGST            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"cgst"`
	SGST            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"sgst"`
	IGST            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"igst"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	Status          string          `gorm:"type:varchar(20);not null;default:'BILL_GENERATED';index" json:"status"`
	PDFURL          string          `gorm:"type:text" json:"pdf_url"`
	OCRText         string          `gorm:"type:text" json:"ocr_text,omitempty"` // placeholder fields merged by ingestion
	OCRMergedAt     *time.Time      `json:"ocr_merged_at"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	ApprovedBy      *uuid.UUID      `gorm:"type:uuid" json:"approved_by"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
