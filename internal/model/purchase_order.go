package model

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseOrder status enum constants
const (
	POStatusCreated = "PO_CREATED"
)

// GST regime tags carried on a purchase order
const (
	GSTTypeIntraState = "CGST_SGST"
	GSTTypeInterState = "IGST"
)

// PurchaseOrder is issued by the purchase manager against exactly one
// OWNER_APPROVED material request. It is immutable after creation.
type PurchaseOrder struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"project_id"`
	MaterialRequestID uuid.UUID        `gorm:"type:uuid;not null;index" json:"material_request_id"`
	MaterialRequest   *MaterialRequest `gorm:"foreignKey:MaterialRequestID" json:"material_request,omitempty"`
	Vendor            string           `gorm:"type:varchar(255);not null" json:"vendor"`
	RateDetails       string           `gorm:"type:jsonb;not null" json:"rate_details"` // JSON array of item rates
	GSTType           string           `gorm:"type:varchar(20)" json:"gst_type"`        // CGST_SGST or IGST
	Status            string           `gorm:"type:varchar(20);not null;default:'PO_CREATED';index" json:"status"`
	CreatedBy         uuid.UUID        `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
