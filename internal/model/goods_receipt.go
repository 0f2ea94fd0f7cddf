package model

import (
	"time"

	"github.com/google/uuid"
)

// GoodsReceipt status enum constants
const (
	GRNStatusConfirmed = "GRN_CONFIRMED"
)

// GoodsReceipt (GRN) confirms physical receipt of materials against a
// purchase order that is still in PO_CREATED state.
type GoodsReceipt struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	PurchaseOrderID uuid.UUID      `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	PurchaseOrder   *PurchaseOrder `gorm:"foreignKey:PurchaseOrderID" json:"purchase_order,omitempty"`
	ReceivedQty     string         `gorm:"type:jsonb;not null" json:"received_qty"` // JSON array of received quantities
	VerifiedBy      uuid.UUID      `gorm:"type:uuid;not null" json:"verified_by"`
	Status          string         `gorm:"type:varchar(20);not null;default:'GRN_CONFIRMED'" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
