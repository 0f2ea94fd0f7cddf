package model

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus enum constants
const (
	ProjectStatusActive = "ACTIVE"
	ProjectStatusOnHold = "ON_HOLD"
	ProjectStatusClosed = "CLOSED"
)

// Project represents a construction site. The member slots pin exactly which
// user may act in each workflow role; only ACTIVE projects accept workflow
// actions.
type Project struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string     `gorm:"type:varchar(255);not null" json:"name"`
	Status            string     `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	StateCode         string     `gorm:"type:varchar(2)" json:"state_code"` // GST state code of the site, e.g. "27"
	OwnerID           *uuid.UUID `gorm:"type:uuid" json:"owner_id"`
	EngineerID        *uuid.UUID `gorm:"type:uuid" json:"engineer_id"`
	ManagerID         *uuid.UUID `gorm:"type:uuid" json:"manager_id"`
	PurchaseManagerID *uuid.UUID `gorm:"type:uuid" json:"purchase_manager_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// HasMember reports whether id occupies any of the project's member slots.
func (p *Project) HasMember(id uuid.UUID) bool {
	for _, member := range []*uuid.UUID{p.OwnerID, p.EngineerID, p.ManagerID, p.PurchaseManagerID} {
		if member != nil && *member == id {
			return true
		}
	}
	return false
}
