package model

import (
	"time"

	"github.com/google/uuid"
)

// MaterialRequest status enum constants. Transitions are strictly forward:
// REQUESTED -> ENGINEER_APPROVED -> OWNER_APPROVED, never reopened.
const (
	MRStatusRequested        = "REQUESTED"
	MRStatusEngineerApproved = "ENGINEER_APPROVED"
	MRStatusOwnerApproved    = "OWNER_APPROVED"
)

// MaterialRequest is the originating procurement document, raised on site by a
// manager or field manager.
type MaterialRequest struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	Project            *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Materials          string     `gorm:"type:jsonb;not null" json:"materials"` // JSON array of requested items
	Status             string     `gorm:"type:varchar(30);not null;default:'REQUESTED';index" json:"status"`
	RequestedBy        uuid.UUID  `gorm:"type:uuid;not null" json:"requested_by"`
	EngineerApproved   bool       `gorm:"not null;default:false" json:"engineer_approved"`
	EngineerApprovedBy *uuid.UUID `gorm:"type:uuid" json:"engineer_approved_by"`
	EngineerApprovedAt *time.Time `json:"engineer_approved_at"`
	OwnerApproved      bool       `gorm:"not null;default:false" json:"owner_approved"`
	OwnerApprovedBy    *uuid.UUID `gorm:"type:uuid" json:"owner_approved_by"`
	OwnerApprovedAt    *time.Time `json:"owner_approved_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
