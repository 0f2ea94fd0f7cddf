package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum constants. OWNER_CLIENT and PROJECT_ENGINEER are external
// counterparts of OWNER and ENGINEER and carry the same workflow rights.
const (
	RoleAdmin           = "ADMIN"
	RoleOwner           = "OWNER"
	RoleOwnerClient     = "OWNER_CLIENT"
	RoleEngineer        = "ENGINEER"
	RoleProjectEngineer = "PROJECT_ENGINEER"
	RoleManager         = "MANAGER"
	RoleFieldManager    = "FIELD_MANAGER"
	RolePurchaseManager = "PURCHASE_MANAGER"
)

// User represents the central user entity for logic and database structure
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username  string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string         `gorm:"type:varchar(20)" json:"phone"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role      string         `gorm:"type:varchar(50);not null" json:"role"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// ValidRole reports whether role is one of the known role constants.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOwner, RoleOwnerClient, RoleEngineer, RoleProjectEngineer,
		RoleManager, RoleFieldManager, RolePurchaseManager:
		return true
	}
	return false
}
