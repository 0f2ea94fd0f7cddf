package service

import (
	"encoding/json"

	"buildflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// writeAuditLog records who did what inside the same transaction as the
// workflow write, so the trail never diverges from the data.
func writeAuditLog(tx *gorm.DB, userID *uuid.UUID, action, entityID, entityName string, details interface{}) error {
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}

	return tx.Create(&entry).Error
}
