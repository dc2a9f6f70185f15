package model

import (
	"time"

	"github.com/google/uuid"
)

// Base is embedded by every persisted document. IDs are prefixed UUIDs
// produced by util.GenerateID; the BeforeCreate hooks fall back to a bare
// UUID so a row can never be written without a primary key.
type Base struct {
	ID        string    `gorm:"primaryKey;type:varchar(48)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func fallbackID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
