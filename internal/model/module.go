package model

import "gorm.io/gorm"

// ModuleStatus is the per-module generation lifecycle:
// pending → generating → active | error.
type ModuleStatus string

const (
	ModuleStatusPending    ModuleStatus = "pending"
	ModuleStatusGenerating ModuleStatus = "generating"
	ModuleStatusActive     ModuleStatus = "active"
	ModuleStatusError      ModuleStatus = "error"
)

// swagger:model
type Module struct {
	Base
	CourseID    string       `gorm:"index;type:varchar(48);not null" json:"courseId"`
	ModuleName  string       `gorm:"size:255;not null" json:"moduleName"`
	Description string       `gorm:"type:text" json:"description"`
	ContentText string       `gorm:"type:longtext" json:"contentText"`
	Order       int          `gorm:"column:module_order;not null" json:"order"`
	IsCompleted bool         `gorm:"default:false" json:"isCompleted"`
	Status      ModuleStatus `gorm:"size:32;default:'pending'" json:"status"`
	Error       *string      `gorm:"type:text" json:"error,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	m.ID = fallbackID(m.ID)
	if m.Status == "" {
		m.Status = ModuleStatusPending
	}
	return nil
}
