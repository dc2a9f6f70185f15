package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseStatus is the course-level generation lifecycle.
type CourseStatus string

const (
	CourseStatusGenerating        CourseStatus = "generating"
	CourseStatusGeneratingOutline CourseStatus = "generating outline"
	CourseStatusGeneratingContent CourseStatus = "generating content"
	CourseStatusActive            CourseStatus = "active"
	CourseStatusError             CourseStatus = "error"
)

// CourseStatusGeneratingModule reports per-module progress, e.g.
// "generating module 2/5".
func CourseStatusGeneratingModule(i, n int) CourseStatus {
	return CourseStatus(fmt.Sprintf("generating module %d/%d", i, n))
}

// IsGenerating reports whether the status names any in-flight
// generation phase, including the per-module variants.
func (s CourseStatus) IsGenerating() bool {
	return strings.HasPrefix(string(s), "generating")
}

// Terminal reports whether generation has finished, either way.
func (s CourseStatus) Terminal() bool {
	return s == CourseStatusActive || s == CourseStatusError
}

// ModuleRef is the lightweight module metadata embedded on the course
// document for outline display. Authoritative content lives on the
// Module rows.
type ModuleRef struct {
	ID          string `json:"id"`
	ModuleName  string `json:"moduleName"`
	Description string `json:"description"`
}

// swagger:model
type Course struct {
	Base
	OwnerUserID    string       `gorm:"index;type:varchar(48);not null" json:"ownerUserId"`
	CourseName     string       `gorm:"size:255" json:"courseName"`
	Description    string       `gorm:"type:text" json:"description"`
	TopicInput     string       `gorm:"type:text;not null" json:"topicInput"`
	LanguageOption string       `gorm:"size:64" json:"languageOption"`
	LengthOption   string       `gorm:"size:32" json:"lengthOption"`
	LevelOption    string       `gorm:"size:32" json:"levelOption"`
	Status         CourseStatus `gorm:"size:64;default:'generating'" json:"status"`
	Progress       int          `gorm:"default:0" json:"progress"`
	Error          *string      `gorm:"type:text" json:"error,omitempty"`

	// Advisory lock column: set by a conditional update before a
	// generation run starts, cleared when the run ends. Closes the
	// check-then-act gap between concurrent regenerate calls.
	Generating bool `gorm:"default:false" json:"-"`

	Modules      datatypes.JSON `json:"modules"`
	LastAccessed time.Time      `json:"lastAccessed"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	c.ID = fallbackID(c.ID)
	if c.Status == "" {
		c.Status = CourseStatusGenerating
	}
	if c.LastAccessed.IsZero() {
		c.LastAccessed = time.Now()
	}
	if len(c.Modules) == 0 {
		c.Modules = datatypes.JSON([]byte("[]"))
	}
	return nil
}

// ModuleRefs decodes the embedded outline metadata.
func (c *Course) ModuleRefs() []ModuleRef {
	var refs []ModuleRef
	if len(c.Modules) > 0 {
		_ = json.Unmarshal(c.Modules, &refs)
	}
	return refs
}

// SetModuleRefs encodes the embedded outline metadata.
func (c *Course) SetModuleRefs(refs []ModuleRef) {
	raw, err := json.Marshal(refs)
	if err != nil {
		raw = []byte("[]")
	}
	c.Modules = datatypes.JSON(raw)
}
