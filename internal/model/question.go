package model

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"aicourse_backend/internal/srs"
)

// QuestionType enumerates the quiz question kinds the generator may
// produce. For true-false questions CorrectAnswer is always the literal
// "True" or "False" regardless of content language.
type QuestionType string

const (
	QuestionTypeMCQ       QuestionType = "mcq"
	QuestionTypeOpenEnded QuestionType = "open-ended"
	QuestionTypeTrueFalse QuestionType = "true-false"
)

// ValidQuestionType reports whether t is one of the three known kinds.
func ValidQuestionType(t string) bool {
	switch QuestionType(t) {
	case QuestionTypeMCQ, QuestionTypeOpenEnded, QuestionTypeTrueFalse:
		return true
	}
	return false
}

// swagger:model
type Question struct {
	Base
	OwnerUserID   string         `gorm:"index;type:varchar(48);not null" json:"ownerUserId"`
	ModuleID      string         `gorm:"index;type:varchar(48);not null" json:"moduleId"`
	QuestionText  string         `gorm:"type:text;not null" json:"questionText"`
	Type          QuestionType   `gorm:"size:16;not null" json:"type"`
	Options       datatypes.JSON `json:"options"`
	CorrectAnswer string         `gorm:"type:text" json:"correctAnswer"`
	QuestionOrder int            `gorm:"default:0" json:"questionOrder"`
	Star          int            `gorm:"default:1" json:"star"`
	Learned       bool           `gorm:"index;default:false" json:"learned"`
	Srs           srs.State      `gorm:"embedded;embeddedPrefix:srs_" json:"srsData"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	q.ID = fallbackID(q.ID)
	if len(q.Options) == 0 {
		q.Options = datatypes.JSON([]byte("[]"))
	}
	return nil
}

// OptionsList decodes the answer options; empty for open-ended questions.
func (q *Question) OptionsList() []string {
	var opts []string
	if len(q.Options) > 0 {
		_ = json.Unmarshal(q.Options, &opts)
	}
	return opts
}

// SetOptions encodes the answer options.
func (q *Question) SetOptions(opts []string) {
	raw, err := json.Marshal(opts)
	if err != nil {
		raw = []byte("[]")
	}
	q.Options = datatypes.JSON(raw)
}
