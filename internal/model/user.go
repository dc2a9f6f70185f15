package model

import (
	"time"

	"gorm.io/gorm"
)

// swagger:model
type User struct {
	Base
	LastActiveAt time.Time `json:"lastActiveAt"`

	// Aggregate learning-progress counters. Mutated by course and
	// question lifecycle events; decrements are floored at zero.
	ModuleCount      int `gorm:"default:0" json:"moduleCount"`
	ModuleCompleted  int `gorm:"default:0" json:"moduleCompleted"`
	QuizAnswered     int `gorm:"default:0" json:"quizAnswered"`
	QuizCorrect      int `gorm:"default:0" json:"quizCorrect"`
	SrsAnswered      int `gorm:"default:0" json:"srsAnswered"`
	SrsCorrect       int `gorm:"default:0" json:"srsCorrect"`
	QuestionsLearned int `gorm:"default:0" json:"questionsLearned"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.ID = fallbackID(u.ID)
	if u.LastActiveAt.IsZero() {
		u.LastActiveAt = time.Now()
	}
	return nil
}
