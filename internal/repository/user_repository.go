package repository

import (
	"errors"
	"time"

	"aicourse_backend/internal/model"
	"aicourse_backend/internal/util"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) GetByID(id string) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreate returns the user with the given ID, creating it on first
// contact.
func (r *UserRepository) GetOrCreate(id string) (*model.User, error) {
	user, err := r.GetByID(id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, util.ErrUserNotFound) {
		return nil, err
	}

	user = &model.User{Base: model.Base{ID: id}, LastActiveAt: time.Now()}
	if err := r.DB.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdateLastSeen(id string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", id).
		Update("last_active_at", time.Now()).Error
}

// CounterDelta adjusts the aggregate progress counters. Negative values
// are floored so a counter can never go below zero, even when the stored
// value was already inconsistent.
type CounterDelta struct {
	ModuleCount      int
	ModuleCompleted  int
	QuizAnswered     int
	QuizCorrect      int
	SrsAnswered      int
	SrsCorrect       int
	QuestionsLearned int
}

func flooredAdd(current, delta int) int {
	v := current + delta
	if v < 0 {
		return 0
	}
	return v
}

// ApplyCounters applies a delta to a user's aggregate counters inside a
// transaction. tx may be nil, in which case the repository's own handle
// is used.
func (r *UserRepository) ApplyCounters(tx *gorm.DB, id string, d CounterDelta) error {
	db := r.DB
	if tx != nil {
		db = tx
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrUserNotFound
			}
			return err
		}
		user.ModuleCount = flooredAdd(user.ModuleCount, d.ModuleCount)
		user.ModuleCompleted = flooredAdd(user.ModuleCompleted, d.ModuleCompleted)
		user.QuizAnswered = flooredAdd(user.QuizAnswered, d.QuizAnswered)
		user.QuizCorrect = flooredAdd(user.QuizCorrect, d.QuizCorrect)
		user.SrsAnswered = flooredAdd(user.SrsAnswered, d.SrsAnswered)
		user.SrsCorrect = flooredAdd(user.SrsCorrect, d.SrsCorrect)
		user.QuestionsLearned = flooredAdd(user.QuestionsLearned, d.QuestionsLearned)
		return tx.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
			"module_count":      user.ModuleCount,
			"module_completed":  user.ModuleCompleted,
			"quiz_answered":     user.QuizAnswered,
			"quiz_correct":      user.QuizCorrect,
			"srs_answered":      user.SrsAnswered,
			"srs_correct":       user.SrsCorrect,
			"questions_learned": user.QuestionsLearned,
		}).Error
	})
}

func (r *UserRepository) Delete(tx *gorm.DB, id string) error {
	db := r.DB
	if tx != nil {
		db = tx
	}
	return db.Delete(&model.User{}, "id = ?", id).Error
}
