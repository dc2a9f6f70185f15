package repository

import (
	"errors"
	"time"

	"aicourse_backend/internal/model"
	"aicourse_backend/internal/srs"
	"aicourse_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) GetByID(id string) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) GetForOwner(ownerID, id string) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, "id = ? AND owner_user_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) ListByModule(moduleID string) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("module_id = ?", moduleID).
		Order("question_order ASC").
		Find(&questions).Error
	return questions, err
}

// ListDue returns learned questions whose next review has passed,
// soonest first. An unlearned question is never due, whatever its
// timestamps say.
func (r *QuestionRepository) ListDue(ownerID string, now time.Time) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("owner_user_id = ? AND learned = ? AND srs_next_review IS NOT NULL AND srs_next_review <= ?",
		ownerID, true, now).
		Order("srs_next_review ASC").
		Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) UpdateSrs(id string, state srs.State) error {
	res := r.DB.Model(&model.Question{}).Where("id = ?", id).Updates(map[string]interface{}{
		"srs_interval":    state.Interval,
		"srs_repetitions": state.Repetitions,
		"srs_ease_factor": state.EaseFactor,
		"srs_last_review": state.LastReview,
		"srs_next_review": state.NextReview,
		"srs_is_learned":  state.IsLearned,
		"updated_at":      time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrQuestionNotFound
	}
	return nil
}

// MarkLearned sets the learned flag and reports whether this call
// actually flipped it, so the caller can keep aggregate counters
// idempotent.
func (r *QuestionRepository) MarkLearned(id string) (bool, error) {
	res := r.DB.Model(&model.Question{}).
		Where("id = ? AND learned = ?", id, false).
		Update("learned", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteByModuleIDs batch-deletes every question belonging to the given
// modules and returns how many of them were learned, for the caller's
// counter bookkeeping.
func (r *QuestionRepository) DeleteByModuleIDs(tx *gorm.DB, moduleIDs []string) (learned int64, err error) {
	if len(moduleIDs) == 0 {
		return 0, nil
	}
	db := r.DB
	if tx != nil {
		db = tx
	}
	if err := db.Model(&model.Question{}).
		Where("module_id IN ? AND learned = ?", moduleIDs, true).
		Count(&learned).Error; err != nil {
		return 0, err
	}
	if err := db.Delete(&model.Question{}, "module_id IN ?", moduleIDs).Error; err != nil {
		return 0, err
	}
	return learned, nil
}
