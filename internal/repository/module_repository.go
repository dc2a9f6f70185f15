package repository

import (
	"errors"

	"aicourse_backend/internal/model"
	"aicourse_backend/internal/util"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) GetByID(id string) (*model.Module, error) {
	var mod model.Module
	err := r.DB.First(&mod, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mod, nil
}

// ListByCourse returns a course's modules in outline order.
func (r *ModuleRepository) ListByCourse(courseID string) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("course_id = ?", courseID).
		Order("module_order ASC").
		Find(&modules).Error
	return modules, err
}

// UpdateFields applies a partial update with merge semantics; columns
// not named keep their previous values.
func (r *ModuleRepository) UpdateFields(id string, fields map[string]interface{}) error {
	res := r.DB.Model(&model.Module{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrModuleNotFound
	}
	return nil
}

// SetStatus mirrors CourseRepository.SetStatus for module rows.
func (r *ModuleRepository) SetStatus(id string, status model.ModuleStatus, errMsg string) error {
	fields := map[string]interface{}{
		"status": status,
		"error":  nil,
	}
	if status == model.ModuleStatusError && errMsg != "" {
		fields["error"] = errMsg
	}
	return r.UpdateFields(id, fields)
}

// SaveContent persists generated module content together with its quiz
// questions and the module's transition to active, as one batch.
func (r *ModuleRepository) SaveContent(moduleID, contentText string, questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Module{}).Where("id = ?", moduleID).Updates(map[string]interface{}{
			"content_text": contentText,
			"status":       model.ModuleStatusActive,
			"error":        nil,
		}).Error
	})
}

func (r *ModuleRepository) DeleteByCourse(tx *gorm.DB, courseID string) error {
	db := r.DB
	if tx != nil {
		db = tx
	}
	return db.Delete(&model.Module{}, "course_id = ?", courseID).Error
}
