package repository

import (
	"errors"
	"time"

	"aicourse_backend/internal/model"
	"aicourse_backend/internal/util"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// Create inserts a new course document. A duplicate ID is a conflict,
// surfaced as ErrCourseExists rather than a driver error.
func (r *CourseRepository) Create(course *model.Course) error {
	var count int64
	if err := r.DB.Model(&model.Course{}).Where("id = ?", course.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return util.ErrCourseExists
	}
	return r.DB.Create(course).Error
}

func (r *CourseRepository) GetByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) GetForOwner(ownerID, id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, "id = ? AND owner_user_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) ListByOwner(ownerID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("owner_user_id = ?", ownerID).
		Order("last_accessed DESC").
		Find(&courses).Error
	return courses, err
}

// UpdateFields applies a partial update; absent fields keep their
// previous values.
func (r *CourseRepository) UpdateFields(id string, fields map[string]interface{}) error {
	res := r.DB.Model(&model.Course{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrCourseNotFound
	}
	return nil
}

// SetStatus writes the lifecycle status. The error column is populated
// only for the error status and cleared otherwise, so status and error
// always agree.
func (r *CourseRepository) SetStatus(id string, status model.CourseStatus, errMsg string) error {
	fields := map[string]interface{}{
		"status": status,
		"error":  nil,
	}
	if status == model.CourseStatusError && errMsg != "" {
		fields["error"] = errMsg
	}
	return r.UpdateFields(id, fields)
}

func (r *CourseRepository) SetProgress(id string, progress int) error {
	return r.UpdateFields(id, map[string]interface{}{"progress": progress})
}

func (r *CourseRepository) TouchLastAccessed(id string) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", id).
		Update("last_accessed", time.Now()).Error
}

// AcquireGenerationLock flips the advisory lock column with a
// conditional update. It returns false when another generation run
// already holds the lock; the check and the set are a single statement,
// so two concurrent callers cannot both win.
func (r *CourseRepository) AcquireGenerationLock(id string) (bool, error) {
	res := r.DB.Model(&model.Course{}).
		Where("id = ? AND generating = ?", id, false).
		Update("generating", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *CourseRepository) ReleaseGenerationLock(id string) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", id).
		Update("generating", false).Error
}

// SaveOutline persists the generated outline atomically: all module
// documents plus the course's new name, description, refs and status
// commit together or not at all.
func (r *CourseRepository) SaveOutline(courseID string, course map[string]interface{}, modules []model.Module) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if len(modules) > 0 {
			if err := tx.Create(&modules).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Course{}).Where("id = ?", courseID).Updates(course).Error
	})
}
