package service

import (
	"aicourse_backend/internal/model"
	"aicourse_backend/internal/repository"
	"aicourse_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	users *repository.UserRepository
	db    *gorm.DB
}

func NewUserService(users *repository.UserRepository, db *gorm.DB) *UserService {
	return &UserService{users: users, db: db}
}

// CreateUser registers a user document. An empty ID gets a generated one;
// this is the first-contact path for anonymous clients.
func (s *UserService) CreateUser(id string) (*model.User, error) {
	if id == "" {
		id = util.GenerateID("user")
	}
	return s.users.GetOrCreate(id)
}

func (s *UserService) GetUser(id string) (*model.User, error) {
	return s.users.GetByID(id)
}

// DeleteUser removes the user and everything it owns: courses, their
// modules, and all questions, in one batch.
func (s *UserService) DeleteUser(id string) error {
	if _, err := s.users.GetByID(id); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var courseIDs []string
		if err := tx.Model(&model.Course{}).Where("owner_user_id = ?", id).Pluck("id", &courseIDs).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Question{}, "owner_user_id = ?", id).Error; err != nil {
			return err
		}
		if len(courseIDs) > 0 {
			if err := tx.Delete(&model.Module{}, "course_id IN ?", courseIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&model.Course{}, "id IN ?", courseIDs).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.User{}, "id = ?", id).Error
	})
}
