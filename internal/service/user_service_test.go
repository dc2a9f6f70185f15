package service

import (
	"errors"
	"strings"
	"testing"

	"aicourse_backend/internal/model"
	"aicourse_backend/internal/util"
)

func TestCreateUserGeneratesID(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.users, env.db)

	user, err := svc.CreateUser("")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if !strings.HasPrefix(user.ID, "user_") {
		t.Errorf("generated id = %q, want user_ prefix", user.ID)
	}

	// Existing ID is returned, not recreated.
	again, err := svc.CreateUser(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CreatedAt.Equal(user.CreatedAt) {
		t.Error("repeated create replaced the user document")
	}
}

func TestDeleteUserCascades(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.users, env.db)

	course := createAndSettle(t, env, CreateCourseRequest{
		OwnerUserID: "user-1",
		TopicInput:  "topic",
	})
	if course.Status != model.CourseStatusActive {
		t.Fatalf("setup course ended %q", course.Status)
	}

	if err := svc.DeleteUser("user-1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := env.users.GetByID("user-1"); !errors.Is(err, util.ErrUserNotFound) {
		t.Fatalf("user still present: %v", err)
	}
	var courses, modules, questions int64
	env.db.Model(&model.Course{}).Where("owner_user_id = ?", "user-1").Count(&courses)
	env.db.Model(&model.Module{}).Where("course_id = ?", course.ID).Count(&modules)
	env.db.Model(&model.Question{}).Where("owner_user_id = ?", "user-1").Count(&questions)
	if courses != 0 || modules != 0 || questions != 0 {
		t.Errorf("cascade left %d courses, %d modules, %d questions", courses, modules, questions)
	}

	if err := svc.DeleteUser("user-1"); !errors.Is(err, util.ErrUserNotFound) {
		t.Fatalf("second delete err = %v, want ErrUserNotFound", err)
	}
}
