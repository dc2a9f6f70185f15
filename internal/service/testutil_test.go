package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"aicourse_backend/internal/model"
	"aicourse_backend/internal/repository"
	"aicourse_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps every session on the same in-memory
	// database, including goroutines spawned by the generation job.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.User{}, &model.Course{}, &model.Module{}, &model.Question{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db        *gorm.DB
	users     *repository.UserRepository
	courses   *repository.CourseRepository
	modules   *repository.ModuleRepository
	questions *repository.QuestionRepository
	gen       *fakeGenerator
	courseSvc *CourseService
	qSvc      *QuestionService
	runs      chan string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	env := &testEnv{
		db:        db,
		users:     repository.NewUserRepository(db),
		courses:   repository.NewCourseRepository(db),
		modules:   repository.NewModuleRepository(db),
		questions: repository.NewQuestionRepository(db),
		gen:       newFakeGenerator(),
		runs:      make(chan string, 16),
	}
	env.courseSvc = NewCourseService(env.courses, env.modules, env.questions, env.users, env.gen, nil, db)
	env.courseSvc.onRunComplete = func(courseID string) { env.runs <- courseID }
	env.qSvc = NewQuestionService(env.questions, env.users, env.gen, nil)
	return env
}

// waitCourseSettled blocks until the next generation run for the course
// finishes, then returns the resulting course row. Waiting on the run
// itself rather than polling status means a retry is never confused
// with the stale terminal state of the run before it.
func (e *testEnv) waitCourseSettled(t *testing.T, courseID string) *model.Course {
	t.Helper()
	select {
	case id := <-e.runs:
		if id != courseID {
			t.Fatalf("unexpected run completion for course %q", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("generation run did not finish")
	}

	course, err := e.courses.GetByID(courseID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if course.Generating {
		t.Fatal("generation lock still held after run completion")
	}
	return course
}

func (e *testEnv) mustGetUser(t *testing.T, id string) *model.User {
	t.Helper()
	user, err := e.users.GetByID(id)
	if err != nil {
		t.Fatalf("get user %s: %v", id, err)
	}
	return user
}

// fakeGenerator serves canned outlines, module content and verdicts. It
// can be told to fail content generation for specific module names, or
// to fail every call with a fixed error.
type fakeGenerator struct {
	mu          sync.Mutex
	calls       []string
	failModules map[string]error
	failAll     error
	moduleNames []string
	quizPerMod  int
	verdict     map[string]interface{}
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		failModules: map[string]error{},
		moduleNames: []string{"Basics", "Intermediate", "Advanced"},
		quizPerMod:  3,
		verdict: map[string]interface{}{
			"isCorrect":     true,
			"correctAnswer": "42",
			"feedback":      "Correct.",
		},
	}
}

func (f *fakeGenerator) callCount(schemaName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == schemaName {
			n++
		}
	}
	return n
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, _, user, schemaName string, _ map[string]interface{}) (map[string]interface{}, error) {
	f.mu.Lock()
	f.calls = append(f.calls, schemaName)
	failAll := f.failAll
	f.mu.Unlock()

	if failAll != nil {
		return nil, failAll
	}

	switch schemaName {
	case "course_outline":
		mods := make([]interface{}, 0, len(f.moduleNames))
		for _, name := range f.moduleNames {
			mods = append(mods, map[string]interface{}{
				"moduleName":  name,
				"description": "About " + name,
			})
		}
		return map[string]interface{}{
			"courseName":  "Test Course",
			"description": "A generated course",
			"modules":     mods,
		}, nil

	case "module_content":
		f.mu.Lock()
		var failErr error
		for name, err := range f.failModules {
			if strings.Contains(user, name) {
				failErr = err
			}
		}
		f.mu.Unlock()
		if failErr != nil {
			return nil, failErr
		}

		quiz := make([]interface{}, 0, f.quizPerMod)
		for i := 0; i < f.quizPerMod; i++ {
			quiz = append(quiz, map[string]interface{}{
				"questionText":  fmt.Sprintf("Question %d?", i+1),
				"type":          "mcq",
				"options":       []interface{}{"a", "b", "c", "d"},
				"correctAnswer": "a",
				"star":          i + 1,
			})
		}
		return map[string]interface{}{
			"contentText": "Lesson body.",
			"moduleQuiz":  quiz,
		}, nil

	case "answer_verdict":
		return f.verdict, nil
	}
	return nil, fmt.Errorf("unexpected schema %q", schemaName)
}

func (f *fakeGenerator) GenerateText(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "text")
	f.mu.Unlock()
	return "text", nil
}
