package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aicourse_backend/internal/model"
	"aicourse_backend/internal/repository"
	"aicourse_backend/internal/util"
	"aicourse_backend/pkg/logger"
	"aicourse_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// generationLockTTL bounds how long the redis mirror of the advisory
// lock survives a crashed run.
const generationLockTTL = 30 * time.Minute

type CourseService struct {
	courses   *repository.CourseRepository
	modules   *repository.ModuleRepository
	questions *repository.QuestionRepository
	users     *repository.UserRepository
	generator Generator
	rdb       *redis.Client
	db        *gorm.DB

	// onRunComplete, when set, is notified after each generation run
	// returns, including runs that lost the lock race.
	onRunComplete func(courseID string)
}

func NewCourseService(
	courses *repository.CourseRepository,
	modules *repository.ModuleRepository,
	questions *repository.QuestionRepository,
	users *repository.UserRepository,
	generator Generator,
	rdb *redis.Client,
	db *gorm.DB,
) *CourseService {
	return &CourseService{
		courses:   courses,
		modules:   modules,
		questions: questions,
		users:     users,
		generator: generator,
		rdb:       rdb,
		db:        db,
	}
}

type CreateCourseRequest struct {
	OwnerUserID    string `json:"ownerUserId" binding:"required"`
	CourseID       string `json:"courseId"`
	TopicInput     string `json:"topicInput" binding:"required"`
	LanguageOption string `json:"languageOption"`
	LengthOption   string `json:"lengthOption"`
	LevelOption    string `json:"levelOption"`
}

// CreateCourse persists the placeholder course document and kicks off
// generation. The write is synchronous; everything after the returned
// course is asynchronous and observed through status polling.
func (s *CourseService) CreateCourse(req CreateCourseRequest) (*model.Course, error) {
	if _, err := s.users.GetOrCreate(req.OwnerUserID); err != nil {
		return nil, err
	}

	id := req.CourseID
	if id == "" {
		id = util.GenerateID("course")
	}

	course := &model.Course{
		Base:           model.Base{ID: id},
		OwnerUserID:    req.OwnerUserID,
		TopicInput:     req.TopicInput,
		LanguageOption: req.LanguageOption,
		LengthOption:   req.LengthOption,
		LevelOption:    req.LevelOption,
		Status:         model.CourseStatusGenerating,
	}
	if err := s.courses.Create(course); err != nil {
		return nil, err
	}

	s.startGeneration(course.ID, course.OwnerUserID)
	return course, nil
}

// RegenerateCourse re-runs generation for an existing course. The run
// resumes: an existing outline is reused and modules already active are
// skipped, so retrying after a partial failure only redoes the failed
// modules.
func (s *CourseService) RegenerateCourse(ownerID, courseID string) error {
	if _, err := s.users.GetByID(ownerID); err != nil {
		return err
	}
	if _, err := s.courses.GetForOwner(ownerID, courseID); err != nil {
		return err
	}
	s.startGeneration(courseID, ownerID)
	return nil
}

// startGeneration spawns the detached generation job. The job struct is
// the seam a future supervisor (timeout, retry, cancellation) attaches
// to; nothing cancels it today.
func (s *CourseService) startGeneration(courseID, ownerID string) {
	job := &generationJob{svc: s, courseID: courseID, ownerID: ownerID}
	go job.Run(context.Background())
}

func (s *CourseService) GetCourse(ownerID, courseID string) (*model.Course, []model.Module, error) {
	course, err := s.courses.GetForOwner(ownerID, courseID)
	if err != nil {
		return nil, nil, err
	}
	modules, err := s.modules.ListByCourse(courseID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.courses.TouchLastAccessed(courseID); err != nil {
		logger.Log.Warn("touch lastAccessed failed", zap.String("course", courseID), zap.Error(err))
	}
	return course, modules, nil
}

func (s *CourseService) ListCourses(ownerID string) ([]model.Course, error) {
	return s.courses.ListByOwner(ownerID)
}

func (s *CourseService) GetModule(moduleID string) (*model.Module, error) {
	return s.modules.GetByID(moduleID)
}

// CoursePatch is a partial update: only non-nil fields are applied.
type CoursePatch struct {
	CourseName     *string `json:"courseName"`
	Description    *string `json:"description"`
	LanguageOption *string `json:"languageOption"`
	LengthOption   *string `json:"lengthOption"`
	LevelOption    *string `json:"levelOption"`
}

func (s *CourseService) UpdateCourse(ownerID, courseID string, patch CoursePatch) (*model.Course, error) {
	if _, err := s.courses.GetForOwner(ownerID, courseID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.CourseName != nil {
		fields["course_name"] = *patch.CourseName
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.LanguageOption != nil {
		fields["language_option"] = *patch.LanguageOption
	}
	if patch.LengthOption != nil {
		fields["length_option"] = *patch.LengthOption
	}
	if patch.LevelOption != nil {
		fields["level_option"] = *patch.LevelOption
	}
	if len(fields) > 0 {
		if err := s.courses.UpdateFields(courseID, fields); err != nil {
			return nil, err
		}
	}
	return s.courses.GetByID(courseID)
}

// ModulePatch is a partial update: only non-nil fields are applied.
// Flipping IsCompleted adjusts the owner's moduleCompleted counter.
type ModulePatch struct {
	ModuleName  *string `json:"moduleName"`
	Description *string `json:"description"`
	ContentText *string `json:"contentText"`
	IsCompleted *bool   `json:"isCompleted"`
}

func (s *CourseService) UpdateModule(ownerID, moduleID string, patch ModulePatch) (*model.Module, error) {
	mod, err := s.modules.GetByID(moduleID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.GetForOwner(ownerID, mod.CourseID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.ModuleName != nil {
		fields["module_name"] = *patch.ModuleName
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.ContentText != nil {
		fields["content_text"] = *patch.ContentText
	}
	if patch.IsCompleted != nil && *patch.IsCompleted != mod.IsCompleted {
		fields["is_completed"] = *patch.IsCompleted
		delta := repository.CounterDelta{ModuleCompleted: 1}
		if !*patch.IsCompleted {
			delta.ModuleCompleted = -1
		}
		if err := s.users.ApplyCounters(nil, course.OwnerUserID, delta); err != nil {
			return nil, err
		}
	}
	if len(fields) > 0 {
		if err := s.modules.UpdateFields(moduleID, fields); err != nil {
			return nil, err
		}
	}
	return s.modules.GetByID(moduleID)
}

// DeleteCourse removes the course, its modules and their questions as
// one batch, then decrements the owner's aggregate counters by the
// counted removals, floored at zero.
func (s *CourseService) DeleteCourse(ownerID, courseID string) error {
	course, err := s.courses.GetForOwner(ownerID, courseID)
	if err != nil {
		return err
	}
	modules, err := s.modules.ListByCourse(courseID)
	if err != nil {
		return err
	}

	moduleIDs := make([]string, 0, len(modules))
	completed := 0
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
		if m.IsCompleted {
			completed++
		}
	}

	var learned int64
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		learned, err = s.questions.DeleteByModuleIDs(tx, moduleIDs)
		if err != nil {
			return err
		}
		if err := s.modules.DeleteByCourse(tx, courseID); err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, "id = ?", courseID).Error
	}); err != nil {
		return err
	}

	// The cascade is already committed; a failed counter write must not
	// turn the delete into a client-facing error.
	if err := s.users.ApplyCounters(nil, course.OwnerUserID, repository.CounterDelta{
		ModuleCount:      -len(modules),
		ModuleCompleted:  -completed,
		QuestionsLearned: -int(learned),
	}); err != nil {
		logger.Log.Warn("course counter update failed",
			zap.String("user", course.OwnerUserID), zap.Error(err))
	}
	return nil
}

// ---- asynchronous generation ----

// generationJob is one detached generation run for one course.
type generationJob struct {
	svc      *CourseService
	courseID string
	ownerID  string
}

// Run executes the pipeline. Errors never reach the HTTP caller that
// triggered the run; they are written to the course/module documents and
// logged. A panic is downgraded to a course-level error so the process
// survives.
func (j *generationJob) Run(ctx context.Context) {
	log := logger.Log.With(zap.String("course", j.courseID))

	// Registered first so it fires after the lock release.
	defer func() {
		if j.svc.onRunComplete != nil {
			j.svc.onRunComplete(j.courseID)
		}
	}()

	ok, err := j.acquireLock(ctx)
	if err != nil {
		log.Error("generation lock error", zap.Error(err))
		return
	}
	if !ok {
		log.Info("generation already in progress, skipping run")
		return
	}
	defer j.releaseLock(ctx)

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("generation panic: %v", r)
			log.Error("generation panicked", zap.Any("panic", r))
			j.failCourse(msg)
		}
	}()

	if err := j.run(ctx, log); err != nil {
		log.Error("generation failed", zap.Error(err))
		j.failCourse(err.Error())
	}
}

func (j *generationJob) failCourse(msg string) {
	if err := j.svc.courses.SetStatus(j.courseID, model.CourseStatusError, msg); err != nil {
		// The course may have been deleted mid-run; that is fine, the
		// write just fails soft.
		logger.Log.Warn("failed to record course error",
			zap.String("course", j.courseID), zap.Error(err))
	}
	monitoring.CourseGenerations.WithLabelValues("error").Inc()
}

// acquireLock takes the per-course advisory lock. The database column is
// the authority; the redis key is a fast-path mirror with a TTL so a
// crashed run cannot wedge the course forever.
func (j *generationJob) acquireLock(ctx context.Context) (bool, error) {
	if j.svc.rdb != nil {
		got, err := j.svc.rdb.SetNX(ctx, "coursegen:"+j.courseID, 1, generationLockTTL).Result()
		if err != nil {
			logger.Log.Warn("redis lock unavailable, falling back to db lock", zap.Error(err))
		} else if !got {
			return false, nil
		}
	}
	return j.svc.courses.AcquireGenerationLock(j.courseID)
}

func (j *generationJob) releaseLock(ctx context.Context) {
	if err := j.svc.courses.ReleaseGenerationLock(j.courseID); err != nil {
		logger.Log.Warn("failed to release generation lock",
			zap.String("course", j.courseID), zap.Error(err))
	}
	if j.svc.rdb != nil {
		j.svc.rdb.Del(ctx, "coursegen:"+j.courseID)
	}
}

type outlineModule struct {
	ModuleName  string `json:"moduleName"`
	Description string `json:"description"`
}

type courseOutline struct {
	CourseName  string          `json:"courseName"`
	Description string          `json:"description"`
	Modules     []outlineModule `json:"modules"`
}

type quizItem struct {
	QuestionText  string   `json:"questionText"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Star          int      `json:"star"`
}

type moduleContent struct {
	ContentText string     `json:"contentText"`
	ModuleQuiz  []quizItem `json:"moduleQuiz"`
}

func decodeInto(obj map[string]interface{}, out interface{}) error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (j *generationJob) run(ctx context.Context, log *zap.Logger) error {
	course, err := j.svc.courses.GetByID(j.courseID)
	if err != nil {
		return err
	}

	modules, err := j.svc.modules.ListByCourse(j.courseID)
	if err != nil {
		return err
	}

	// Outline step only when the course has no modules yet; a resumed
	// run reuses the existing outline.
	if len(modules) == 0 {
		if err := j.generateOutline(ctx, course); err != nil {
			return err
		}
		modules, err = j.svc.modules.ListByCourse(j.courseID)
		if err != nil {
			return err
		}
	}

	n := len(modules)
	failures := 0
	for i, mod := range modules {
		if mod.Status == model.ModuleStatusActive {
			// Idempotent resume: already-good content is not redone.
			continue
		}

		if err := j.svc.courses.SetStatus(j.courseID, model.CourseStatusGeneratingModule(i+1, n), ""); err != nil {
			return err
		}
		if err := j.svc.courses.SetProgress(j.courseID, 5+90*i/n); err != nil {
			return err
		}

		if err := j.generateModule(ctx, course, mod); err != nil {
			failures++
			monitoring.ModulesGenerated.WithLabelValues("error").Inc()
			log.Warn("module generation failed",
				zap.String("module", mod.ID), zap.Int("order", mod.Order), zap.Error(err))
			if serr := j.svc.modules.SetStatus(mod.ID, model.ModuleStatusError, err.Error()); serr != nil {
				log.Warn("failed to record module error", zap.String("module", mod.ID), zap.Error(serr))
			}
			continue
		}
		monitoring.ModulesGenerated.WithLabelValues("ok").Inc()
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d modules failed to generate", failures, n)
	}

	if err := j.svc.courses.SetStatus(j.courseID, model.CourseStatusActive, ""); err != nil {
		return err
	}
	if err := j.svc.courses.SetProgress(j.courseID, 100); err != nil {
		return err
	}
	if err := j.svc.users.ApplyCounters(nil, course.OwnerUserID, repository.CounterDelta{ModuleCount: n}); err != nil {
		return err
	}
	monitoring.CourseGenerations.WithLabelValues("active").Inc()
	log.Info("course generation complete", zap.Int("modules", n))
	return nil
}

// generateOutline asks the generator for the course outline and persists
// all module documents plus the course header in one atomic batch. A
// failure here aborts the whole run.
func (j *generationJob) generateOutline(ctx context.Context, course *model.Course) error {
	if err := j.svc.courses.SetStatus(j.courseID, model.CourseStatusGeneratingOutline, ""); err != nil {
		return err
	}

	obj, err := j.svc.generator.GenerateJSON(ctx,
		outlineSystemPrompt,
		outlinePrompt(course.TopicInput, course.LanguageOption, course.LengthOption, course.LevelOption),
		"course_outline", outlineSchema)
	if err != nil {
		return fmt.Errorf("outline generation: %w", err)
	}

	var outline courseOutline
	if err := decodeInto(obj, &outline); err != nil {
		return fmt.Errorf("outline decode: %w", err)
	}
	if len(outline.Modules) == 0 {
		return fmt.Errorf("outline generation: generator returned no modules")
	}

	rows := make([]model.Module, 0, len(outline.Modules))
	refs := make([]model.ModuleRef, 0, len(outline.Modules))
	for i, m := range outline.Modules {
		id := util.GenerateID("module")
		rows = append(rows, model.Module{
			Base:        model.Base{ID: id},
			CourseID:    j.courseID,
			ModuleName:  m.ModuleName,
			Description: m.Description,
			Order:       i + 1,
			Status:      model.ModuleStatusPending,
		})
		refs = append(refs, model.ModuleRef{ID: id, ModuleName: m.ModuleName, Description: m.Description})
	}

	refsJSON, err := json.Marshal(refs)
	if err != nil {
		return err
	}

	if err := j.svc.courses.SaveOutline(j.courseID, map[string]interface{}{
		"course_name": outline.CourseName,
		"description": outline.Description,
		"modules":     refsJSON,
		"status":      model.CourseStatusGeneratingContent,
		"error":       nil,
	}, rows); err != nil {
		return fmt.Errorf("outline batch write: %w", err)
	}
	return nil
}

// generateModule produces one module's content and quiz. Content and
// questions are persisted in one batch with merge semantics; outline
// fields on the module are untouched.
func (j *generationJob) generateModule(ctx context.Context, course *model.Course, mod model.Module) error {
	if err := j.svc.modules.SetStatus(mod.ID, model.ModuleStatusGenerating, ""); err != nil {
		return err
	}

	obj, err := j.svc.generator.GenerateJSON(ctx,
		contentSystemPrompt,
		contentPrompt(mod.ModuleName, mod.Description, course.TopicInput,
			course.LanguageOption, course.LengthOption, course.LevelOption),
		"module_content", contentSchema)
	if err != nil {
		return err
	}

	var content moduleContent
	if err := decodeInto(obj, &content); err != nil {
		return fmt.Errorf("content decode: %w", err)
	}
	if content.ContentText == "" {
		return fmt.Errorf("generator returned empty contentText")
	}

	questions := make([]model.Question, 0, len(content.ModuleQuiz))
	for i, item := range content.ModuleQuiz {
		if !model.ValidQuestionType(item.Type) {
			return fmt.Errorf("generator returned unknown question type %q", item.Type)
		}
		q := model.Question{
			Base:          model.Base{ID: util.GenerateID("question")},
			OwnerUserID:   course.OwnerUserID,
			ModuleID:      mod.ID,
			QuestionText:  item.QuestionText,
			Type:          model.QuestionType(item.Type),
			CorrectAnswer: item.CorrectAnswer,
			QuestionOrder: i + 1,
			Star:          clampStar(item.Star),
		}
		q.SetOptions(item.Options)
		questions = append(questions, q)
	}

	return j.svc.modules.SaveContent(mod.ID, content.ContentText, questions)
}

func clampStar(star int) int {
	if star < 1 {
		return 1
	}
	if star > 5 {
		return 5
	}
	return star
}
