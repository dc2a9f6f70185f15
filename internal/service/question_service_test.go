package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aicourse_backend/internal/model"
	"aicourse_backend/internal/srs"
	"aicourse_backend/internal/util"
)

func seedQuestion(t *testing.T, env *testEnv, id, owner, moduleID string, mutate func(*model.Question)) *model.Question {
	t.Helper()
	if _, err := env.users.GetOrCreate(owner); err != nil {
		t.Fatal(err)
	}
	q := &model.Question{
		Base:          model.Base{ID: id},
		OwnerUserID:   owner,
		ModuleID:      moduleID,
		QuestionText:  "What is 6*7?",
		Type:          model.QuestionTypeMCQ,
		CorrectAnswer: "42",
		QuestionOrder: 1,
		Star:          2,
	}
	q.SetOptions([]string{"6", "42", "67"})
	if mutate != nil {
		mutate(q)
	}
	if err := env.db.Create(q).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return q
}

func TestRateQuestionPersistsSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedQuestion(t, env, "q1", "user-1", "mod-1", nil)

	state, err := env.qSvc.RateQuestion(ctx, "user-1", "q1", "Good")
	if err != nil {
		t.Fatalf("RateQuestion: %v", err)
	}
	if state.Interval != 3 || state.Repetitions != 1 || state.EaseFactor != 2.5 {
		t.Errorf("state = %+v, want interval 3, reps 1, ease 2.5", state)
	}

	stored, err := env.questions.GetForOwner("user-1", "q1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Srs.Interval != state.Interval || stored.Srs.Repetitions != state.Repetitions {
		t.Errorf("persisted srs = %+v, want %+v", stored.Srs, state)
	}
	if stored.Srs.NextReview == nil || stored.Srs.LastReview == nil {
		t.Fatal("review timestamps not persisted")
	}
	gap := stored.Srs.NextReview.Sub(*stored.Srs.LastReview)
	if want := 3 * 24 * time.Hour; gap != want {
		t.Errorf("nextReview gap = %v, want %v", gap, want)
	}

	user := env.mustGetUser(t, "user-1")
	if user.SrsAnswered != 1 || user.SrsCorrect != 1 {
		t.Errorf("counters = answered %d correct %d, want 1/1", user.SrsAnswered, user.SrsCorrect)
	}
}

func TestRateQuestionAgainIsNotCorrect(t *testing.T) {
	env := newTestEnv(t)
	seedQuestion(t, env, "q1", "user-1", "mod-1", nil)

	if _, err := env.qSvc.RateQuestion(context.Background(), "user-1", "q1", "Again"); err != nil {
		t.Fatalf("RateQuestion: %v", err)
	}
	user := env.mustGetUser(t, "user-1")
	if user.SrsAnswered != 1 || user.SrsCorrect != 0 {
		t.Errorf("counters = answered %d correct %d, want 1/0", user.SrsAnswered, user.SrsCorrect)
	}
}

func TestRateQuestionKnownMarksLearnedState(t *testing.T) {
	env := newTestEnv(t)
	seedQuestion(t, env, "q1", "user-1", "mod-1", nil)

	state, err := env.qSvc.RateQuestion(context.Background(), "user-1", "q1", "Known")
	if err != nil {
		t.Fatal(err)
	}
	if !state.IsLearned || state.Interval != srs.KnownInterval {
		t.Errorf("state = %+v, want retired schedule", state)
	}
}

func TestRateQuestionValidation(t *testing.T) {
	env := newTestEnv(t)
	seedQuestion(t, env, "q1", "user-1", "mod-1", nil)
	ctx := context.Background()

	if _, err := env.qSvc.RateQuestion(ctx, "user-1", "q1", "great"); !errors.Is(err, util.ErrInvalidRating) {
		t.Errorf("err = %v, want ErrInvalidRating", err)
	}
	if _, err := env.qSvc.RateQuestion(ctx, "user-1", "missing", "Good"); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Errorf("err = %v, want ErrQuestionNotFound", err)
	}
	// Another user's question is invisible, not forbidden.
	if _, err := env.qSvc.RateQuestion(ctx, "user-2", "q1", "Good"); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Errorf("foreign owner err = %v, want ErrQuestionNotFound", err)
	}
}

func TestMarkQuestionAsLearnedIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedQuestion(t, env, "q1", "user-1", "mod-1", nil)

	for i := 0; i < 2; i++ {
		if err := env.qSvc.MarkQuestionAsLearned(ctx, "user-1", "q1"); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}

	stored, _ := env.questions.GetForOwner("user-1", "q1")
	if !stored.Learned {
		t.Error("question not marked learned")
	}
	if got := env.mustGetUser(t, "user-1").QuestionsLearned; got != 1 {
		t.Errorf("questionsLearned = %d, want 1 after repeated calls", got)
	}

	if err := env.qSvc.MarkQuestionAsLearned(ctx, "ghost", "q1"); !errors.Is(err, util.ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestGetDueQuestionsFiltersAndOrders(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	past := now.Add(-time.Hour)
	older := now.Add(-48 * time.Hour)
	future := now.Add(time.Hour)

	seedQuestion(t, env, "due-recent", "user-1", "mod-1", func(q *model.Question) {
		q.Learned = true
		q.Srs.NextReview = &past
	})
	seedQuestion(t, env, "due-old", "user-1", "mod-1", func(q *model.Question) {
		q.Learned = true
		q.Srs.NextReview = &older
	})
	seedQuestion(t, env, "not-yet", "user-1", "mod-1", func(q *model.Question) {
		q.Learned = true
		q.Srs.NextReview = &future
	})
	seedQuestion(t, env, "unlearned", "user-1", "mod-1", func(q *model.Question) {
		q.Srs.NextReview = &past
	})
	seedQuestion(t, env, "never-reviewed", "user-1", "mod-1", func(q *model.Question) {
		q.Learned = true
	})
	seedQuestion(t, env, "other-owner", "user-2", "mod-1", func(q *model.Question) {
		q.Learned = true
		q.Srs.NextReview = &past
	})

	due, err := env.qSvc.GetDueQuestions(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetDueQuestions: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("due = %d questions, want 2", len(due))
	}
	if due[0].ID != "due-old" || due[1].ID != "due-recent" {
		t.Errorf("order = [%s, %s], want oldest review first", due[0].ID, due[1].ID)
	}
}

func TestSubmitAnswerJudgesWithoutTouchingSchedule(t *testing.T) {
	env := newTestEnv(t)
	seedQuestion(t, env, "q1", "user-1", "mod-1", nil)

	verdict, err := env.qSvc.SubmitAnswer(context.Background(), "user-1", "q1", "42")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !verdict.IsCorrect || verdict.CorrectAnswer != "42" || verdict.Feedback == "" {
		t.Errorf("verdict = %+v", verdict)
	}
	if got := env.gen.callCount("answer_verdict"); got != 1 {
		t.Errorf("judge calls = %d, want 1", got)
	}

	stored, _ := env.questions.GetForOwner("user-1", "q1")
	if stored.Learned || stored.Srs.LastReview != nil {
		t.Error("answering must not change learned or review state")
	}

	user := env.mustGetUser(t, "user-1")
	if user.QuizAnswered != 1 || user.QuizCorrect != 1 {
		t.Errorf("counters = answered %d correct %d, want 1/1", user.QuizAnswered, user.QuizCorrect)
	}

	// Incorrect verdict counts the attempt only.
	env.gen.verdict = map[string]interface{}{
		"isCorrect":     false,
		"correctAnswer": "42",
		"feedback":      "Not quite.",
	}
	if _, err := env.qSvc.SubmitAnswer(context.Background(), "user-1", "q1", "41"); err != nil {
		t.Fatal(err)
	}
	user = env.mustGetUser(t, "user-1")
	if user.QuizAnswered != 2 || user.QuizCorrect != 1 {
		t.Errorf("counters = answered %d correct %d, want 2/1", user.QuizAnswered, user.QuizCorrect)
	}
}
