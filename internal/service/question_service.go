package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aicourse_backend/internal/model"
	"aicourse_backend/internal/repository"
	"aicourse_backend/internal/srs"
	"aicourse_backend/internal/util"
	"aicourse_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// dueCacheTTL keeps the due-question list cache short-lived; review
// activity invalidates it explicitly anyway.
const dueCacheTTL = 30 * time.Second

type QuestionService struct {
	questions *repository.QuestionRepository
	users     *repository.UserRepository
	generator Generator
	rdb       *redis.Client
}

func NewQuestionService(
	questions *repository.QuestionRepository,
	users *repository.UserRepository,
	generator Generator,
	rdb *redis.Client,
) *QuestionService {
	return &QuestionService{
		questions: questions,
		users:     users,
		generator: generator,
		rdb:       rdb,
	}
}

// AnswerVerdict is the generator's judgment of a submitted answer. It is
// returned to the client without touching SRS or learned state; the
// client commits a rating separately, after showing feedback.
type AnswerVerdict struct {
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
	Feedback      string `json:"feedback"`
}

func (s *QuestionService) SubmitAnswer(ctx context.Context, ownerID, questionID, answer string) (*AnswerVerdict, error) {
	q, err := s.questions.GetForOwner(ownerID, questionID)
	if err != nil {
		return nil, err
	}

	obj, err := s.generator.GenerateJSON(ctx,
		judgeSystemPrompt,
		judgePrompt(q.QuestionText, q.CorrectAnswer, answer),
		"answer_verdict", judgeSchema)
	if err != nil {
		return nil, err
	}

	var verdict AnswerVerdict
	if err := decodeInto(obj, &verdict); err != nil {
		return nil, fmt.Errorf("verdict decode: %w", err)
	}

	delta := repository.CounterDelta{QuizAnswered: 1}
	if verdict.IsCorrect {
		delta.QuizCorrect = 1
	}
	if err := s.users.ApplyCounters(nil, ownerID, delta); err != nil {
		logger.Log.Warn("quiz counter update failed", zap.String("user", ownerID), zap.Error(err))
	}

	return &verdict, nil
}

// RateQuestion applies the scheduler to the question's current state and
// persists the result. A rating other than Again counts as a successful
// spaced-repetition answer for the user's aggregate stats.
func (s *QuestionService) RateQuestion(ctx context.Context, ownerID, questionID, rating string) (*srs.State, error) {
	parsed, err := srs.ParseRating(rating)
	if err != nil {
		return nil, util.ErrInvalidRating
	}

	q, err := s.questions.GetForOwner(ownerID, questionID)
	if err != nil {
		return nil, err
	}

	next := srs.Apply(q.Srs, parsed, time.Now())
	if err := s.questions.UpdateSrs(questionID, next); err != nil {
		return nil, err
	}

	delta := repository.CounterDelta{SrsAnswered: 1}
	if parsed != srs.RatingAgain {
		delta.SrsCorrect = 1
	}
	if err := s.users.ApplyCounters(nil, ownerID, delta); err != nil {
		logger.Log.Warn("srs counter update failed", zap.String("user", ownerID), zap.Error(err))
	}

	s.invalidateDueCache(ctx, ownerID)
	return &next, nil
}

// MarkQuestionAsLearned is idempotent: a second call reports success
// without re-incrementing the owner's questionsLearned counter.
func (s *QuestionService) MarkQuestionAsLearned(ctx context.Context, ownerID, questionID string) error {
	if _, err := s.users.GetByID(ownerID); err != nil {
		return err
	}
	if _, err := s.questions.GetForOwner(ownerID, questionID); err != nil {
		return err
	}

	flipped, err := s.questions.MarkLearned(questionID)
	if err != nil {
		return err
	}
	if !flipped {
		return nil
	}

	if err := s.users.ApplyCounters(nil, ownerID, repository.CounterDelta{QuestionsLearned: 1}); err != nil {
		return err
	}
	s.invalidateDueCache(ctx, ownerID)
	return nil
}

// GetDueQuestions returns the owner's learned questions whose next
// review has passed, soonest first, behind a short redis cache.
func (s *QuestionService) GetDueQuestions(ctx context.Context, ownerID string) ([]model.Question, error) {
	key := dueCacheKey(ownerID)
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached []model.Question
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	due, err := s.questions.ListDue(ownerID, time.Now())
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(due); err == nil {
			s.rdb.Set(ctx, key, raw, dueCacheTTL)
		}
	}
	return due, nil
}

func (s *QuestionService) ListByModule(moduleID string) ([]model.Question, error) {
	return s.questions.ListByModule(moduleID)
}

func (s *QuestionService) GetQuestion(ownerID, questionID string) (*model.Question, error) {
	return s.questions.GetForOwner(ownerID, questionID)
}

func dueCacheKey(ownerID string) string {
	return "due:" + ownerID
}

func (s *QuestionService) invalidateDueCache(ctx context.Context, ownerID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, dueCacheKey(ownerID)).Err(); err != nil {
		logger.Log.Warn("due cache invalidation failed", zap.String("user", ownerID), zap.Error(err))
	}
}
