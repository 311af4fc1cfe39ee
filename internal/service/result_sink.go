package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bimbelhub/bimbel-backend/internal/config"
	"github.com/bimbelhub/bimbel-backend/internal/model"
	"github.com/bimbelhub/bimbel-backend/internal/resultstore"
)

// ResultPayload is the queue message consumed by the result worker.
type ResultPayload struct {
	ExamID           string    `json:"exam_id"`
	LearnerID        string    `json:"learner_id"`
	Score            int       `json:"score"`
	TotalScore       int       `json:"total_score"`
	Percentage       float64   `json:"percentage"`
	IsPassed         bool      `json:"is_passed"`
	Answers          []string  `json:"answers"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// ToExamResult converts the payload to its persisted row form.
func (p *ResultPayload) ToExamResult() (*model.ExamResult, error) {
	examID, err := uuid.Parse(p.ExamID)
	if err != nil {
		return nil, fmt.Errorf("parse exam id: %w", err)
	}
	return &model.ExamResult{
		ExamID:           examID,
		LearnerID:        p.LearnerID,
		Score:            p.Score,
		TotalScore:       p.TotalScore,
		Percentage:       p.Percentage,
		IsPassed:         p.IsPassed,
		Answers:          p.Answers,
		TimeSpentSeconds: p.TimeSpentSeconds,
		SubmittedAt:      p.SubmittedAt,
	}, nil
}

// ResultSink implements session.Publisher. A graded result is enqueued to
// Redis for the persistence worker and, when an external store is
// configured, posted there as well. Both legs are best-effort: the session
// already holds the authoritative local result.
type ResultSink struct {
	rdb   *redis.Client
	store *resultstore.Client // nil when no external store is configured
	log   zerolog.Logger
}

// NewResultSink creates a ResultSink. store may be nil.
func NewResultSink(rdb *redis.Client, store *resultstore.Client, log zerolog.Logger) *ResultSink {
	return &ResultSink{
		rdb:   rdb,
		store: store,
		log:   log.With().Str("component", "result_sink").Logger(),
	}
}

// Publish delivers one graded result. Called at most once per session.
func (s *ResultSink) Publish(ctx context.Context, learnerID string, examID uuid.UUID, result model.Result, answers []string) error {
	now := time.Now().UTC()

	payload := ResultPayload{
		ExamID:           examID.String(),
		LearnerID:        learnerID,
		Score:            result.Score,
		TotalScore:       result.TotalScore,
		Percentage:       result.Percentage,
		IsPassed:         result.IsPassed,
		Answers:          answers,
		TimeSpentSeconds: result.TimeSpentSeconds,
		SubmittedAt:      now,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode result payload: %w", err)
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue result: %w", err)
	}

	if s.store != nil {
		if err := s.store.Submit(ctx, resultstore.Submission{
			ExamID:           examID,
			LearnerID:        learnerID,
			Score:            result.Score,
			TotalScore:       result.TotalScore,
			Percentage:       result.Percentage,
			IsPassed:         result.IsPassed,
			PerQuestion:      result.PerQuestion,
			Answers:          answers,
			TimeSpentSeconds: result.TimeSpentSeconds,
			SubmittedAt:      now,
		}); err != nil {
			// No retry here. The queued copy still reaches Postgres.
			s.log.Error().Err(err).
				Str("exam_id", examID.String()).
				Str("learner_id", learnerID).
				Msg("External result store rejected submission")
		}
	}

	return nil
}
