package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bimbelhub/bimbel-backend/internal/model"
)

// ResultRepository handles persisted tryout results.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert stores a single graded result.
func (r *ResultRepository) Insert(ctx context.Context, res *model.ExamResult) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_results
		     (exam_id, learner_id, score, total_score, percentage, is_passed, answers, time_spent_seconds, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		res.ExamID, res.LearnerID, res.Score, res.TotalScore, res.Percentage,
		res.IsPassed, answers, res.TimeSpentSeconds, res.SubmittedAt,
	).Scan(&res.ID)
}

// BulkInsert stores a batch of graded results in one round trip using UNNEST.
func (r *ResultRepository) BulkInsert(ctx context.Context, batch []*model.ExamResult) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	examIDs := make([]uuid.UUID, 0, n)
	learnerIDs := make([]string, 0, n)
	scores := make([]int, 0, n)
	totals := make([]int, 0, n)
	percentages := make([]float64, 0, n)
	passed := make([]bool, 0, n)
	answers := make([]string, 0, n)
	timeSpents := make([]int, 0, n)
	submittedAts := make([]time.Time, 0, n)

	for _, res := range batch {
		raw, err := json.Marshal(res.Answers)
		if err != nil {
			return fmt.Errorf("encode answers: %w", err)
		}
		examIDs = append(examIDs, res.ExamID)
		learnerIDs = append(learnerIDs, res.LearnerID)
		scores = append(scores, res.Score)
		totals = append(totals, res.TotalScore)
		percentages = append(percentages, res.Percentage)
		passed = append(passed, res.IsPassed)
		answers = append(answers, string(raw))
		timeSpents = append(timeSpents, res.TimeSpentSeconds)
		submittedAts = append(submittedAts, res.SubmittedAt)
	}

	query := `
		INSERT INTO exam_results
		    (exam_id, learner_id, score, total_score, percentage, is_passed, answers, time_spent_seconds, submitted_at)
		SELECT
			u.exam_id,
			u.learner_id,
			u.score,
			u.total_score,
			u.percentage,
			u.is_passed,
			u.answers::jsonb,
			u.time_spent_seconds,
			u.submitted_at
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::int[],
			$4::int[],
			$5::float8[],
			$6::bool[],
			$7::text[],
			$8::int[],
			$9::timestamptz[]
		) AS u (exam_id, learner_id, score, total_score, percentage, is_passed, answers, time_spent_seconds, submitted_at)
	`

	_, err := r.pool.Exec(ctx, query,
		examIDs, learnerIDs, scores, totals, percentages, passed, answers, timeSpents, submittedAts)
	return err
}

const resultColumns = `id, exam_id, learner_id, score, total_score, percentage,
	        is_passed, answers, time_spent_seconds, submitted_at`

func scanResult(row interface{ Scan(...interface{}) error }) (*model.ExamResult, error) {
	res := &model.ExamResult{}
	var answers []byte
	err := row.Scan(&res.ID, &res.ExamID, &res.LearnerID, &res.Score, &res.TotalScore,
		&res.Percentage, &res.IsPassed, &answers, &res.TimeSpentSeconds, &res.SubmittedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &res.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return res, nil
}

// ListByLearner returns a learner's result history, newest first.
func (r *ResultRepository) ListByLearner(ctx context.Context, learnerID string, limit, offset int) ([]model.ExamResult, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_results WHERE learner_id = $1`, learnerID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM exam_results WHERE learner_id = $1
		 ORDER BY submitted_at DESC LIMIT $2 OFFSET $3`,
		learnerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *res)
	}
	return results, total, rows.Err()
}

// ListByExam returns every persisted result for one exam, newest first.
func (r *ResultRepository) ListByExam(ctx context.Context, examID uuid.UUID, limit, offset int) ([]model.ExamResult, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_results WHERE exam_id = $1`, examID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM exam_results WHERE exam_id = $1
		 ORDER BY submitted_at DESC LIMIT $2 OFFSET $3`,
		examID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *res)
	}
	return results, total, rows.Err()
}
