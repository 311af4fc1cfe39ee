package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bimbelhub/bimbel-backend/internal/model"
)

// ExamRepository handles tryout definition data access. Questions are stored
// as a JSONB document alongside the exam row; the definition is read and
// written as a unit.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, title, description, duration_minutes, questions,
	        total_score, passing_score, active, created_at, updated_at`

func scanExam(row interface{ Scan(...interface{}) error }) (*model.ExamDefinition, error) {
	e := &model.ExamDefinition{}
	var questions []byte
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.DurationMinutes, &questions,
		&e.TotalScore, &e.PassingScore, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &e.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return e, nil
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamDefinition, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id)
	return scanExam(row)
}

// ListPaginated retrieves exams ordered by creation time, newest first.
// Pass activeOnly=true to restrict to the learner-visible catalog.
func (r *ExamRepository) ListPaginated(ctx context.Context, activeOnly bool, limit, offset int) ([]model.ExamDefinition, int, error) {
	countQuery := `SELECT COUNT(*) FROM exams`
	if activeOnly {
		countQuery += ` WHERE active`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + examColumns + ` FROM exams`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var exams []model.ExamDefinition
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		exams = append(exams, *e)
	}
	return exams, total, rows.Err()
}

// ListActive returns every active exam.
// Used for cache prewarming on application startup.
func (r *ExamRepository) ListActive(ctx context.Context) ([]model.ExamDefinition, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams WHERE active ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.ExamDefinition
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *e)
	}
	return exams, rows.Err()
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.ExamDefinition) error {
	questions, err := json.Marshal(e.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, description, duration_minutes, questions, total_score, passing_score, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.Description, e.DurationMinutes, questions,
		e.TotalScore, e.PassingScore, e.Active,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update replaces the full definition of an exam.
func (r *ExamRepository) Update(ctx context.Context, e *model.ExamDefinition) error {
	questions, err := json.Marshal(e.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`UPDATE exams
		 SET title = $1, description = $2, duration_minutes = $3, questions = $4,
		     total_score = $5, passing_score = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING updated_at`,
		e.Title, e.Description, e.DurationMinutes, questions,
		e.TotalScore, e.PassingScore, e.ID,
	).Scan(&e.UpdatedAt)
}

// SetActive flips the learner-visible flag.
func (r *ExamRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET active = $1, updated_at = NOW() WHERE id = $2`,
		active, id)
	return err
}

// Delete removes an exam permanently.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	return err
}
