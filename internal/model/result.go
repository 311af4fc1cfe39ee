package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is the graded outcome of one exam session, computed once at the
// submitted transition.
type Result struct {
	Score            int     `json:"score"`
	TotalScore       int     `json:"total_score"`
	Percentage       float64 `json:"percentage"`
	IsPassed         bool    `json:"is_passed"`
	PerQuestion      []bool  `json:"per_question_correctness"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`
}

// ExamResult is a persisted result row as stored by the result worker and
// listed for admins.
type ExamResult struct {
	ID               int       `json:"id"`
	ExamID           uuid.UUID `json:"exam_id"`
	LearnerID        string    `json:"learner_id"`
	Score            int       `json:"score"`
	TotalScore       int       `json:"total_score"`
	Percentage       float64   `json:"percentage"`
	IsPassed         bool      `json:"is_passed"`
	Answers          []string  `json:"answers"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	SubmittedAt      time.Time `json:"submitted_at"`
}
