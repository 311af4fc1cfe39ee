package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExamDefinition is the immutable description of a tryout: what is asked,
// how long the learner has, and how the result is judged. TotalScore is
// always the sum of the question points.
type ExamDefinition struct {
	ID              uuid.UUID    `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	DurationMinutes int          `json:"duration_minutes"`
	Questions       QuestionList `json:"questions"`
	TotalScore      int          `json:"total_score"`
	PassingScore    *int         `json:"passing_score,omitempty"` // nil → 50% rule
	Active          bool         `json:"active"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// DurationSeconds converts the authored duration to seconds for the countdown.
func (e *ExamDefinition) DurationSeconds() int {
	return e.DurationMinutes * 60
}

// Normalize recomputes TotalScore from the questions.
func (e *ExamDefinition) Normalize() {
	e.TotalScore = e.Questions.TotalPoints()
}

// Validate checks the definition invariants before it can be activated.
func (e *ExamDefinition) Validate() error {
	if e.Title == "" {
		return fmt.Errorf("exam title must not be empty")
	}
	if e.DurationMinutes <= 0 {
		return fmt.Errorf("exam duration must be positive, got %d minutes", e.DurationMinutes)
	}
	if len(e.Questions) == 0 {
		return fmt.Errorf("exam has no questions")
	}
	if err := e.Questions.Validate(); err != nil {
		return err
	}
	if e.TotalScore != e.Questions.TotalPoints() {
		return fmt.Errorf("total score %d does not match question points %d",
			e.TotalScore, e.Questions.TotalPoints())
	}
	if e.PassingScore != nil && (*e.PassingScore < 0 || *e.PassingScore > e.TotalScore) {
		return fmt.Errorf("passing score %d outside [0, %d]", *e.PassingScore, e.TotalScore)
	}
	return nil
}

// ExamSummary is the catalog view of an exam: no questions, no answers.
type ExamSummary struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	QuestionCount   int       `json:"question_count"`
	TotalScore      int       `json:"total_score"`
	PassingScore    *int      `json:"passing_score,omitempty"`
	Active          bool      `json:"active"`
}

// Summary strips a definition down to its catalog view.
func (e *ExamDefinition) Summary() ExamSummary {
	return ExamSummary{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		DurationMinutes: e.DurationMinutes,
		QuestionCount:   len(e.Questions),
		TotalScore:      e.TotalScore,
		PassingScore:    e.PassingScore,
		Active:          e.Active,
	}
}

// PaperQuestion is a question as shown to a learner mid-exam: no correct
// answer, no explanation.
type PaperQuestion struct {
	Index   int          `json:"index"`
	Type    QuestionType `json:"type"`
	Text    string       `json:"text"`
	Points  int          `json:"points"`
	Options []string     `json:"options,omitempty"`
}

// ExamPaper is the learner-facing payload for one exam.
type ExamPaper struct {
	ExamID          uuid.UUID       `json:"exam_id"`
	Title           string          `json:"title"`
	DurationMinutes int             `json:"duration_minutes"`
	TotalScore      int             `json:"total_score"`
	Questions       []PaperQuestion `json:"questions"`
}

// Paper builds the learner-facing payload, withholding answers.
func (e *ExamDefinition) Paper() ExamPaper {
	qs := make([]PaperQuestion, len(e.Questions))
	for i, q := range e.Questions {
		pq := PaperQuestion{
			Index:  i,
			Type:   q.Type(),
			Text:   q.Text(),
			Points: q.Points(),
		}
		if mc, ok := q.(MultipleChoice); ok {
			pq.Options = mc.Options
		}
		qs[i] = pq
	}
	return ExamPaper{
		ExamID:          e.ID,
		Title:           e.Title,
		DurationMinutes: e.DurationMinutes,
		TotalScore:      e.TotalScore,
		Questions:       qs,
	}
}

// ReviewQuestion is a graded question as shown after submission, including
// the correct answer and the optional explanation.
type ReviewQuestion struct {
	PaperQuestion
	CorrectAnswer string `json:"correct_answer"`
	GivenAnswer   string `json:"given_answer"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation,omitempty"`
}

// CreateExamRequest is the admin payload for creating a new exam.
type CreateExamRequest struct {
	Title           string            `json:"title" binding:"required,min=3,max=255"`
	Description     string            `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes int               `json:"duration_minutes" binding:"required,min=1,max=480"`
	PassingScore    *int              `json:"passing_score" binding:"omitempty,min=0"`
	Questions       []QuestionPayload `json:"questions" binding:"required,min=1,dive"`
}

// UpdateExamRequest is the admin payload for replacing an inactive exam.
type UpdateExamRequest struct {
	Title           string            `json:"title" binding:"omitempty,min=3,max=255"`
	Description     string            `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes int               `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	PassingScore    *int              `json:"passing_score" binding:"omitempty,min=0"`
	Questions       []QuestionPayload `json:"questions" binding:"omitempty,min=1,dive"`
}
