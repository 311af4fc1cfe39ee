// Package scoring grades a finished answer sheet against an exam definition.
// It is pure: no I/O, no shared state, same inputs always produce the same
// Result. The session engine calls it once at the submitted transition; it is
// equally safe to call again later for re-verification.
package scoring

import (
	"github.com/bimbelhub/bimbel-backend/internal/model"
)

// Score grades the given answers against the definition. answers is
// index-aligned with the exam's questions; an empty string is an unanswered
// slot and never earns points. Scoring is all-or-nothing per question with
// exact string equality per variant.
//
// TimeSpentSeconds is left zero; the session fills it in, since elapsed time
// is session state, not grading state.
func Score(def *model.ExamDefinition, answers []string) model.Result {
	perQuestion := make([]bool, len(def.Questions))
	score := 0

	for i, q := range def.Questions {
		var given string
		if i < len(answers) {
			given = answers[i]
		}
		if given == "" {
			continue
		}
		if correctAnswer(q) == given {
			perQuestion[i] = true
			score += q.Points()
		}
	}

	total := def.TotalScore
	percentage := 0.0
	if total > 0 {
		percentage = float64(score) / float64(total) * 100
	}

	var passed bool
	if def.PassingScore != nil {
		passed = score >= *def.PassingScore
	} else {
		passed = percentage >= 50
	}

	return model.Result{
		Score:       score,
		TotalScore:  total,
		Percentage:  percentage,
		IsPassed:    passed,
		PerQuestion: perQuestion,
	}
}

// correctAnswer extracts the expected answer string for each variant.
// The switch is the single place a new question type must be handled.
func correctAnswer(q model.Question) string {
	switch q := q.(type) {
	case model.MultipleChoice:
		return q.Correct
	case model.TrueFalse:
		return q.Correct
	case model.ShortAnswer:
		return q.Correct
	default:
		// Unknown variants cannot be graded; they are never correct.
		return ""
	}
}
