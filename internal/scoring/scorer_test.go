package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimbelhub/bimbel-backend/internal/model"
)

func newExam(t *testing.T, passingScore *int, questions ...model.Question) *model.ExamDefinition {
	t.Helper()
	def := &model.ExamDefinition{
		ID:              uuid.New(),
		Title:           "Tryout IPA",
		DurationMinutes: 20,
		Questions:       model.QuestionList(questions),
		PassingScore:    passingScore,
	}
	def.Normalize()
	require.NoError(t, def.Validate())
	return def
}

func TestScoreAllCorrect(t *testing.T) {
	def := newExam(t, nil,
		model.MultipleChoice{Prompt: "Planet terdekat dari matahari?", Weight: 10, Options: []string{"Venus", "Merkurius"}, Correct: "Merkurius"},
		model.TrueFalse{Prompt: "Air mendidih pada 100 derajat celsius", Weight: 5, Correct: "true"},
		model.ShortAnswer{Prompt: "Simbol kimia emas", Weight: 5, Correct: "Au"},
	)

	result := Score(def, []string{"Merkurius", "true", "Au"})

	assert.Equal(t, 20, result.Score)
	assert.Equal(t, 20, result.TotalScore)
	assert.InDelta(t, 100.0, result.Percentage, 1e-9)
	assert.True(t, result.IsPassed)
	assert.Equal(t, []bool{true, true, true}, result.PerQuestion)
}

func TestScoreUnansweredNeverEarnPoints(t *testing.T) {
	def := newExam(t, nil,
		model.MultipleChoice{Prompt: "1+1?", Weight: 10, Options: []string{"1", "2"}, Correct: "2"},
		model.ShortAnswer{Prompt: "Warna langit", Weight: 10, Correct: "biru"},
	)

	result := Score(def, []string{"2", ""})

	assert.Equal(t, 10, result.Score)
	assert.Equal(t, []bool{true, false}, result.PerQuestion)
	assert.InDelta(t, 50.0, result.Percentage, 1e-9)
	assert.True(t, result.IsPassed)
}

func TestScoreExactMatchOnly(t *testing.T) {
	def := newExam(t, nil,
		model.ShortAnswer{Prompt: "Simbol kimia emas", Weight: 10, Correct: "Au"},
		model.TrueFalse{Prompt: "Bumi datar", Weight: 10, Correct: "false"},
	)

	// Case and whitespace differences are wrong answers; no normalization.
	result := Score(def, []string{"au", "False"})

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, []bool{false, false}, result.PerQuestion)
	assert.False(t, result.IsPassed)
}

func TestScoreShortAnswerSheet(t *testing.T) {
	def := newExam(t, nil,
		model.TrueFalse{Prompt: "a", Weight: 5, Correct: "true"},
		model.TrueFalse{Prompt: "b", Weight: 5, Correct: "true"},
		model.TrueFalse{Prompt: "c", Weight: 5, Correct: "true"},
	)

	// Answer slice shorter than the question list: missing slots are
	// unanswered, not an error.
	result := Score(def, []string{"true"})

	assert.Equal(t, 5, result.Score)
	assert.Equal(t, []bool{true, false, false}, result.PerQuestion)
}

func TestScoreWithPassingScore(t *testing.T) {
	passing := 15
	def := newExam(t, &passing,
		model.TrueFalse{Prompt: "a", Weight: 10, Correct: "true"},
		model.TrueFalse{Prompt: "b", Weight: 10, Correct: "true"},
	)

	assert.False(t, Score(def, []string{"true", "false"}).IsPassed)
	assert.True(t, Score(def, []string{"true", "true"}).IsPassed)
}

func TestScorePassingScoreOverridesPercentage(t *testing.T) {
	// Threshold below 50%: the explicit passing score wins over the
	// percentage default.
	passing := 5
	def := newExam(t, &passing,
		model.TrueFalse{Prompt: "a", Weight: 5, Correct: "true"},
		model.TrueFalse{Prompt: "b", Weight: 15, Correct: "true"},
	)

	result := Score(def, []string{"true", "false"})
	assert.InDelta(t, 25.0, result.Percentage, 1e-9)
	assert.True(t, result.IsPassed)
}

func TestScoreDefaultThresholdBoundary(t *testing.T) {
	def := newExam(t, nil,
		model.TrueFalse{Prompt: "a", Weight: 10, Correct: "true"},
		model.TrueFalse{Prompt: "b", Weight: 10, Correct: "true"},
	)

	// Exactly 50% passes under the default rule.
	assert.True(t, Score(def, []string{"true", "false"}).IsPassed)
	assert.False(t, Score(def, []string{"false", "false"}).IsPassed)
}

func TestScoreNoQuestions(t *testing.T) {
	def := &model.ExamDefinition{Questions: model.QuestionList{}}

	result := Score(def, nil)

	assert.Equal(t, 0, result.Score)
	assert.InDelta(t, 0.0, result.Percentage, 1e-9)
	assert.False(t, result.IsPassed)
	assert.Empty(t, result.PerQuestion)
}

func TestScoreIsDeterministic(t *testing.T) {
	def := newExam(t, nil,
		model.MultipleChoice{Prompt: "q", Weight: 10, Options: []string{"A", "B"}, Correct: "A"},
		model.ShortAnswer{Prompt: "r", Weight: 10, Correct: "x"},
	)
	answers := []string{"A", "y"}

	first := Score(def, answers)
	second := Score(def, answers)

	assert.Equal(t, first, second)
}
