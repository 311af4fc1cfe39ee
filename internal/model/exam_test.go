package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validExam() *ExamDefinition {
	def := &ExamDefinition{
		ID:              uuid.New(),
		Title:           "Tryout Bahasa Inggris",
		DurationMinutes: 45,
		Questions: QuestionList{
			MultipleChoice{Prompt: "Choose the synonym of 'begin'", Weight: 10, Options: []string{"start", "stop"}, Correct: "start"},
			ShortAnswer{Prompt: "Past tense of 'go'", Weight: 10, Correct: "went"},
		},
	}
	def.Normalize()
	return def
}

func TestExamValidate(t *testing.T) {
	def := validExam()
	require.NoError(t, def.Validate())
	assert.Equal(t, 20, def.TotalScore)
	assert.Equal(t, 2700, def.DurationSeconds())
}

func TestExamValidateRejectsBadDefinitions(t *testing.T) {
	def := validExam()
	def.Title = ""
	assert.ErrorContains(t, def.Validate(), "title")

	def = validExam()
	def.DurationMinutes = 0
	assert.ErrorContains(t, def.Validate(), "duration")

	def = validExam()
	def.Questions = nil
	assert.ErrorContains(t, def.Validate(), "no questions")

	def = validExam()
	def.TotalScore = 99
	assert.ErrorContains(t, def.Validate(), "does not match")

	def = validExam()
	passing := 25
	def.PassingScore = &passing
	assert.ErrorContains(t, def.Validate(), "passing score")
}

func TestExamPaperWithholdsAnswers(t *testing.T) {
	def := validExam()
	paper := def.Paper()

	require.Len(t, paper.Questions, 2)
	assert.Equal(t, def.ID, paper.ExamID)
	assert.Equal(t, 0, paper.Questions[0].Index)
	assert.Equal(t, []string{"start", "stop"}, paper.Questions[0].Options)
	assert.Nil(t, paper.Questions[1].Options)
}

func TestExamSummary(t *testing.T) {
	def := validExam()
	sum := def.Summary()

	assert.Equal(t, def.Title, sum.Title)
	assert.Equal(t, 2, sum.QuestionCount)
	assert.Equal(t, 20, sum.TotalScore)
}
