package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr string
	}{
		{
			name: "valid multiple choice",
			q:    MultipleChoice{Prompt: "2+2?", Weight: 10, Options: []string{"3", "4"}, Correct: "4"},
		},
		{
			name:    "multiple choice answer not in options",
			q:       MultipleChoice{Prompt: "2+2?", Weight: 10, Options: []string{"3", "5"}, Correct: "4"},
			wantErr: "not among the options",
		},
		{
			name:    "multiple choice without options",
			q:       MultipleChoice{Prompt: "2+2?", Weight: 10, Correct: "4"},
			wantErr: "at least one option",
		},
		{
			name:    "empty prompt",
			q:       ShortAnswer{Prompt: "", Weight: 5, Correct: "x"},
			wantErr: "text must not be empty",
		},
		{
			name:    "zero points",
			q:       ShortAnswer{Prompt: "x?", Weight: 0, Correct: "x"},
			wantErr: "points must be positive",
		},
		{
			name: "valid true false",
			q:    TrueFalse{Prompt: "Bumi bulat", Weight: 5, Correct: "true"},
		},
		{
			name:    "true false with invalid verdict",
			q:       TrueFalse{Prompt: "Bumi bulat", Weight: 5, Correct: "yes"},
			wantErr: `must be "true" or "false"`,
		},
		{
			name:    "short answer without correct text",
			q:       ShortAnswer{Prompt: "x?", Weight: 5},
			wantErr: "requires a correct text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestQuestionListJSONRoundTrip(t *testing.T) {
	list := QuestionList{
		MultipleChoice{Prompt: "2+2?", Weight: 10, Options: []string{"3", "4"}, Correct: "4", Explain: "dasar"},
		TrueFalse{Prompt: "Bumi bulat", Weight: 5, Correct: "true"},
		ShortAnswer{Prompt: "Ibukota Jawa Timur", Weight: 5, Correct: "Surabaya"},
	}

	data, err := json.Marshal(list)
	require.NoError(t, err)

	var decoded QuestionList
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, list, decoded)
}

func TestQuestionListUnmarshalUnknownType(t *testing.T) {
	var list QuestionList
	err := json.Unmarshal([]byte(`[{"type":"ESSAY","text":"x","points":5,"correct_answer":"y"}]`), &list)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown question type")
}

func TestQuestionListTotalPoints(t *testing.T) {
	list := QuestionList{
		TrueFalse{Prompt: "a", Weight: 5, Correct: "true"},
		ShortAnswer{Prompt: "b", Weight: 15, Correct: "x"},
	}
	assert.Equal(t, 20, list.TotalPoints())
	assert.Equal(t, 0, QuestionList{}.TotalPoints())
}

func TestQuestionPayloadToQuestion(t *testing.T) {
	p := QuestionPayload{
		Type:          "MULTIPLE_CHOICE",
		Text:          "2+2?",
		Points:        10,
		Options:       []string{"3", "4"},
		CorrectAnswer: "4",
	}

	q, err := p.ToQuestion()
	require.NoError(t, err)
	mc, ok := q.(MultipleChoice)
	require.True(t, ok)
	assert.Equal(t, "4", mc.Correct)

	p.CorrectAnswer = "7"
	_, err = p.ToQuestion()
	assert.Error(t, err)
}
