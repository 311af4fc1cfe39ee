package model

import (
	"encoding/json"
	"fmt"
)

// QuestionType discriminates question variants on the wire.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionTypeShortAnswer    QuestionType = "SHORT_ANSWER"
)

// Question is the closed set of question variants. Every variant carries a
// prompt, a positive point weight, and an optional explanation that is only
// shown after grading. The scorer matches exhaustively on the concrete types;
// a new variant has no effect until it is handled there.
type Question interface {
	Type() QuestionType
	Text() string
	Points() int
	Explanation() string
	Validate() error

	isQuestion()
}

// MultipleChoice asks the learner to pick one of an ordered option list.
type MultipleChoice struct {
	Prompt  string
	Weight  int
	Options []string
	Correct string // must equal one of Options
	Explain string
}

func (q MultipleChoice) Type() QuestionType  { return QuestionTypeMultipleChoice }
func (q MultipleChoice) Text() string        { return q.Prompt }
func (q MultipleChoice) Points() int         { return q.Weight }
func (q MultipleChoice) Explanation() string { return q.Explain }
func (q MultipleChoice) isQuestion()         {}

func (q MultipleChoice) Validate() error {
	if err := validateCommon(q.Prompt, q.Weight); err != nil {
		return err
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("multiple choice question requires at least one option")
	}
	for _, opt := range q.Options {
		if opt == "" {
			return fmt.Errorf("multiple choice option must not be empty")
		}
		if opt == q.Correct {
			return nil
		}
	}
	return fmt.Errorf("correct answer %q is not among the options", q.Correct)
}

// TrueFalse asks for a "true" or "false" verdict.
type TrueFalse struct {
	Prompt  string
	Weight  int
	Correct string // "true" or "false"
	Explain string
}

func (q TrueFalse) Type() QuestionType  { return QuestionTypeTrueFalse }
func (q TrueFalse) Text() string        { return q.Prompt }
func (q TrueFalse) Points() int         { return q.Weight }
func (q TrueFalse) Explanation() string { return q.Explain }
func (q TrueFalse) isQuestion()         {}

func (q TrueFalse) Validate() error {
	if err := validateCommon(q.Prompt, q.Weight); err != nil {
		return err
	}
	if q.Correct != "true" && q.Correct != "false" {
		return fmt.Errorf(`true/false answer must be "true" or "false", got %q`, q.Correct)
	}
	return nil
}

// ShortAnswer asks for free text graded by exact string equality.
type ShortAnswer struct {
	Prompt  string
	Weight  int
	Correct string
	Explain string
}

func (q ShortAnswer) Type() QuestionType  { return QuestionTypeShortAnswer }
func (q ShortAnswer) Text() string        { return q.Prompt }
func (q ShortAnswer) Points() int         { return q.Weight }
func (q ShortAnswer) Explanation() string { return q.Explain }
func (q ShortAnswer) isQuestion()         {}

func (q ShortAnswer) Validate() error {
	if err := validateCommon(q.Prompt, q.Weight); err != nil {
		return err
	}
	if q.Correct == "" {
		return fmt.Errorf("short answer question requires a correct text")
	}
	return nil
}

func validateCommon(prompt string, weight int) error {
	if prompt == "" {
		return fmt.Errorf("question text must not be empty")
	}
	if weight <= 0 {
		return fmt.Errorf("question points must be positive, got %d", weight)
	}
	return nil
}

// questionWire is the tagged JSON encoding shared by all variants.
type questionWire struct {
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	Points        int          `json:"points"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty"`
}

// QuestionList is an ordered question sequence with tag-discriminated JSON.
type QuestionList []Question

func (l QuestionList) MarshalJSON() ([]byte, error) {
	wire := make([]questionWire, len(l))
	for i, q := range l {
		w := questionWire{
			Type:        q.Type(),
			Text:        q.Text(),
			Points:      q.Points(),
			Explanation: q.Explanation(),
		}
		switch q := q.(type) {
		case MultipleChoice:
			w.Options = q.Options
			w.CorrectAnswer = q.Correct
		case TrueFalse:
			w.CorrectAnswer = q.Correct
		case ShortAnswer:
			w.CorrectAnswer = q.Correct
		default:
			return nil, fmt.Errorf("unknown question variant %T", q)
		}
		wire[i] = w
	}
	return json.Marshal(wire)
}

func (l *QuestionList) UnmarshalJSON(data []byte) error {
	var wire []questionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	out := make(QuestionList, len(wire))
	for i, w := range wire {
		q, err := questionFromWire(w)
		if err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		out[i] = q
	}
	*l = out
	return nil
}

func questionFromWire(w questionWire) (Question, error) {
	switch w.Type {
	case QuestionTypeMultipleChoice:
		return MultipleChoice{
			Prompt:  w.Text,
			Weight:  w.Points,
			Options: w.Options,
			Correct: w.CorrectAnswer,
			Explain: w.Explanation,
		}, nil
	case QuestionTypeTrueFalse:
		return TrueFalse{
			Prompt:  w.Text,
			Weight:  w.Points,
			Correct: w.CorrectAnswer,
			Explain: w.Explanation,
		}, nil
	case QuestionTypeShortAnswer:
		return ShortAnswer{
			Prompt:  w.Text,
			Weight:  w.Points,
			Correct: w.CorrectAnswer,
			Explain: w.Explanation,
		}, nil
	default:
		return nil, fmt.Errorf("unknown question type %q", w.Type)
	}
}

// TotalPoints sums the point weight of every question.
func (l QuestionList) TotalPoints() int {
	total := 0
	for _, q := range l {
		total += q.Points()
	}
	return total
}

// Validate checks every question in order.
func (l QuestionList) Validate() error {
	for i, q := range l {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

// QuestionPayload is the admin-facing request shape for a single question.
type QuestionPayload struct {
	Type          string   `json:"type" binding:"required,oneof=MULTIPLE_CHOICE TRUE_FALSE SHORT_ANSWER"`
	Text          string   `json:"text" binding:"required,min=1,max=4000"`
	Points        int      `json:"points" binding:"required,min=1"`
	Options       []string `json:"options" binding:"omitempty,dive,min=1"`
	CorrectAnswer string   `json:"correct_answer" binding:"required"`
	Explanation   string   `json:"explanation" binding:"omitempty,max=4000"`
}

// ToQuestion converts the payload to its variant and fully validates it.
func (p QuestionPayload) ToQuestion() (Question, error) {
	q, err := questionFromWire(questionWire{
		Type:          QuestionType(p.Type),
		Text:          p.Text,
		Points:        p.Points,
		Options:       p.Options,
		CorrectAnswer: p.CorrectAnswer,
		Explanation:   p.Explanation,
	})
	if err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}
