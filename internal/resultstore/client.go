// Package resultstore is a thin HTTP client for the external result store.
// Delivery is best-effort: the caller logs failures and never retries, so
// the client only reports whether the store acknowledged the submission.
package resultstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Submission is the wire payload posted to the store.
type Submission struct {
	ExamID           uuid.UUID `json:"exam_id"`
	LearnerID        string    `json:"learner_id"`
	Score            int       `json:"score"`
	TotalScore       int       `json:"total_score"`
	Percentage       float64   `json:"percentage"`
	IsPassed         bool      `json:"is_passed"`
	PerQuestion      []bool    `json:"per_question_correctness"`
	Answers          []string  `json:"answers"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// Client posts graded submissions to a result store endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given endpoint URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Submit posts one submission. Any non-2xx status is an error.
func (c *Client) Submit(ctx context.Context, sub Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("result store responded %d", resp.StatusCode)
	}
	return nil
}
