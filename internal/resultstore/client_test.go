package resultstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSubmit(t *testing.T) {
	var received Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sub := Submission{
		ExamID:           uuid.New(),
		LearnerID:        "learner-1",
		Score:            15,
		TotalScore:       20,
		Percentage:       75,
		IsPassed:         true,
		PerQuestion:      []bool{true, false, true},
		Answers:          []string{"4", "", "Jakarta"},
		TimeSpentSeconds: 420,
		SubmittedAt:      time.Now().UTC(),
	}

	c := NewClient(srv.URL, time.Second)
	require.NoError(t, c.Submit(context.Background(), sub))
	assert.Equal(t, sub.LearnerID, received.LearnerID)
	assert.Equal(t, sub.PerQuestion, received.PerQuestion)
}

func TestClientSubmitNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Submit(context.Background(), Submission{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestClientSubmitUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	assert.Error(t, c.Submit(context.Background(), Submission{}))
}
