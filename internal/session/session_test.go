package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimbelhub/bimbel-backend/internal/model"
)

func testExam(t *testing.T) *model.ExamDefinition {
	t.Helper()
	def := &model.ExamDefinition{
		ID:              uuid.New(),
		Title:           "Tryout Matematika Dasar",
		DurationMinutes: 30,
		Questions: model.QuestionList{
			model.MultipleChoice{Prompt: "2 + 2 = ?", Weight: 10, Options: []string{"3", "4", "5"}, Correct: "4"},
			model.TrueFalse{Prompt: "7 adalah bilangan prima", Weight: 5, Correct: "true"},
			model.ShortAnswer{Prompt: "Ibukota Indonesia", Weight: 5, Correct: "Jakarta"},
		},
	}
	def.Normalize()
	require.NoError(t, def.Validate())
	return def
}

type capturePublisher struct {
	mu        sync.Mutex
	calls     int
	learnerID string
	examID    uuid.UUID
	result    model.Result
	answers   []string
	err       error
	done      chan struct{}
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{done: make(chan struct{}, 4)}
}

func (p *capturePublisher) Publish(_ context.Context, learnerID string, examID uuid.UUID, result model.Result, answers []string) error {
	p.mu.Lock()
	p.calls++
	p.learnerID = learnerID
	p.examID = examID
	p.result = result
	p.answers = answers
	err := p.err
	p.mu.Unlock()
	p.done <- struct{}{}
	return err
}

func (p *capturePublisher) wait(t *testing.T) {
	t.Helper()
	select {
	case <-p.done:
	case <-time.After(time.Second):
		t.Fatal("publisher was not invoked")
	}
}

func (p *capturePublisher) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func newTestSession(t *testing.T, pub Publisher, opts ...Option) *Session {
	t.Helper()
	return New(testExam(t), "learner-1", pub, zerolog.Nop(), opts...)
}

func TestSessionLifecycle(t *testing.T) {
	pub := newCapturePublisher()
	s := newTestSession(t, pub)

	snap := s.Snapshot()
	assert.Equal(t, PhaseNotStarted, snap.Phase)
	assert.Equal(t, 3, snap.QuestionCount)

	require.NoError(t, s.Begin())
	snap = s.Snapshot()
	assert.Equal(t, PhaseInProgress, snap.Phase)
	assert.Equal(t, 1800, snap.RemainingSeconds)
	assert.Equal(t, "30:00", snap.RemainingClock)

	s.Answer("4")
	s.GoTo(2)
	s.Answer("Jakarta")

	result := s.Submit()
	require.NotNil(t, result)
	assert.Equal(t, 15, result.Score)
	assert.Equal(t, 20, result.TotalScore)
	assert.Equal(t, []bool{true, false, true}, result.PerQuestion)
	assert.True(t, result.IsPassed)

	snap = s.Snapshot()
	assert.Equal(t, PhaseSubmitted, snap.Phase)
	assert.Equal(t, SubmitReasonManual, snap.SubmitReason)

	pub.wait(t)
	assert.Equal(t, "learner-1", pub.learnerID)
	assert.Equal(t, []string{"4", "", "Jakarta"}, pub.answers)
}

func TestSessionBeginTwice(t *testing.T) {
	s := newTestSession(t, nil)

	require.NoError(t, s.Begin())
	assert.ErrorIs(t, s.Begin(), ErrAlreadyStarted)
}

func TestSessionAnswerBeforeBeginIsInert(t *testing.T) {
	s := newTestSession(t, nil)

	s.Answer("4")
	s.GoTo(1)

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.AnsweredCount)
	assert.Equal(t, 0, snap.CurrentIndex)
}

func TestSessionGoToOutOfRangeIsInert(t *testing.T) {
	s := newTestSession(t, nil)
	require.NoError(t, s.Begin())

	s.GoTo(99)
	assert.Equal(t, 0, s.Snapshot().CurrentIndex)

	s.GoTo(-1)
	assert.Equal(t, 0, s.Snapshot().CurrentIndex)

	s.GoTo(2)
	assert.Equal(t, 2, s.Snapshot().CurrentIndex)
}

func TestSessionAnswerAt(t *testing.T) {
	s := newTestSession(t, nil)
	require.NoError(t, s.Begin())

	s.AnswerAt(1, "true")
	assert.Equal(t, []string{"", "true", ""}, s.Answers())
	assert.Equal(t, 1, s.Snapshot().CurrentIndex)

	s.AnswerAt(99, "x")
	assert.Equal(t, []string{"", "true", ""}, s.Answers())
}

func TestSessionSubmitBeforeBegin(t *testing.T) {
	pub := newCapturePublisher()
	s := newTestSession(t, pub)

	assert.Nil(t, s.Submit())
	assert.Equal(t, PhaseNotStarted, s.Snapshot().Phase)
	assert.Equal(t, 0, pub.callCount())
}

func TestSessionSubmitIdempotent(t *testing.T) {
	pub := newCapturePublisher()
	s := newTestSession(t, pub)
	require.NoError(t, s.Begin())

	first := s.Submit()
	second := s.Submit()

	require.NotNil(t, first)
	assert.Same(t, first, second)

	pub.wait(t)
	assert.Equal(t, 1, pub.callCount())
}

func TestSessionLedgerFrozenAfterSubmit(t *testing.T) {
	s := newTestSession(t, nil)
	require.NoError(t, s.Begin())
	s.Answer("4")
	s.Submit()

	s.Answer("3")
	s.AnswerAt(1, "false")

	assert.Equal(t, []string{"4", "", ""}, s.Answers())
}

func TestSessionExpiryAutoSubmits(t *testing.T) {
	pub := newCapturePublisher()
	exam := testExam(t)
	exam.DurationMinutes = 1
	s := New(exam, "learner-1", pub, zerolog.Nop(), WithTickPeriod(100*time.Microsecond))
	require.NoError(t, s.Begin())
	s.Answer("4")

	pub.wait(t)

	snap := s.Snapshot()
	assert.Equal(t, PhaseSubmitted, snap.Phase)
	assert.Equal(t, SubmitReasonTimeout, snap.SubmitReason)
	assert.Equal(t, 0, snap.RemainingSeconds)
	assert.Equal(t, 1, pub.callCount())
	assert.Equal(t, []string{"4", "", ""}, pub.answers)
}

func TestSessionManualSubmitRacesExpiry(t *testing.T) {
	pub := newCapturePublisher()
	exam := testExam(t)
	exam.DurationMinutes = 1
	s := New(exam, "learner-1", pub, zerolog.Nop(), WithTickPeriod(100*time.Microsecond))
	require.NoError(t, s.Begin())

	// Hammer manual submits while the clock burns down; exactly one
	// producer may win.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Submit()
		}()
	}
	wg.Wait()

	pub.wait(t)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, pub.callCount())
	assert.Equal(t, PhaseSubmitted, s.Snapshot().Phase)
}

func TestSessionTimeSpent(t *testing.T) {
	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newTestSession(t, nil, WithNow(func() time.Time { return current }))

	require.NoError(t, s.Begin())
	current = current.Add(7 * time.Minute)

	result := s.Submit()
	require.NotNil(t, result)
	assert.Equal(t, 420, result.TimeSpentSeconds)
}

func TestSessionPublishFailureKeepsResult(t *testing.T) {
	pub := newCapturePublisher()
	pub.err = errors.New("store unreachable")
	s := newTestSession(t, pub)
	require.NoError(t, s.Begin())

	result := s.Submit()
	require.NotNil(t, result)
	pub.wait(t)

	// Local result survives a failed publish; no retry happens.
	got, ok := s.Result()
	assert.True(t, ok)
	assert.Equal(t, result, got)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, pub.callCount())
}

func TestSessionReset(t *testing.T) {
	pub := newCapturePublisher()
	s := newTestSession(t, pub)
	require.NoError(t, s.Begin())
	s.Answer("4")
	s.Submit()
	pub.wait(t)

	s.Reset()

	snap := s.Snapshot()
	assert.Equal(t, PhaseNotStarted, snap.Phase)
	assert.Equal(t, 0, snap.AnsweredCount)
	assert.Nil(t, snap.Result)
	_, ok := s.Result()
	assert.False(t, ok)

	// A fresh attempt runs cleanly after reset.
	require.NoError(t, s.Begin())
	s.Answer("3")
	result := s.Submit()
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Score)
}

func TestSessionTickUpdatesRemaining(t *testing.T) {
	s := newTestSession(t, nil)
	require.NoError(t, s.Begin())

	s.handleTick(1799)
	assert.Equal(t, 1799, s.Snapshot().RemainingSeconds)
	assert.Equal(t, "29:59", s.Snapshot().RemainingClock)
}
