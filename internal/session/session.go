// Package session implements the timed exam session engine: one attempt at
// one exam, from NotStarted through InProgress to Submitted. The Session is
// the single owner of the attempt's mutable state (answer ledger, countdown,
// result); every transition is an atomic step under its lock.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bimbelhub/bimbel-backend/internal/model"
	"github.com/bimbelhub/bimbel-backend/internal/scoring"
)

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseNotStarted Phase = "NOT_STARTED"
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseSubmitted  Phase = "SUBMITTED"
)

// SubmitReason records which producer won the submit race.
type SubmitReason string

const (
	SubmitReasonManual  SubmitReason = "manual"
	SubmitReasonTimeout SubmitReason = "timeout"
)

// Session errors.
var (
	ErrAlreadyStarted  = errors.New("session already started")
	ErrExamUnavailable = errors.New("exam unavailable")
)

// publishTimeout bounds the fire-and-forget result publish call.
const publishTimeout = 15 * time.Second

// Publisher delivers a graded result to the result store. It is invoked at
// most once per session, asynchronously; a failure is logged and never
// surfaces to the learner.
type Publisher interface {
	Publish(ctx context.Context, learnerID string, examID uuid.UUID, result model.Result, answers []string) error
}

// Session is one learner's attempt at one exam.
type Session struct {
	exam      *model.ExamDefinition
	learnerID string
	publisher Publisher
	log       zerolog.Logger

	now        func() time.Time
	tickPeriod time.Duration

	mu           sync.Mutex
	phase        Phase
	startedAt    time.Time
	remaining    int
	current      int
	ledger       *Ledger
	clock        *Countdown
	result       *model.Result
	submitReason SubmitReason
}

// Option customizes a Session; used by tests to compress time.
type Option func(*Session)

// WithTickPeriod overrides the one-second countdown period.
func WithTickPeriod(d time.Duration) Option {
	return func(s *Session) { s.tickPeriod = d }
}

// WithNow overrides the wall-clock source.
func WithNow(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a NotStarted session for the given exam and learner.
func New(exam *model.ExamDefinition, learnerID string, publisher Publisher, log zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		exam:       exam,
		learnerID:  learnerID,
		publisher:  publisher,
		log:        log.With().Str("component", "session").Str("exam_id", exam.ID.String()).Str("learner_id", learnerID).Logger(),
		now:        time.Now,
		tickPeriod: time.Second,
		phase:      PhaseNotStarted,
		ledger:     NewLedger(len(exam.Questions)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exam returns the immutable definition this session runs against.
func (s *Session) Exam() *model.ExamDefinition {
	return s.exam
}

// LearnerID returns the owning learner's identifier.
func (s *Session) LearnerID() string {
	return s.learnerID
}

// Begin moves NotStarted → InProgress: records the start time, seeds the
// countdown from the exam duration, resets the ledger and starts the clock.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseNotStarted {
		return ErrAlreadyStarted
	}

	s.phase = PhaseInProgress
	s.startedAt = s.now()
	s.remaining = s.exam.DurationSeconds()
	s.current = 0
	s.ledger = NewLedger(len(s.exam.Questions))
	s.clock = newCountdown(s.remaining, s.tickPeriod, s.handleTick, s.handleExpiry)
	s.clock.Start()

	s.log.Info().Int("duration_seconds", s.remaining).Msg("Session started")
	return nil
}

// GoTo moves the current question pointer. Out-of-range indexes and calls
// outside InProgress are inert: stale navigation clicks must not crash or
// corrupt a session.
func (s *Session) GoTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return
	}
	if index < 0 || index >= s.ledger.Len() {
		return
	}
	s.current = index
}

// Answer stores a value for the current question. A no-op unless the
// session is InProgress — the ledger can never mutate after submission.
func (s *Session) Answer(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return
	}
	s.ledger.set(s.current, value)
}

// AnswerAt stores a value for an explicit question index, combining
// navigation and answering in one step. Inert outside InProgress or for an
// out-of-range index.
func (s *Session) AnswerAt(index int, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return
	}
	if index < 0 || index >= s.ledger.Len() {
		return
	}
	s.current = index
	s.ledger.set(index, value)
}

// Submit finishes the attempt. The first call — whether a learner click or
// the countdown expiry — wins: it stops the clock, grades the ledger
// snapshot, stores the result and hands it to the publisher exactly once.
// Every later call is a no-op that returns the same result, so a duplicate
// click racing the expiry callback is harmless by construction.
func (s *Session) Submit() *model.Result {
	return s.submit(SubmitReasonManual)
}

func (s *Session) submit(reason SubmitReason) *model.Result {
	s.mu.Lock()
	if s.phase != PhaseInProgress {
		// Duplicate submit (or submit before begin): inert.
		result := s.result
		s.mu.Unlock()
		return result
	}

	// One-shot latch: the transition and the decision to publish happen in
	// the same locked step.
	s.phase = PhaseSubmitted
	s.submitReason = reason
	if s.clock != nil {
		s.clock.Stop()
	}

	answers := s.ledger.Snapshot()
	elapsed := int(s.now().Sub(s.startedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	result := scoring.Score(s.exam, answers)
	result.TimeSpentSeconds = elapsed
	s.result = &result

	publisher := s.publisher
	s.mu.Unlock()

	s.log.Info().
		Str("reason", string(reason)).
		Int("score", result.Score).
		Int("total_score", result.TotalScore).
		Int("time_spent_seconds", result.TimeSpentSeconds).
		Msg("Session submitted")

	if publisher != nil {
		// Fire-and-forget: the learner sees the locally computed result
		// regardless of whether the store accepts it.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			if err := publisher.Publish(ctx, s.learnerID, s.exam.ID, result, answers); err != nil {
				s.log.Error().Err(err).Msg("Result publish failed")
			}
		}()
	}

	return &result
}

// handleTick runs once per countdown period while InProgress.
func (s *Session) handleTick(remaining int) {
	s.mu.Lock()
	if s.phase == PhaseInProgress {
		s.remaining = remaining
	}
	s.mu.Unlock()
}

// handleExpiry is the countdown's expiry callback: the automatic producer
// of the submit transition.
func (s *Session) handleExpiry() {
	s.submit(SubmitReasonTimeout)
}

// Reset discards all transient state and returns to NotStarted. This is the
// only path out of Submitted; it also stops a live clock so a dangling timer
// can never fire against the recycled session.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clock != nil {
		s.clock.Stop()
		s.clock = nil
	}
	s.phase = PhaseNotStarted
	s.startedAt = time.Time{}
	s.remaining = 0
	s.current = 0
	s.ledger = NewLedger(len(s.exam.Questions))
	s.result = nil
	s.submitReason = ""

	s.log.Info().Msg("Session reset")
}

// Result returns the graded result once the session is Submitted.
func (s *Session) Result() (*model.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, false
	}
	return s.result, true
}

// Snapshot is a consistent point-in-time view of the session for rendering.
type Snapshot struct {
	ExamID           uuid.UUID     `json:"exam_id"`
	LearnerID        string        `json:"learner_id"`
	Phase            Phase         `json:"phase"`
	CurrentIndex     int           `json:"current_index"`
	RemainingSeconds int           `json:"remaining_seconds"`
	RemainingClock   string        `json:"remaining_clock"`
	AnsweredCount    int           `json:"answered_count"`
	QuestionCount    int           `json:"question_count"`
	StartedAtMs      int64         `json:"started_at_ms,omitempty"`
	SubmitReason     SubmitReason  `json:"submit_reason,omitempty"`
	Result           *model.Result `json:"result,omitempty"`
}

// Snapshot captures the current session state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ExamID:           s.exam.ID,
		LearnerID:        s.learnerID,
		Phase:            s.phase,
		CurrentIndex:     s.current,
		RemainingSeconds: s.remaining,
		RemainingClock:   FormatClock(s.remaining),
		AnsweredCount:    s.ledger.AnsweredCount(),
		QuestionCount:    s.ledger.Len(),
		SubmitReason:     s.submitReason,
		Result:           s.result,
	}
	if !s.startedAt.IsZero() {
		snap.StartedAtMs = s.startedAt.UnixMilli()
	}
	return snap
}

// Answers returns a copy of the ledger slots.
func (s *Session) Answers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot()
}
