package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bimbelhub/bimbel-backend/internal/model"
)

// DefinitionLoader resolves an exam definition by id. Implemented by the
// exam service (Redis cache with Postgres fallback); loaders must return
// ErrExamUnavailable for unknown or inactive exams.
type DefinitionLoader interface {
	Load(ctx context.Context, examID uuid.UUID) (*model.ExamDefinition, error)
}

type sessionKey struct {
	learnerID string
	examID    uuid.UUID
}

// Manager owns all live sessions in this process, keyed by (learner, exam).
// Sessions are in-memory: a learner who reconnects reattaches to the same
// Session, a process restart discards in-flight attempts.
type Manager struct {
	loader    DefinitionLoader
	publisher Publisher
	log       zerolog.Logger
	opts      []Option

	mu       sync.RWMutex
	sessions map[sessionKey]*Session
}

// NewManager creates an empty session manager. The opts are applied to every
// session it opens.
func NewManager(loader DefinitionLoader, publisher Publisher, log zerolog.Logger, opts ...Option) *Manager {
	return &Manager{
		loader:    loader,
		publisher: publisher,
		log:       log.With().Str("component", "session_manager").Logger(),
		opts:      opts,
		sessions:  make(map[sessionKey]*Session),
	}
}

// Open returns the learner's session for the exam, creating a NotStarted one
// on first access. Idempotent: concurrent opens for the same key converge on
// a single Session.
func (m *Manager) Open(ctx context.Context, learnerID string, examID uuid.UUID) (*Session, error) {
	key := sessionKey{learnerID: learnerID, examID: examID}

	m.mu.RLock()
	if s, ok := m.sessions[key]; ok {
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	// Load outside the lock; definition fetches may hit Postgres.
	def, err := m.loader.Load(ctx, examID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		// Lost the race to another open; use the winner's session.
		return s, nil
	}
	s := New(def, learnerID, m.publisher, m.log, m.opts...)
	m.sessions[key] = s
	m.log.Info().Str("learner_id", learnerID).Str("exam_id", examID.String()).Msg("Session opened")
	return s, nil
}

// Get returns the session if one exists, without creating it.
func (m *Manager) Get(learnerID string, examID uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionKey{learnerID: learnerID, examID: examID}]
	return s, ok
}

// Close removes the session and stops its clock. Used when a learner
// abandons an attempt or an admin evicts one.
func (m *Manager) Close(learnerID string, examID uuid.UUID) {
	key := sessionKey{learnerID: learnerID, examID: examID}

	m.mu.Lock()
	s, ok := m.sessions[key]
	if ok {
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	if ok {
		s.Reset()
		m.log.Info().Str("learner_id", learnerID).Str("exam_id", examID.String()).Msg("Session closed")
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SnapshotsByExam returns snapshots of every live session for one exam,
// for the admin monitor stream.
func (m *Manager) SnapshotsByExam(examID uuid.UUID) []Snapshot {
	m.mu.RLock()
	sessions := make([]*Session, 0)
	for key, s := range m.sessions {
		if key.examID == examID {
			sessions = append(sessions, s)
		}
	}
	m.mu.RUnlock()

	snaps := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		snaps = append(snaps, s.Snapshot())
	}
	return snaps
}

// Shutdown stops every live clock. Submitted results already computed stay
// with their sessions; in-progress attempts are abandoned.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[sessionKey]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.mu.Lock()
		if s.clock != nil {
			s.clock.Stop()
		}
		s.mu.Unlock()
	}
	m.log.Info().Int("count", len(sessions)).Msg("Session manager shut down")
}
