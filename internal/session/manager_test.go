package session

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimbelhub/bimbel-backend/internal/model"
)

type stubLoader struct {
	mu    sync.Mutex
	exams map[uuid.UUID]*model.ExamDefinition
	loads int
}

func (l *stubLoader) Load(_ context.Context, examID uuid.UUID) (*model.ExamDefinition, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	def, ok := l.exams[examID]
	if !ok {
		return nil, ErrExamUnavailable
	}
	return def, nil
}

func newTestManager(t *testing.T, exams ...*model.ExamDefinition) (*Manager, *stubLoader) {
	t.Helper()
	loader := &stubLoader{exams: make(map[uuid.UUID]*model.ExamDefinition)}
	for _, def := range exams {
		loader.exams[def.ID] = def
	}
	return NewManager(loader, nil, zerolog.Nop()), loader
}

func TestManagerOpenCreatesOnce(t *testing.T) {
	exam := testExam(t)
	m, loader := newTestManager(t, exam)

	s1, err := m.Open(context.Background(), "learner-1", exam.ID)
	require.NoError(t, err)
	s2, err := m.Open(context.Background(), "learner-1", exam.ID)
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 1, loader.loads)
}

func TestManagerOpenUnknownExam(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Open(context.Background(), "learner-1", uuid.New())
	assert.ErrorIs(t, err, ErrExamUnavailable)
	assert.Equal(t, 0, m.Count())
}

func TestManagerSessionsAreIsolated(t *testing.T) {
	exam := testExam(t)
	m, _ := newTestManager(t, exam)

	s1, err := m.Open(context.Background(), "learner-1", exam.ID)
	require.NoError(t, err)
	s2, err := m.Open(context.Background(), "learner-2", exam.ID)
	require.NoError(t, err)

	require.NoError(t, s1.Begin())
	s1.Answer("4")

	assert.NotSame(t, s1, s2)
	assert.Equal(t, PhaseNotStarted, s2.Snapshot().Phase)
	assert.Equal(t, 2, m.Count())
}

func TestManagerConcurrentOpenConverges(t *testing.T) {
	exam := testExam(t)
	m, _ := newTestManager(t, exam)

	var wg sync.WaitGroup
	sessions := make([]*Session, 16)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Open(context.Background(), "learner-1", exam.ID)
			assert.NoError(t, err)
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range sessions[1:] {
		assert.Same(t, sessions[0], s)
	}
	assert.Equal(t, 1, m.Count())
}

func TestManagerGetAndClose(t *testing.T) {
	exam := testExam(t)
	m, _ := newTestManager(t, exam)

	_, ok := m.Get("learner-1", exam.ID)
	assert.False(t, ok)

	s, err := m.Open(context.Background(), "learner-1", exam.ID)
	require.NoError(t, err)
	require.NoError(t, s.Begin())

	got, ok := m.Get("learner-1", exam.ID)
	assert.True(t, ok)
	assert.Same(t, s, got)

	m.Close("learner-1", exam.ID)
	_, ok = m.Get("learner-1", exam.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count())
}

func TestManagerSnapshotsByExam(t *testing.T) {
	exam := testExam(t)
	other := testExam(t)
	m, _ := newTestManager(t, exam, other)

	s1, err := m.Open(context.Background(), "learner-1", exam.ID)
	require.NoError(t, err)
	require.NoError(t, s1.Begin())
	_, err = m.Open(context.Background(), "learner-2", exam.ID)
	require.NoError(t, err)
	_, err = m.Open(context.Background(), "learner-3", other.ID)
	require.NoError(t, err)

	snaps := m.SnapshotsByExam(exam.ID)
	assert.Len(t, snaps, 2)
	for _, snap := range snaps {
		assert.Equal(t, exam.ID, snap.ExamID)
	}
}

func TestManagerShutdown(t *testing.T) {
	exam := testExam(t)
	m, _ := newTestManager(t, exam)

	s, err := m.Open(context.Background(), "learner-1", exam.ID)
	require.NoError(t, err)
	require.NoError(t, s.Begin())

	m.Shutdown()
	assert.Equal(t, 0, m.Count())
}
