package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerStartsEmpty(t *testing.T) {
	l := NewLedger(3)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 0, l.AnsweredCount())
	for i := 0; i < 3; i++ {
		assert.Equal(t, "", l.Get(i))
	}
}

func TestLedgerSetAndOverwrite(t *testing.T) {
	l := NewLedger(2)

	l.set(0, "B")
	assert.Equal(t, "B", l.Get(0))
	assert.Equal(t, 1, l.AnsweredCount())

	l.set(0, "C")
	assert.Equal(t, "C", l.Get(0))
	assert.Equal(t, 1, l.AnsweredCount())

	// Clearing back to the empty sentinel counts as unanswered again.
	l.set(0, "")
	assert.Equal(t, 0, l.AnsweredCount())
}

func TestLedgerOutOfRangePanics(t *testing.T) {
	l := NewLedger(2)

	assert.Panics(t, func() { l.Get(2) })
	assert.Panics(t, func() { l.Get(-1) })
	assert.Panics(t, func() { l.set(5, "x") })
}

func TestLedgerSnapshotIsCopy(t *testing.T) {
	l := NewLedger(2)
	l.set(0, "A")

	snap := l.Snapshot()
	assert.Equal(t, []string{"A", ""}, snap)

	snap[1] = "B"
	assert.Equal(t, "", l.Get(1))
}
