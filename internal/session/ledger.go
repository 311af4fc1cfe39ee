package session

import "fmt"

// Ledger is the per-question answer store for one exam attempt. Slots are
// index-aligned with the exam's questions; the empty string is the
// unanswered sentinel. The Ledger itself is not goroutine-safe — the owning
// Session serializes all access under its lock.
type Ledger struct {
	answers []string
}

// NewLedger creates a ledger with one empty slot per question.
func NewLedger(questionCount int) *Ledger {
	return &Ledger{answers: make([]string, questionCount)}
}

// Len returns the number of slots.
func (l *Ledger) Len() int {
	return len(l.answers)
}

// Get returns the stored answer at index, or "" if unanswered.
// An out-of-range index is a programming error and panics.
func (l *Ledger) Get(index int) string {
	if index < 0 || index >= len(l.answers) {
		panic(fmt.Sprintf("ledger index %d out of range [0,%d)", index, len(l.answers)))
	}
	return l.answers[index]
}

// set stores an answer at index. Unexported: the Session guards it behind
// the in-progress phase check so a submitted ledger can never mutate.
func (l *Ledger) set(index int, value string) {
	if index < 0 || index >= len(l.answers) {
		panic(fmt.Sprintf("ledger index %d out of range [0,%d)", index, len(l.answers)))
	}
	l.answers[index] = value
}

// AnsweredCount returns how many slots hold a non-empty value.
func (l *Ledger) AnsweredCount() int {
	n := 0
	for _, a := range l.answers {
		if a != "" {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of all slots, safe to hand to the scorer or
// publisher after the session has moved on.
func (l *Ledger) Snapshot() []string {
	out := make([]string, len(l.answers))
	copy(out, l.answers)
	return out
}
