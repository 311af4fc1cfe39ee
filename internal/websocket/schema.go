package websocket

import (
	"github.com/bimbelhub/bimbel-backend/internal/model"
	"github.com/bimbelhub/bimbel-backend/internal/session"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionGoTo   Action = "goto"
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload carries every client action; unused fields stay zero.
type RequestPayload struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
	Answer string `json:"ans"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTimeSync Event = "time_sync"
	EventSaved    Event = "saved"
	EventGraded   Event = "graded"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// TimeSyncResponse is pushed every second while the session runs. The
// server clock is authoritative; the client only renders it.
type TimeSyncResponse struct {
	Event            Event         `json:"event"`
	Phase            session.Phase `json:"phase"`
	RemainingSeconds int           `json:"remaining_seconds"`
	RemainingClock   string        `json:"remaining_clock"`
	AnsweredCount    int           `json:"answered_count"`
}

type SavedResponse struct {
	Event Event `json:"event"`
	Index int   `json:"index"`
}

type GradedResponse struct {
	Event  Event                `json:"event"`
	Reason session.SubmitReason `json:"reason"`
	Result model.Result         `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
