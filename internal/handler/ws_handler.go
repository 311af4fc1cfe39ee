package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/bimbelhub/bimbel-backend/internal/middleware"
	"github.com/bimbelhub/bimbel-backend/internal/response"
	"github.com/bimbelhub/bimbel-backend/internal/session"
	ws "github.com/bimbelhub/bimbel-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live tryout session over WebSocket: the server pushes
// the authoritative clock every second, the client sends navigation, answer
// and submit actions.
type WSHandler struct {
	sessions *session.Manager
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *session.Manager, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/learner/exams/:exam_id/stream
// Upgrades to WebSocket for real-time clock sync and in-exam actions.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	s, err := h.sessions.Open(c.Request.Context(), claims.LearnerID, examID)
	if err != nil {
		if errors.Is(err, session.ErrExamUnavailable) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotAvailable)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewSafeConn(rawConn)
	defer conn.Close()

	wsLog := h.log.With().
		Str("learner_id", claims.LearnerID).
		Str("exam_id", examID.String()).
		Logger()

	wsLog.Info().Msg("Learner connected")

	done := make(chan struct{})
	defer close(done)
	go h.pushTimeSync(conn, s, done)

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionGoTo:
			s.GoTo(msg.Index)
			conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, Index: s.Snapshot().CurrentIndex})
		case ws.ActionAnswer:
			h.handleAnswer(conn, s, &msg)
		case ws.ActionSubmit:
			h.handleSubmit(conn, wsLog, s)
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// pushTimeSync streams the server clock once per second until the
// connection closes. When the countdown expires mid-stream, the phase flip
// shows up here and the graded event follows.
func (h *WSHandler) pushTimeSync(conn *ws.SafeConn, s *session.Session, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	gradedSent := false
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			snap := s.Snapshot()
			if err := conn.WriteTyped(ws.TimeSyncResponse{
				Event:            ws.EventTimeSync,
				Phase:            snap.Phase,
				RemainingSeconds: snap.RemainingSeconds,
				RemainingClock:   snap.RemainingClock,
				AnsweredCount:    snap.AnsweredCount,
			}); err != nil {
				return
			}

			if snap.Phase == session.PhaseSubmitted && !gradedSent && snap.Result != nil {
				gradedSent = true
				conn.WriteTyped(ws.GradedResponse{
					Event:  ws.EventGraded,
					Reason: snap.SubmitReason,
					Result: *snap.Result,
				})
			}
		}
	}
}

func (h *WSHandler) handleAnswer(conn *ws.SafeConn, s *session.Session, msg *ws.RequestPayload) {
	snap := s.Snapshot()
	if snap.Phase != session.PhaseInProgress {
		conn.WriteError("session is not in progress")
		return
	}

	s.AnswerAt(msg.Index, msg.Answer)
	conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, Index: msg.Index})
}

func (h *WSHandler) handleSubmit(conn *ws.SafeConn, wsLog zerolog.Logger, s *session.Session) {
	result := s.Submit()
	if result == nil {
		conn.WriteError("session has not started")
		return
	}

	wsLog.Info().
		Int("score", result.Score).
		Int("total", result.TotalScore).
		Msg("Tryout submitted over WebSocket")

	conn.WriteTyped(ws.GradedResponse{
		Event:  ws.EventGraded,
		Reason: s.Snapshot().SubmitReason,
		Result: *result,
	})
}
