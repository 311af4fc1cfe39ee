package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bimbelhub/bimbel-backend/internal/response"
	"github.com/bimbelhub/bimbel-backend/internal/service"
	"github.com/bimbelhub/bimbel-backend/internal/session"
)

const (
	monitorRefreshInterval   = 2 * time.Second
	monitorKeepAliveInterval = 30 * time.Second
)

// MonitorHandler streams live session snapshots for one exam to admins.
type MonitorHandler struct {
	examService *service.ExamService
	sessions    *session.Manager
	log         zerolog.Logger
}

func NewMonitorHandler(examService *service.ExamService, sessions *session.Manager, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		examService: examService,
		sessions:    sessions,
		log:         log.With().Str("component", "monitor_handler").Logger(),
	}
}

// monitorFrame is one SSE data payload.
type monitorFrame struct {
	Type      string             `json:"type"`
	ExamID    uuid.UUID          `json:"exam_id,omitempty"`
	Sessions  []session.Snapshot `json:"sessions,omitempty"`
	Timestamp string             `json:"timestamp,omitempty"`
}

// MonitorExamSSE godoc
// GET /api/v1/admin/exams/:exam_id/monitor
// Server-sent events stream of every live session for one exam.
func (h *MonitorHandler) MonitorExamSSE(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, err := h.examService.GetByID(c.Request.Context(), examID); err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Info().Str("exam_id", examID.String()).Msg("Admin attached to live monitor SSE")

	refreshTicker := time.NewTicker(monitorRefreshInterval)
	defer refreshTicker.Stop()

	keepAliveTicker := time.NewTicker(monitorKeepAliveInterval)
	defer keepAliveTicker.Stop()

	pingPayload, _ := json.Marshal(monitorFrame{Type: "ping"})

	h.sendSnapshots(c, examID)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Debug().Str("exam_id", examID.String()).Msg("Monitor SSE detached")
			return

		case <-refreshTicker.C:
			if !h.sendSnapshots(c, examID) {
				return
			}

		case <-keepAliveTicker.C:
			c.SSEvent("message", string(pingPayload))
			c.Writer.Flush()
		}
	}
}

func (h *MonitorHandler) sendSnapshots(c *gin.Context, examID uuid.UUID) bool {
	frame := monitorFrame{
		Type:      "snapshot",
		ExamID:    examID,
		Sessions:  h.sessions.SnapshotsByExam(examID),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		h.log.Error().Err(err).Msg("Encode monitor frame failed")
		return false
	}

	c.SSEvent("message", string(payload))
	c.Writer.Flush()
	return true
}
