package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bimbelhub/bimbel-backend/internal/middleware"
	"github.com/bimbelhub/bimbel-backend/internal/model"
	"github.com/bimbelhub/bimbel-backend/internal/repository"
	"github.com/bimbelhub/bimbel-backend/internal/response"
	"github.com/bimbelhub/bimbel-backend/internal/service"
	"github.com/bimbelhub/bimbel-backend/internal/session"
	"github.com/bimbelhub/bimbel-backend/internal/validator"
)

// LearnerPortalHandler handles the learner-facing tryout endpoints.
type LearnerPortalHandler struct {
	examService *service.ExamService
	sessions    *session.Manager
	resultRepo  *repository.ResultRepository
}

// NewLearnerPortalHandler creates a new LearnerPortalHandler.
func NewLearnerPortalHandler(
	examService *service.ExamService,
	sessions *session.Manager,
	resultRepo *repository.ResultRepository,
) *LearnerPortalHandler {
	return &LearnerPortalHandler{
		examService: examService,
		sessions:    sessions,
		resultRepo:  resultRepo,
	}
}

// goToRequest moves the current question pointer.
type goToRequest struct {
	Index int `json:"index" binding:"min=0"`
}

// answerRequest stores an answer. Index is optional; omitted means the
// session's current question.
type answerRequest struct {
	Index  *int   `json:"index" binding:"omitempty,min=0"`
	Answer string `json:"ans"`
}

// Catalog godoc
// GET /api/v1/learner/exams?page=&per_page=
// Lists active tryouts as summaries, never exposing questions.
func (h *LearnerPortalHandler) Catalog(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	exams, pagination, err := h.examService.List(c.Request.Context(), true, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	summaries := make([]model.ExamSummary, len(exams))
	for i := range exams {
		summaries[i] = exams[i].Summary()
	}
	response.SuccessWithPagination(c, http.StatusOK, summaries, pagination)
}

// Open godoc
// POST /api/v1/learner/exams/:exam_id/session
// Opens (or reattaches to) the learner's session for this tryout.
func (h *LearnerPortalHandler) Open(c *gin.Context) {
	s, ok := h.openSession(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, s.Snapshot())
}

// Paper godoc
// GET /api/v1/learner/exams/:exam_id/paper
// Returns the question paper with correct answers withheld.
func (h *LearnerPortalHandler) Paper(c *gin.Context) {
	s, ok := h.openSession(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, s.Exam().Paper())
}

// Begin godoc
// POST /api/v1/learner/exams/:exam_id/session/begin
// Starts the countdown. Rejected when the attempt already started.
func (h *LearnerPortalHandler) Begin(c *gin.Context) {
	s, ok := h.openSession(c)
	if !ok {
		return
	}

	if err := s.Begin(); err != nil {
		response.Fail(c, http.StatusConflict, response.ErrSessionAlreadyStarted)
		return
	}

	response.Success(c, http.StatusOK, s.Snapshot())
}

// State godoc
// GET /api/v1/learner/exams/:exam_id/session
// Returns the current session snapshot, clock included.
func (h *LearnerPortalHandler) State(c *gin.Context) {
	s, ok := h.existingSession(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, s.Snapshot())
}

// GoTo godoc
// POST /api/v1/learner/exams/:exam_id/session/goto
// Moves the current question pointer. Stale or out-of-range indexes are
// silently ignored; the snapshot tells the client where it ended up.
func (h *LearnerPortalHandler) GoTo(c *gin.Context) {
	s, ok := h.existingSession(c)
	if !ok {
		return
	}

	var req goToRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	s.GoTo(req.Index)
	response.Success(c, http.StatusOK, s.Snapshot())
}

// Answer godoc
// POST /api/v1/learner/exams/:exam_id/session/answers
// Stores an answer for the current (or an explicit) question. The empty
// string clears a previous answer.
func (h *LearnerPortalHandler) Answer(c *gin.Context) {
	s, ok := h.existingSession(c)
	if !ok {
		return
	}

	var req answerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap := s.Snapshot()
	switch snap.Phase {
	case session.PhaseNotStarted:
		response.Fail(c, http.StatusConflict, response.ErrSessionNotStarted)
		return
	case session.PhaseSubmitted:
		response.Fail(c, http.StatusConflict, response.ErrSessionAlreadySubmitted)
		return
	}

	if req.Index != nil {
		s.AnswerAt(*req.Index, req.Answer)
	} else {
		s.Answer(req.Answer)
	}

	response.Success(c, http.StatusOK, s.Snapshot())
}

// Submit godoc
// POST /api/v1/learner/exams/:exam_id/session/submit
// Finishes the attempt and returns the graded result. Safe to call twice;
// the second call returns the same result.
func (h *LearnerPortalHandler) Submit(c *gin.Context) {
	s, ok := h.existingSession(c)
	if !ok {
		return
	}

	result := s.Submit()
	if result == nil {
		response.Fail(c, http.StatusConflict, response.ErrSessionNotStarted)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Reset godoc
// POST /api/v1/learner/exams/:exam_id/session/reset
// Discards the attempt and returns to the not-started state.
func (h *LearnerPortalHandler) Reset(c *gin.Context) {
	s, ok := h.existingSession(c)
	if !ok {
		return
	}

	s.Reset()
	response.Success(c, http.StatusOK, s.Snapshot())
}

// Result godoc
// GET /api/v1/learner/exams/:exam_id/session/result
// Returns the graded result with the per-question review.
func (h *LearnerPortalHandler) Result(c *gin.Context) {
	s, ok := h.existingSession(c)
	if !ok {
		return
	}

	result, graded := s.Result()
	if !graded {
		response.Fail(c, http.StatusConflict, response.ErrResultNotReady)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"result": result,
		"review": buildReview(s.Exam(), s.Answers(), result),
	})
}

// History godoc
// GET /api/v1/learner/results?page=&per_page=
// Lists the learner's persisted results, newest first.
func (h *LearnerPortalHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	results, total, err := h.resultRepo.ListByLearner(c.Request.Context(), claims.LearnerID, perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, results, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func (h *LearnerPortalHandler) openSession(c *gin.Context) (*session.Session, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	s, err := h.sessions.Open(c.Request.Context(), claims.LearnerID, examID)
	if err != nil {
		if errors.Is(err, session.ErrExamUnavailable) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotAvailable)
			return nil, false
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return nil, false
	}
	return s, true
}

func (h *LearnerPortalHandler) existingSession(c *gin.Context) (*session.Session, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	s, ok := h.sessions.Get(claims.LearnerID, examID)
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return nil, false
	}
	return s, true
}

// buildReview pairs every question with the learner's answer and verdict.
func buildReview(exam *model.ExamDefinition, answers []string, result *model.Result) []model.ReviewQuestion {
	paper := exam.Paper()
	review := make([]model.ReviewQuestion, len(paper.Questions))
	for i, pq := range paper.Questions {
		rq := model.ReviewQuestion{
			PaperQuestion: pq,
			Explanation:   exam.Questions[i].Explanation(),
		}
		if i < len(answers) {
			rq.GivenAnswer = answers[i]
		}
		if i < len(result.PerQuestion) {
			rq.Correct = result.PerQuestion[i]
		}
		switch q := exam.Questions[i].(type) {
		case model.MultipleChoice:
			rq.CorrectAnswer = q.Correct
		case model.TrueFalse:
			rq.CorrectAnswer = q.Correct
		case model.ShortAnswer:
			rq.CorrectAnswer = q.Correct
		}
		review[i] = rq
	}
	return review
}
