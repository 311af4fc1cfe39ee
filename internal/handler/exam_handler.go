package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bimbelhub/bimbel-backend/internal/model"
	"github.com/bimbelhub/bimbel-backend/internal/repository"
	"github.com/bimbelhub/bimbel-backend/internal/response"
	"github.com/bimbelhub/bimbel-backend/internal/service"
	"github.com/bimbelhub/bimbel-backend/internal/validator"
)

// ExamHandler handles admin tryout catalog endpoints.
type ExamHandler struct {
	examService *service.ExamService
	resultRepo  *repository.ResultRepository
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, resultRepo *repository.ResultRepository) *ExamHandler {
	return &ExamHandler{
		examService: examService,
		resultRepo:  resultRepo,
	}
}

// List godoc
// GET /api/v1/admin/exams?page=&per_page=
func (h *ExamHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	exams, pagination, err := h.examService.List(c.Request.Context(), false, page, perPage)
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

// Get godoc
// GET /api/v1/admin/exams/:exam_id
// Returns the full definition including correct answers.
func (h *ExamHandler) Get(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, exam)
}

// Create godoc
// POST /api/v1/admin/exams
func (h *ExamHandler) Create(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, fields := buildQuestions(req.Questions)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam := &model.ExamDefinition{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		PassingScore:    req.PassingScore,
		Questions:       questions,
	}

	if err := h.examService.Create(c.Request.Context(), exam); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"detail": err.Error()})
		return
	}

	response.Success(c, http.StatusCreated, exam)
}

// Update godoc
// PUT /api/v1/admin/exams/:exam_id
// Replaces the definition of an inactive exam. Omitted fields keep their
// stored value.
func (h *ExamHandler) Update(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.Description != "" {
		exam.Description = req.Description
	}
	if req.DurationMinutes > 0 {
		exam.DurationMinutes = req.DurationMinutes
	}
	if req.PassingScore != nil {
		exam.PassingScore = req.PassingScore
	}
	if len(req.Questions) > 0 {
		questions, fields := buildQuestions(req.Questions)
		if fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
		exam.Questions = questions
	}

	if err := h.examService.Update(c.Request.Context(), exam); err != nil {
		if errors.Is(err, service.ErrExamActive) {
			response.Fail(c, http.StatusConflict, response.ErrExamActive)
			return
		}
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"detail": err.Error()})
		return
	}

	response.Success(c, http.StatusOK, exam)
}

// Activate godoc
// POST /api/v1/admin/exams/:exam_id/activate
func (h *ExamHandler) Activate(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Activate(c.Request.Context(), examID); err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNoQuestions):
			response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"active": true})
}

// Deactivate godoc
// POST /api/v1/admin/exams/:exam_id/deactivate
func (h *ExamHandler) Deactivate(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Deactivate(c.Request.Context(), examID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"active": false})
}

// Delete godoc
// DELETE /api/v1/admin/exams/:exam_id
func (h *ExamHandler) Delete(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Delete(c.Request.Context(), examID); err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrExamActive):
			response.Fail(c, http.StatusConflict, response.ErrExamActive)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Results godoc
// GET /api/v1/admin/exams/:exam_id/results?page=&per_page=
// Lists persisted results for one exam, newest first.
func (h *ExamHandler) Results(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
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

	results, total, err := h.resultRepo.ListByExam(c.Request.Context(), examID, perPage, (page-1)*perPage)
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

// buildQuestions converts payloads into validated question variants.
func buildQuestions(payloads []model.QuestionPayload) (model.QuestionList, map[string]string) {
	questions := make(model.QuestionList, len(payloads))
	for i, p := range payloads {
		q, err := p.ToQuestion()
		if err != nil {
			return nil, map[string]string{
				"questions[" + strconv.Itoa(i) + "]": err.Error(),
			}
		}
		questions[i] = q
	}
	return questions, nil
}
