package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srisai/college-api/internal/service"
	appErrors "github.com/srisai/college-api/pkg/errors"
	"github.com/srisai/college-api/pkg/response"
)

// ResultHandler wires result services to HTTP routes.
type ResultHandler struct {
	results  *service.ResultService
	teachers *service.TeacherService
}

// NewResultHandler constructs a new ResultHandler.
func NewResultHandler(results *service.ResultService, teachers *service.TeacherService) *ResultHandler {
	return &ResultHandler{results: results, teachers: teachers}
}

// Roster godoc
// @Summary Result entry roster for an exam
// @Tags Results
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/results/roster [get]
func (h *ResultHandler) Roster(c *gin.Context) {
	teacherID, err := actorTeacherID(c.Request.Context(), h.teachers, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	roster, err := h.results.Roster(c.Request.Context(), c.Param("id"), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Submit godoc
// @Summary Submit a batch of results for an exam
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body service.SubmitResultsRequest true "Results payload"
// @Success 204
// @Router /exams/{id}/results [post]
func (h *ResultHandler) Submit(c *gin.Context) {
	var req service.SubmitResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid results payload"))
		return
	}

	teacherID, err := actorTeacherID(c.Request.Context(), h.teachers, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.results.Submit(c.Request.Context(), c.Param("id"), teacherID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByExam godoc
// @Summary Results entered for an exam
// @Tags Results
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/results [get]
func (h *ResultHandler) ListByExam(c *gin.Context) {
	teacherID, err := actorTeacherID(c.Request.Context(), h.teachers, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.results.ListByExam(c.Request.Context(), c.Param("id"), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
