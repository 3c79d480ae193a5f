package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/srisai/college-api/internal/service"
	appErrors "github.com/srisai/college-api/pkg/errors"
	"github.com/srisai/college-api/pkg/response"
)

// AttendanceHandler wires attendance services to HTTP routes.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	teachers   *service.TeacherService
}

// NewAttendanceHandler constructs a new AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, teachers *service.TeacherService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, teachers: teachers}
}

// Roster godoc
// @Summary Attendance marking roster for a subject and date
// @Tags Attendance
// @Produce json
// @Param id path string true "Subject ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id}/attendance/roster [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}

	teacherID, err := actorTeacherID(c.Request.Context(), h.teachers, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	roster, err := h.attendance.Roster(c.Request.Context(), c.Param("id"), teacherID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Mark godoc
// @Summary Submit one day's attendance for a subject
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 204
// @Router /subjects/{id}/attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	teacherID, err := actorTeacherID(c.Request.Context(), h.teachers, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.attendance.Mark(c.Request.Context(), c.Param("id"), teacherID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
