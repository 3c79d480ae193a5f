package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/srisai/college-api/internal/models"
	"github.com/srisai/college-api/internal/service"
	appErrors "github.com/srisai/college-api/pkg/errors"
	"github.com/srisai/college-api/pkg/response"
)

// StudentHandler wires student services to HTTP routes, including the
// student self-service views.
type StudentHandler struct {
	students   *service.StudentService
	subjects   *service.SubjectService
	attendance *service.AttendanceService
	results    *service.ResultService
}

// NewStudentHandler constructs a new StudentHandler.
func NewStudentHandler(students *service.StudentService, subjects *service.SubjectService, attendance *service.AttendanceService, results *service.ResultService) *StudentHandler {
	return &StudentHandler{students: students, subjects: subjects, attendance: attendance, results: results}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name/email/code"
// @Param course_id query string false "Filter by course"
// @Param semester query int false "Filter by semester"
// @Param active query bool false "Filter by active status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (full_name,student_code,admission_date)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		CourseID:  strings.TrimSpace(c.Query("course_id")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
		Active:    parseBoolQuery(c.Query("active")),
	}
	if semester, err := strconv.Atoi(c.Query("semester")); err == nil {
		filter.Semester = semester
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Register student with login account and auto-enrollment
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Deactivate student
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Attendance godoc
// @Summary Attendance summary and per-subject breakdown for a student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *StudentHandler) Attendance(c *gin.Context) {
	summary, breakdown, err := h.attendance.StudentAttendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"summary": summary, "subjects": breakdown}, nil)
}

// Results godoc
// @Summary Result history for a student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/results [get]
func (h *StudentHandler) Results(c *gin.Context) {
	results, err := h.results.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// MySubjects godoc
// @Summary Enrolled subjects for the signed-in student
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/subjects [get]
func (h *StudentHandler) MySubjects(c *gin.Context) {
	student, ok := h.selfStudent(c)
	if !ok {
		return
	}
	subjects, err := h.subjects.ListByStudent(c.Request.Context(), student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// MyAttendance godoc
// @Summary Attendance breakdown for the signed-in student
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/attendance [get]
func (h *StudentHandler) MyAttendance(c *gin.Context) {
	student, ok := h.selfStudent(c)
	if !ok {
		return
	}
	summary, breakdown, err := h.attendance.StudentAttendance(c.Request.Context(), student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"summary": summary, "subjects": breakdown}, nil)
}

// MyResults godoc
// @Summary Result history for the signed-in student
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/results [get]
func (h *StudentHandler) MyResults(c *gin.Context) {
	student, ok := h.selfStudent(c)
	if !ok {
		return
	}
	results, err := h.results.ListByStudent(c.Request.Context(), student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

func (h *StudentHandler) selfStudent(c *gin.Context) (*models.StudentDetail, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	student, err := h.students.GetByEmail(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return student, true
}
