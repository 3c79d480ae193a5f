package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srisai/college-api/internal/service"
	"github.com/srisai/college-api/pkg/response"
)

// ReportHandler streams rendered report exports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs a new ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ReportCard godoc
// @Summary Download a student report card
// @Tags Reports
// @Produce application/pdf
// @Produce text/csv
// @Param id path string true "Student ID"
// @Param format query string false "Export format (pdf or csv)" default(pdf)
// @Success 200 {file} binary
// @Router /reports/students/{id}/report-card [get]
func (h *ReportHandler) ReportCard(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", "pdf"))

	file, err := h.reports.ReportCard(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}
