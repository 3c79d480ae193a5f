package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srisai/college-api/internal/models"
	"github.com/srisai/college-api/internal/service"
	appErrors "github.com/srisai/college-api/pkg/errors"
	"github.com/srisai/college-api/pkg/response"
)

// DashboardHandler serves role-specific dashboard snapshots.
type DashboardHandler struct {
	dashboards *service.DashboardService
	metrics    *service.MetricsService
}

// NewDashboardHandler constructs a new DashboardHandler.
func NewDashboardHandler(dashboards *service.DashboardService, metrics *service.MetricsService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, metrics: metrics}
}

// Admin godoc
// @Summary Admin dashboard
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboards/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	dashboard, err := h.dashboards.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// Teacher godoc
// @Summary Teacher dashboard for the current user
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboards/teacher [get]
func (h *DashboardHandler) Teacher(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	dashboard, err := h.dashboards.Teacher(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// Student godoc
// @Summary Student dashboard for the current user
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboards/student [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	dashboard, err := h.dashboards.Student(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// Me godoc
// @Summary Dashboard for the current user's role
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboards/me [get]
func (h *DashboardHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	switch claims.Role {
	case models.RoleAdmin:
		h.Admin(c)
	case models.RoleTeacher:
		h.Teacher(c)
	case models.RoleStudent:
		h.Student(c)
	default:
		response.Error(c, appErrors.ErrForbidden)
	}
}

// Refresh godoc
// @Summary Drop cached dashboard payloads
// @Tags Dashboards
// @Success 204
// @Router /dashboards/refresh [post]
func (h *DashboardHandler) Refresh(c *gin.Context) {
	h.dashboards.InvalidateCache(c.Request.Context())
	response.NoContent(c)
}

// SystemMetrics godoc
// @Summary Aggregated runtime metrics snapshot
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboards/system [get]
func (h *DashboardHandler) SystemMetrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
