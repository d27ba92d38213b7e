package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegio-adm/colegio-api/internal/service"
	"github.com/colegio-adm/colegio-api/pkg/response"
)

// DashboardHandler exposes consolidated overview endpoints.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Student godoc
// @Summary Student dashboard overview
// @Tags Dashboard
// @Produce json
// @Param studentId path string true "Student ID"
// @Param period query string false "Academic period"
// @Success 200 {object} response.Envelope
// @Router /dashboard/student/{studentId} [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	overview, cached, err := h.dashboard.StudentOverview(c.Request.Context(), c.Param("studentId"), c.Query("period"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil, map[string]interface{}{"cached": cached})
}

// Admin godoc
// @Summary Administrator overview
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	overview, cached, err := h.dashboard.AdminOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil, map[string]interface{}{"cached": cached})
}
