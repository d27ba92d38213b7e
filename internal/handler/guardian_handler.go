package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegio-adm/colegio-api/internal/models"
	"github.com/colegio-adm/colegio-api/internal/service"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
	"github.com/colegio-adm/colegio-api/pkg/response"
)

// GuardianHandler exposes parent-student link endpoints.
type GuardianHandler struct {
	guardians *service.GuardianService
}

// NewGuardianHandler constructs GuardianHandler.
func NewGuardianHandler(guardians *service.GuardianService) *GuardianHandler {
	return &GuardianHandler{guardians: guardians}
}

type authorizeRequest struct {
	Authorized bool `json:"authorized"`
}

// List godoc
// @Summary List guardian links
// @Tags Guardians
// @Produce json
// @Param parentUserId query string false "Filter by parent user"
// @Param studentId query string false "Filter by student"
// @Param active query bool false "Filter by active state"
// @Success 200 {object} response.Envelope
// @Router /guardians [get]
func (h *GuardianHandler) List(c *gin.Context) {
	var filter models.GuardianLinkFilter
	filter.ParentUserID = c.Query("parentUserId")
	filter.StudentID = c.Query("studentId")
	filter.Active = parseBoolQuery(c, "active")

	links, err := h.guardians.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

// MyStudents godoc
// @Summary Students linked to the authenticated parent
// @Tags Guardians
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /guardians/my-students [get]
func (h *GuardianHandler) MyStudents(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	links, err := h.guardians.StudentsOf(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

// Link godoc
// @Summary Link parent to student
// @Tags Guardians
// @Accept json
// @Produce json
// @Param payload body service.LinkGuardianRequest true "Link payload"
// @Success 201 {object} response.Envelope
// @Router /guardians [post]
func (h *GuardianHandler) Link(c *gin.Context) {
	var req service.LinkGuardianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	link, err := h.guardians.Link(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Authorize godoc
// @Summary Toggle pickup authorization
// @Tags Guardians
// @Accept json
// @Produce json
// @Param id path string true "Link ID"
// @Param payload body authorizeRequest true "Authorization payload"
// @Success 200 {object} response.Envelope
// @Router /guardians/{id}/authorize [patch]
func (h *GuardianHandler) Authorize(c *gin.Context) {
	var req authorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	link, err := h.guardians.Authorize(c.Request.Context(), c.Param("id"), req.Authorized)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Unlink godoc
// @Summary Deactivate guardian link
// @Tags Guardians
// @Produce json
// @Param id path string true "Link ID"
// @Success 204
// @Router /guardians/{id} [delete]
func (h *GuardianHandler) Unlink(c *gin.Context) {
	if err := h.guardians.Unlink(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
