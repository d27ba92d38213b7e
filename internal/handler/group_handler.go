package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/colegio-adm/colegio-api/internal/models"
	"github.com/colegio-adm/colegio-api/internal/service"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
	"github.com/colegio-adm/colegio-api/pkg/response"
)

// GroupHandler exposes group endpoints including membership and subject
// assignment.
type GroupHandler struct {
	groups *service.GroupService
}

// NewGroupHandler constructs GroupHandler.
func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

type enrollRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

type assignSubjectRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
}

// List godoc
// @Summary List groups
// @Tags Groups
// @Produce json
// @Param search query string false "Search by name"
// @Param grade query string false "Filter by grade"
// @Param section query string false "Filter by section"
// @Param active query bool false "Filter by active state"
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	var filter models.GroupFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Grade = c.Query("grade")
	filter.Section = c.Query("section")
	filter.Active = parseBoolQuery(c, "active")
	filter.Page, filter.PageSize = parsePaging(c, 20)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	groups, pagination, err := h.groups.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, pagination)
}

// Get godoc
// @Summary Get group
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Create godoc
// @Summary Create group
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body service.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req service.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	group, err := h.groups.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Update godoc
// @Summary Update group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body service.UpdateGroupRequest true "Group payload"
// @Success 200 {object} response.Envelope
// @Router /groups/{id} [put]
func (h *GroupHandler) Update(c *gin.Context) {
	var req service.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	group, err := h.groups.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Archive godoc
// @Summary Archive group
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 204
// @Router /groups/{id} [delete]
func (h *GroupHandler) Archive(c *gin.Context) {
	if err := h.groups.Archive(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Members godoc
// @Summary List group members
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/members [get]
func (h *GroupHandler) Members(c *gin.Context) {
	members, err := h.groups.Members(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}

// Enroll godoc
// @Summary Enroll student into group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body enrollRequest true "Enrollment payload"
// @Success 204
// @Router /groups/{id}/members [post]
func (h *GroupHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.groups.Enroll(c.Request.Context(), c.Param("id"), req.StudentID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Withdraw godoc
// @Summary Withdraw student from group
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Param studentId path string true "Student ID"
// @Success 204
// @Router /groups/{id}/members/{studentId} [delete]
func (h *GroupHandler) Withdraw(c *gin.Context) {
	if err := h.groups.Withdraw(c.Request.Context(), c.Param("id"), c.Param("studentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Subjects godoc
// @Summary List subjects assigned to a group
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/subjects [get]
func (h *GroupHandler) Subjects(c *gin.Context) {
	subjects, err := h.groups.Subjects(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// AssignSubject godoc
// @Summary Assign subject to group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body assignSubjectRequest true "Assignment payload"
// @Success 204
// @Router /groups/{id}/subjects [post]
func (h *GroupHandler) AssignSubject(c *gin.Context) {
	var req assignSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.groups.AssignSubject(c.Request.Context(), c.Param("id"), req.SubjectID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnassignSubject godoc
// @Summary Unassign subject from group
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Param subjectId path string true "Subject ID"
// @Success 204
// @Router /groups/{id}/subjects/{subjectId} [delete]
func (h *GroupHandler) UnassignSubject(c *gin.Context) {
	if err := h.groups.UnassignSubject(c.Request.Context(), c.Param("id"), c.Param("subjectId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
