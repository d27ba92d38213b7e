package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegio-adm/colegio-api/internal/models"
	"github.com/colegio-adm/colegio-api/internal/service"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
	"github.com/colegio-adm/colegio-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

type updateAttendanceRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param groupId query string false "Filter by group"
// @Param subjectId query string false "Filter by subject"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	var filter models.AttendanceFilter
	filter.StudentID = c.Query("studentId")
	filter.GroupID = c.Query("groupId")
	filter.SubjectID = c.Query("subjectId")
	if raw := c.Query("status"); raw != "" {
		if status, ok := models.ResolveAttendanceStatus(raw); ok {
			filter.Status = &status
		}
	}
	filter.DateFrom = parseDateQuery(c, "from")
	filter.DateTo = parseDateQuery(c, "to")
	filter.Page, filter.PageSize = parsePaging(c, 50)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	records, pagination, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Record godoc
// @Summary Record attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.attendance.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// RollCall godoc
// @Summary Record a group roll call
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RollCallRequest true "Roll call payload"
// @Success 201 {object} response.Envelope
// @Router /attendance/roll-call [post]
func (h *AttendanceHandler) RollCall(c *gin.Context) {
	var req service.RollCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	records, err := h.attendance.RecordRollCall(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, records, nil)
}

// Update godoc
// @Summary Correct attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param payload body updateAttendanceRequest true "Correction payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	var req updateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.attendance.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete attendance record
// @Tags Attendance
// @Produce json
// @Param id path string true "Attendance ID"
// @Success 204
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.attendance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// StudentSummary godoc
// @Summary Student attendance summary
// @Tags Attendance
// @Produce json
// @Param studentId path string true "Student ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/summary/{studentId} [get]
func (h *AttendanceHandler) StudentSummary(c *gin.Context) {
	from := parseDateQuery(c, "from")
	to := parseDateQuery(c, "to")
	summary, err := h.attendance.SummarizeStudent(c.Request.Context(), c.Param("studentId"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"summary": summary,
		"band":    h.attendance.Band(summary.PercentPresent),
	}, nil)
}
