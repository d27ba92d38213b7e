package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegio-adm/colegio-api/internal/models"
	"github.com/colegio-adm/colegio-api/internal/service"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
	"github.com/colegio-adm/colegio-api/pkg/response"
)

// GradeHandler exposes grade registration and aggregation endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

func calculationScheme(c *gin.Context) models.CalculationScheme {
	if c.Query("scheme") == "weighted" {
		return models.SchemeWeighted
	}
	return models.SchemeAverage
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param subjectId query string false "Filter by subject"
// @Param teacherId query string false "Filter by teacher"
// @Param period query string false "Filter by period"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	var filter models.GradeFilter
	filter.StudentID = c.Query("studentId")
	filter.SubjectID = c.Query("subjectId")
	filter.TeacherID = c.Query("teacherId")
	filter.Period = c.Query("period")
	if raw := c.Query("type"); raw != "" {
		if gradeType, ok := models.ResolveGradeType(raw); ok {
			filter.Type = &gradeType
		}
	}
	filter.Page, filter.PageSize = parsePaging(c, 50)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	grades, pagination, err := h.grades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, pagination)
}

// Create godoc
// @Summary Register grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.CreateGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	var req service.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grades.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Update godoc
// @Summary Correct grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Grade ID"
// @Param payload body service.UpdateGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	var req service.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grades.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Delete godoc
// @Summary Delete grade
// @Tags Grades
// @Produce json
// @Param id path string true "Grade ID"
// @Success 204
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
	if err := h.grades.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReportCard godoc
// @Summary Student report card
// @Tags Grades
// @Produce json
// @Param studentId path string true "Student ID"
// @Param period query string false "Academic period"
// @Param scheme query string false "average or weighted"
// @Success 200 {object} response.Envelope
// @Router /grades/report-card/{studentId} [get]
func (h *GradeHandler) ReportCard(c *gin.Context) {
	card, err := h.grades.ReportCard(c.Request.Context(), c.Param("studentId"), c.Query("period"), calculationScheme(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card, nil)
}

// Types godoc
// @Summary List grade types
// @Tags Grades
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grades/types [get]
func (h *GradeHandler) Types(c *gin.Context) {
	types := models.GradeTypes()
	out := make([]gin.H, 0, len(types))
	for _, t := range types {
		out = append(out, gin.H{
			"value":          t,
			"display_name":   t.DisplayName(),
			"abbreviation":   t.Abbreviation(),
			"default_weight": t.DefaultWeight(),
		})
	}
	response.JSON(c, http.StatusOK, out, nil)
}
