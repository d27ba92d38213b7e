package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/colegio-adm/colegio-api/internal/models"
	"github.com/colegio-adm/colegio-api/internal/service"
	"github.com/colegio-adm/colegio-api/pkg/response"
)

// ExportHandler exposes report-card and receipt downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

func exportFormat(c *gin.Context) service.ExportFormat {
	if c.DefaultQuery("format", "pdf") == "csv" {
		return service.FormatCSV
	}
	return service.FormatPDF
}

func serveExport(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(200, result.ContentType, result.Data)
}

// ReportCard godoc
// @Summary Download student report card
// @Tags Exports
// @Produce application/pdf
// @Param studentId path string true "Student ID"
// @Param period query string false "Academic period"
// @Param format query string false "pdf or csv"
// @Success 200 {file} binary
// @Router /exports/report-card/{studentId} [get]
func (h *ExportHandler) ReportCard(c *gin.Context) {
	scheme := models.SchemeAverage
	if c.Query("scheme") == "weighted" {
		scheme = models.SchemeWeighted
	}
	result, err := h.exports.ReportCard(c.Request.Context(), c.Param("studentId"), c.Query("period"), scheme, exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, result)
}

// Receipt godoc
// @Summary Download payment receipt
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Payment ID"
// @Param format query string false "pdf or csv"
// @Success 200 {file} binary
// @Router /exports/receipt/{id} [get]
func (h *ExportHandler) Receipt(c *gin.Context) {
	result, err := h.exports.PaymentReceipt(c.Request.Context(), c.Param("id"), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, result)
}

// ReceiptByFolio godoc
// @Summary Download payment receipt by folio
// @Tags Exports
// @Produce application/pdf
// @Param folio path string true "Receipt folio"
// @Param format query string false "pdf or csv"
// @Success 200 {file} binary
// @Router /exports/receipt/folio/{folio} [get]
func (h *ExportHandler) ReceiptByFolio(c *gin.Context) {
	result, err := h.exports.PaymentReceiptByFolio(c.Request.Context(), c.Param("folio"), exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, result)
}
