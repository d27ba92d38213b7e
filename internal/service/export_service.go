package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/colegio-adm/colegio-api/internal/models"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
	"github.com/colegio-adm/colegio-api/pkg/export"
)

type exportStudentLookup interface {
	Get(ctx context.Context, id string) (*models.StudentDetail, error)
}

type exportReportCardProvider interface {
	ReportCard(ctx context.Context, studentID, period string, scheme models.CalculationScheme) (*models.ReportCard, error)
}

type exportPaymentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	FindByFolio(ctx context.Context, folio string) (*models.Payment, error)
}

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes with delivery metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportServiceConfig tunes export rendering.
type ExportServiceConfig struct {
	InstitutionName string
}

// ExportService renders report cards and payment receipts as CSV or PDF.
type ExportService struct {
	students exportStudentLookup
	grades   exportReportCardProvider
	payments exportPaymentLookup
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	cfg      ExportServiceConfig
}

// NewExportService constructs the export service.
func NewExportService(students exportStudentLookup, grades exportReportCardProvider, payments exportPaymentLookup, cfg ExportServiceConfig, logger *zap.Logger) *ExportService {
	if cfg.InstitutionName == "" {
		cfg.InstitutionName = "Colegio"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		students: students,
		grades:   grades,
		payments: payments,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		cfg:      cfg,
	}
}

// ReportCard renders a student's report card for the given period.
func (s *ExportService) ReportCard(ctx context.Context, studentID, period string, scheme models.CalculationScheme, format ExportFormat) (*ExportResult, error) {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	card, err := s.grades.ReportCard(ctx, studentID, period, scheme)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Headers: []string{"Materia", "Promedio", "Estado", "Registros"},
	}
	for _, row := range card.Subjects {
		data.Rows = append(data.Rows, map[string]string{
			"Materia":   row.SubjectName,
			"Promedio":  fmt.Sprintf("%.2f", row.Average),
			"Estado":    string(row.Standing),
			"Registros": fmt.Sprintf("%d", row.Entries),
		})
	}
	data.Rows = append(data.Rows, map[string]string{
		"Materia":  "PROMEDIO GENERAL",
		"Promedio": fmt.Sprintf("%.2f", card.Overall),
		"Estado":   string(card.Standing),
	})

	baseName := fmt.Sprintf("boleta_%s_%s", student.Matricula, period)
	subtitle := fmt.Sprintf("%s (%s) - Periodo %s", student.FullName, student.Matricula, period)
	return s.render(data, format, baseName, "Boleta de calificaciones", subtitle)
}

// PaymentReceipt renders the receipt for a payment, looked up by ID.
func (s *ExportService) PaymentReceipt(ctx context.Context, paymentID string, format ExportFormat) (*ExportResult, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return s.renderReceipt(ctx, payment, format)
}

// PaymentReceiptByFolio renders the receipt for a payment, looked up by folio.
func (s *ExportService) PaymentReceiptByFolio(ctx context.Context, folio string, format ExportFormat) (*ExportResult, error) {
	payment, err := s.payments.FindByFolio(ctx, folio)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return s.renderReceipt(ctx, payment, format)
}

func (s *ExportService) renderReceipt(ctx context.Context, payment *models.Payment, format ExportFormat) (*ExportResult, error) {
	// Legacy records may store the display name instead of the status tag.
	payment.Status = models.ParsePaymentStatus(string(payment.Status), payment.Status)

	studentName := payment.StudentID
	matricula := ""
	if student, err := s.students.Get(ctx, payment.StudentID); err == nil {
		studentName = student.FullName
		matricula = student.Matricula
	}

	paidAt := "-"
	if payment.PaidAt != nil {
		paidAt = payment.PaidAt.Format("2006-01-02")
	}
	data := export.Dataset{
		Headers: []string{"Concepto", "Valor"},
		Rows: []map[string]string{
			{"Concepto": "Folio", "Valor": payment.Folio},
			{"Concepto": "Alumno", "Valor": studentName},
			{"Concepto": "Matricula", "Valor": matricula},
			{"Concepto": "Tipo", "Valor": payment.Type.DisplayName()},
			{"Concepto": "Periodo", "Valor": payment.Period},
			{"Concepto": "Monto original", "Valor": fmt.Sprintf("%.2f", payment.AmountOriginal)},
			{"Concepto": "Recargo", "Valor": fmt.Sprintf("%.2f", payment.AmountSurcharge)},
			{"Concepto": "Beca", "Valor": fmt.Sprintf("%.2f", payment.AmountScholarship)},
			{"Concepto": "Total", "Valor": fmt.Sprintf("%.2f", payment.TotalAmount())},
			{"Concepto": "Pagado", "Valor": fmt.Sprintf("%.2f", payment.AmountPaid)},
			{"Concepto": "Saldo", "Valor": fmt.Sprintf("%.2f", payment.Balance())},
			{"Concepto": "Metodo", "Valor": payment.Method},
			{"Concepto": "Fecha de pago", "Valor": paidAt},
			{"Concepto": "Estado", "Valor": payment.Status.DisplayName()},
			{"Concepto": "Vencimiento", "Valor": payment.DueDate.Format("2006-01-02")},
		},
	}

	baseName := fmt.Sprintf("recibo_%s", payment.Folio)
	subtitle := fmt.Sprintf("Emitido %s", time.Now().UTC().Format("2006-01-02"))
	return s.render(data, format, baseName, "Recibo de pago", subtitle)
}

func (s *ExportService) render(data export.Dataset, format ExportFormat, baseName, title, subtitle string) (*ExportResult, error) {
	switch format {
	case FormatCSV:
		body, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{FileName: baseName + ".csv", ContentType: "text/csv", Data: body}, nil
	case FormatPDF:
		body, err := s.pdf.Render(data, s.cfg.InstitutionName+" - "+title, subtitle)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{FileName: baseName + ".pdf", ContentType: "application/pdf", Data: body}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
