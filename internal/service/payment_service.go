package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegio-adm/colegio-api/internal/models"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Payment, error)
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]models.Payment, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	FindByFolio(ctx context.Context, folio string) (*models.Payment, error)
	CountByFolioPrefix(ctx context.Context, prefix string) (int, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	UpdateStatus(ctx context.Context, id string, from, to models.PaymentStatus, paidAt *time.Time) error
	SummarizeByStudent(ctx context.Context, studentID string) (*models.PaymentSummary, error)
}

// RegisterPaymentRequest holds payload for registering a charge.
type RegisterPaymentRequest struct {
	StudentID         string    `json:"student_id" validate:"required"`
	Type              string    `json:"type" validate:"required"`
	AmountOriginal    float64   `json:"amount_original" validate:"gt=0"`
	AmountSurcharge   float64   `json:"amount_surcharge" validate:"gte=0"`
	AmountScholarship float64   `json:"amount_scholarship" validate:"gte=0"`
	Period            string    `json:"period" validate:"required"`
	DueDate           time.Time `json:"due_date" validate:"required"`
	Notes             *string   `json:"notes"`
	RegisteredBy      string    `json:"-"`
}

// RecordPaymentRequest applies a received amount to an open charge.
type RecordPaymentRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	Method string  `json:"method" validate:"required"`
}

// PaymentService handles payment registration, the status lifecycle and
// account summaries.
type PaymentService struct {
	repo        paymentRepository
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	folioPrefix string
	now         func() time.Time
}

// NewPaymentService constructs the payment service.
func NewPaymentService(repo paymentRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, folioPrefix string) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if folioPrefix == "" {
		folioPrefix = "PAG"
	}
	return &PaymentService{
		repo:        repo,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		folioPrefix: folioPrefix,
		now:         time.Now,
	}
}

// WithClock overrides the time source.
func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	if now != nil {
		s.now = now
	}
	return s
}

// List returns payments and pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return payments, pagination, nil
}

// Get returns a payment by ID. Records migrated from older schema versions
// may carry a display-name status literal; it resolves leniently on load so
// lifecycle checks see the canonical state.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	payment.Status = models.ParsePaymentStatus(string(payment.Status), payment.Status)
	return payment, nil
}

// GetByFolio returns a payment by its receipt folio.
func (s *PaymentService) GetByFolio(ctx context.Context, folio string) (*models.Payment, error) {
	payment, err := s.repo.FindByFolio(ctx, folio)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	payment.Status = models.ParsePaymentStatus(string(payment.Status), payment.Status)
	return payment, nil
}

func (s *PaymentService) fetch(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// Register creates a new pending charge with a generated folio.
func (s *PaymentService) Register(ctx context.Context, req RegisterPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	paymentType, ok := models.ResolvePaymentType(req.Type)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown payment type")
	}
	if req.AmountScholarship > req.AmountOriginal+req.AmountSurcharge {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scholarship discount exceeds charge amount")
	}
	folio, err := s.nextFolio(ctx)
	if err != nil {
		return nil, err
	}
	payment := &models.Payment{
		StudentID:         req.StudentID,
		Folio:             folio,
		Type:              paymentType,
		AmountOriginal:    req.AmountOriginal,
		AmountSurcharge:   req.AmountSurcharge,
		AmountScholarship: req.AmountScholarship,
		Period:            req.Period,
		DueDate:           req.DueDate,
		Status:            models.PaymentPending,
		Notes:             req.Notes,
		RegisteredBy:      req.RegisteredBy,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register payment")
	}
	return payment, nil
}

// nextFolio derives a sequential receipt number scoped to the current day.
func (s *PaymentService) nextFolio(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", s.folioPrefix, s.now().UTC().Format("20060102"))
	count, err := s.repo.CountByFolioPrefix(ctx, prefix)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate folio")
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// RecordPayment applies a received amount to an open charge and advances the
// status to partial or paid accordingly.
func (s *PaymentService) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment amount")
	}
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	target := models.PaymentPartial
	if payment.AmountPaid+req.Amount >= payment.TotalAmount() {
		target = models.PaymentPaid
	}
	if !payment.Status.RequiresAction() {
		return nil, s.transitionError(payment.Status, target)
	}
	// Successive installments keep the status at partial; the lifecycle table
	// only guards actual state changes.
	if target != payment.Status && !payment.Status.CanTransitionTo(target) {
		return nil, s.transitionError(payment.Status, target)
	}
	payment.AmountPaid += req.Amount
	payment.Method = req.Method
	if target == models.PaymentPaid {
		paidAt := s.now().UTC()
		payment.PaidAt = &paidAt
	}
	payment.Status = target
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}
	return payment, nil
}

// Transition moves a payment to a new status, enforcing the lifecycle table.
func (s *PaymentService) Transition(ctx context.Context, id, rawTarget string) (*models.Payment, error) {
	target, ok := models.ResolvePaymentStatus(rawTarget)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown payment status")
	}
	payment, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	// The guard below matches the status byte-for-byte as stored, so keep the
	// raw literal and resolve a normalized view only for the lifecycle check.
	stored := payment.Status
	current := models.ParsePaymentStatus(string(stored), stored)
	if !current.CanTransitionTo(target) {
		return nil, s.transitionError(current, target)
	}
	var paidAt *time.Time
	if target == models.PaymentPaid {
		stamp := s.now().UTC()
		paidAt = &stamp
	}
	if err := s.repo.UpdateStatus(ctx, id, stored, target, paidAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrConflict, "payment was modified concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to transition payment")
	}
	payment.Status = target
	if paidAt != nil {
		payment.PaidAt = paidAt
	}
	return payment, nil
}

func (s *PaymentService) transitionError(from, to models.PaymentStatus) error {
	msg := fmt.Sprintf("cannot move payment from %s to %s", from.DisplayName(), to.DisplayName())
	return appErrors.Clone(appErrors.ErrInvalidTransition, msg)
}

// Summarize aggregates a student's account and labels its standing. A clean
// account reads "Al día", small arrears within a tenth of what was paid read
// "Aceptable", anything beyond reads "Pendiente".
func (s *PaymentService) Summarize(ctx context.Context, studentID string) (*models.PaymentSummary, error) {
	summary, err := s.repo.SummarizeByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarize payments")
	}
	summary.AccountStatus = s.AccountStatus(summary.TotalPaid, summary.TotalPending)
	return summary, nil
}

// AccountStatus labels an account from its paid and pending totals.
func (s *PaymentService) AccountStatus(totalPaid, totalPending float64) string {
	switch {
	case totalPending == 0:
		return models.AccountStatusCurrent
	case totalPaid > 0 && totalPending <= totalPaid*0.10:
		return models.AccountStatusAcceptable
	default:
		return models.AccountStatusPending
	}
}

// MarkOverdue sweeps open payments past their due date into the overdue
// state and returns how many records moved. Records already advanced by a
// concurrent writer are skipped.
func (s *PaymentService) MarkOverdue(ctx context.Context) (int, error) {
	cutoff := s.now().UTC()
	due, err := s.repo.ListDueBefore(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load due payments")
	}
	moved := 0
	for _, payment := range due {
		if !payment.Status.CanTransitionTo(models.PaymentOverdue) {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, payment.ID, payment.Status, models.PaymentOverdue, nil); err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return moved, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark payment overdue")
		}
		moved++
	}
	if moved > 0 {
		s.metrics.RecordPaymentsSwept(moved)
		s.logger.Info("payments marked overdue", zap.Int("count", moved))
	}
	return moved, nil
}

// StartOverdueSweep runs MarkOverdue on the given interval until the context
// is cancelled.
func (s *PaymentService) StartOverdueSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.MarkOverdue(ctx); err != nil {
					s.logger.Warn("overdue sweep failed", zap.Error(err))
				}
			}
		}
	}()
}
