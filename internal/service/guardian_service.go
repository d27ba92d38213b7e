package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegio-adm/colegio-api/internal/models"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
)

type guardianRepository interface {
	List(ctx context.Context, filter models.GuardianLinkFilter) ([]models.GuardianLinkDetail, error)
	FindByID(ctx context.Context, id string) (*models.GuardianLinkDetail, error)
	Create(ctx context.Context, link *models.GuardianLink) error
	Update(ctx context.Context, link *models.GuardianLink) error
	Archive(ctx context.Context, id string) error
}

type guardianUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// LinkGuardianRequest ties a parent user to a student.
type LinkGuardianRequest struct {
	ParentUserID string `json:"parent_user_id" validate:"required"`
	StudentID    string `json:"student_id" validate:"required"`
	Relationship string `json:"relationship" validate:"required"`
	Authorized   bool   `json:"authorized"`
}

// GuardianService manages parent-student links.
type GuardianService struct {
	repo      guardianRepository
	users     guardianUserLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGuardianService constructs the guardian service.
func NewGuardianService(repo guardianRepository, users guardianUserLookup, validate *validator.Validate, logger *zap.Logger) *GuardianService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardianService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns guardian links matching the filters.
func (s *GuardianService) List(ctx context.Context, filter models.GuardianLinkFilter) ([]models.GuardianLinkDetail, error) {
	links, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list guardian links")
	}
	return links, nil
}

// StudentsOf returns the active links for a parent user.
func (s *GuardianService) StudentsOf(ctx context.Context, parentUserID string) ([]models.GuardianLinkDetail, error) {
	active := true
	return s.List(ctx, models.GuardianLinkFilter{ParentUserID: parentUserID, Active: &active})
}

// Link ties a parent user to a student. The user must exist and carry the
// parent role.
func (s *GuardianService) Link(ctx context.Context, req LinkGuardianRequest) (*models.GuardianLink, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid guardian link payload")
	}
	parent, err := s.users.FindByID(ctx, req.ParentUserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent user")
	}
	if parent.Role != models.RoleParent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user does not have the parent role")
	}
	link := &models.GuardianLink{
		ParentUserID: req.ParentUserID,
		StudentID:    req.StudentID,
		Relationship: req.Relationship,
		Authorized:   req.Authorized,
		Active:       true,
	}
	if err := s.repo.Create(ctx, link); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create guardian link")
	}
	return link, nil
}

// Unlink deactivates a guardian link.
func (s *GuardianService) Unlink(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "guardian link not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load guardian link")
	}
	if err := s.repo.Archive(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive guardian link")
	}
	return nil
}

// Authorize toggles pickup authorization on a link.
func (s *GuardianService) Authorize(ctx context.Context, id string, authorized bool) (*models.GuardianLink, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "guardian link not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load guardian link")
	}
	link := detail.GuardianLink
	link.Authorized = authorized
	if err := s.repo.Update(ctx, &link); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update guardian link")
	}
	return &link, nil
}
