package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegio-adm/colegio-api/internal/models"
	appErrors "github.com/colegio-adm/colegio-api/pkg/errors"
)

type groupRepository interface {
	List(ctx context.Context, filter models.GroupFilter) ([]models.GroupDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.GroupDetail, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	Archive(ctx context.Context, id string) error
	AddMember(ctx context.Context, member *models.GroupMember) error
	RemoveMember(ctx context.Context, groupID, studentID string) error
	ListMembers(ctx context.Context, groupID string) ([]models.StudentDetail, error)
	AssignSubject(ctx context.Context, link *models.GroupSubject) error
	UnassignSubject(ctx context.Context, groupID, subjectID string) error
	ListSubjects(ctx context.Context, groupID string) ([]models.GroupSubjectDetail, error)
}

// CreateGroupRequest holds payload for creating groups.
type CreateGroupRequest struct {
	Code              string  `json:"code" validate:"required"`
	Name              string  `json:"name" validate:"required"`
	Grade             string  `json:"grade" validate:"required"`
	Section           string  `json:"section" validate:"required"`
	HomeroomTeacherID *string `json:"homeroom_teacher_id"`
}

// UpdateGroupRequest holds payload for updating groups.
type UpdateGroupRequest struct {
	Code              string  `json:"code" validate:"required"`
	Name              string  `json:"name" validate:"required"`
	Grade             string  `json:"grade" validate:"required"`
	Section           string  `json:"section" validate:"required"`
	HomeroomTeacherID *string `json:"homeroom_teacher_id"`
	Active            bool    `json:"active"`
}

// GroupService handles group use-cases including membership and curriculum.
type GroupService struct {
	repo      groupRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGroupService constructs the group service.
func NewGroupService(repo groupRepository, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{repo: repo, validator: validate, logger: logger}
}

// List returns groups and pagination metadata.
func (s *GroupService) List(ctx context.Context, filter models.GroupFilter) ([]models.GroupDetail, *models.Pagination, error) {
	groups, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
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
	return groups, pagination, nil
}

// Get returns a group by ID.
func (s *GroupService) Get(ctx context.Context, id string) (*models.GroupDetail, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return group, nil
}

// Create registers a new group.
func (s *GroupService) Create(ctx context.Context, req CreateGroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}
	exists, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate group code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "group code already used")
	}
	group := &models.Group{
		Code:              req.Code,
		Name:              req.Name,
		Grade:             req.Grade,
		Section:           req.Section,
		HomeroomTeacherID: req.HomeroomTeacherID,
		Active:            true,
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}
	return group, nil
}

// Update modifies an existing group.
func (s *GroupService) Update(ctx context.Context, id string, req UpdateGroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	exists, err := s.repo.ExistsByCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate group code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "group code already used")
	}
	group := detail.Group
	group.Code = req.Code
	group.Name = req.Name
	group.Grade = req.Grade
	group.Section = req.Section
	group.HomeroomTeacherID = req.HomeroomTeacherID
	group.Active = req.Active
	if err := s.repo.Update(ctx, &group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update group")
	}
	return &group, nil
}

// Archive marks a group inactive.
func (s *GroupService) Archive(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if err := s.repo.Archive(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive group")
	}
	return nil
}

// Enroll adds a student to the group, replacing any previous membership.
func (s *GroupService) Enroll(ctx context.Context, groupID, studentID string) error {
	if _, err := s.Get(ctx, groupID); err != nil {
		return err
	}
	member := &models.GroupMember{GroupID: groupID, StudentID: studentID}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
	}
	return nil
}

// Withdraw removes a student from the group.
func (s *GroupService) Withdraw(ctx context.Context, groupID, studentID string) error {
	if err := s.repo.RemoveMember(ctx, groupID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "membership not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw student")
	}
	return nil
}

// Members lists students enrolled in the group.
func (s *GroupService) Members(ctx context.Context, groupID string) ([]models.StudentDetail, error) {
	if _, err := s.Get(ctx, groupID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}
	return members, nil
}

// AssignSubject adds a subject to the group curriculum.
func (s *GroupService) AssignSubject(ctx context.Context, groupID, subjectID string) error {
	if _, err := s.Get(ctx, groupID); err != nil {
		return err
	}
	link := &models.GroupSubject{GroupID: groupID, SubjectID: subjectID}
	if err := s.repo.AssignSubject(ctx, link); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign subject")
	}
	return nil
}

// UnassignSubject removes a subject from the group curriculum.
func (s *GroupService) UnassignSubject(ctx context.Context, groupID, subjectID string) error {
	if err := s.repo.UnassignSubject(ctx, groupID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "subject assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign subject")
	}
	return nil
}

// Subjects lists the subjects assigned to the group.
func (s *GroupService) Subjects(ctx context.Context, groupID string) ([]models.GroupSubjectDetail, error) {
	if _, err := s.Get(ctx, groupID); err != nil {
		return nil, err
	}
	subjects, err := s.repo.ListSubjects(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group subjects")
	}
	return subjects, nil
}
