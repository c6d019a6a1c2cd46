package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/model"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
)

// SubmitInput is a submission. Resume is whatever the intake middleware
// accepted; nil means no file was uploaded.
//
// RolePostID and CreatedBy are taken as given. Neither is checked against the
// rolePost collection.
type SubmitInput struct {
	Username   string `json:"username" validate:"required"`
	RolePostID string `json:"rolePostId" validate:"required"`
	CreatedBy  string `json:"createdBy"`
	Message    string `json:"message"`
	Role       string `json:"role"`
	Resume     *model.Resume
}

// SubmitResult carries the new id and the applicant's applied list after
// the link; the list is empty when no user has that username.
type SubmitResult struct {
	ApplicationID string
	Applied       []string
}

type ApplicationService struct {
	repo   repository.ApplicationRepository
	logger *slog.Logger
	now    clock
}

func NewApplicationService(repo repository.ApplicationRepository, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, logger: logger, now: time.Now}
}

// Submit stores a new pending application and links it to its user.
// Submitting twice for the same role post creates two applications.
func (s *ApplicationService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if in.Resume == nil {
		return nil, apperror.ValidationFailed("resume", "Resume file is required")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	app := &model.Application{
		Username:   in.Username,
		CreatedBy:  in.CreatedBy,
		RolePostID: in.RolePostID,
		Message:    in.Message,
		Role:       in.Role,
		Resume:     in.Resume,
		AppliedOn:  model.Timestamp(s.now()),
		Status:     model.StatusPending,
	}
	applied, err := s.repo.Submit(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("service/application: submitting for %q: %w", in.Username, err)
	}

	s.logger.Info("application submitted",
		slog.String("applicationID", app.ID),
		slog.String("username", app.Username),
		slog.String("rolePostID", app.RolePostID),
		slog.Int("resumeBytes", len(in.Resume.Data)),
	)
	return &SubmitResult{ApplicationID: app.ID, Applied: applied}, nil
}

func (s *ApplicationService) Get(ctx context.Context, id string) (*ApplicationView, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/application: getting %s: %w", id, err)
	}
	view := applicationViewOf(app)
	return &view, nil
}

func (s *ApplicationService) GetResume(ctx context.Context, id string) (*ResumeView, error) {
	app, err := s.repo.GetResume(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/application: getting resume %s: %w", id, err)
	}
	return &ResumeView{ID: app.ID, Resume: app.Resume}, nil
}

// HasApplied is an exact match on both keys.
func (s *ApplicationService) HasApplied(ctx context.Context, username, rolePostID string) (bool, error) {
	ok, err := s.repo.Exists(ctx, username, rolePostID)
	if err != nil {
		return false, fmt.Errorf("service/application: checking %q on %q: %w", username, rolePostID, err)
	}
	return ok, nil
}

// ListByRolePost returns applications whose rolePostId starts with the
// given value. The prefix match is long-standing behaviour that clients rely
// on, so an abbreviated id also matches.
func (s *ApplicationService) ListByRolePost(ctx context.Context, rolePostID string) ([]ApplicationView, error) {
	apps, err := s.repo.ListByRolePostPrefix(ctx, rolePostID)
	if err != nil {
		return nil, fmt.Errorf("service/application: listing for role post %q: %w", rolePostID, err)
	}
	if len(apps) == 0 {
		return nil, apperror.NotFoundMessage("No applications found for this role post")
	}
	return viewsOf(apps), nil
}

func (s *ApplicationService) ListByCreator(ctx context.Context, userID string) ([]ApplicationView, error) {
	apps, err := s.repo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/application: listing for creator %q: %w", userID, err)
	}
	if len(apps) == 0 {
		return nil, apperror.NotFoundMessage("No applications found for this role post and user")
	}
	return viewsOf(apps), nil
}

// UpdateStatus accepts any of the three statuses from any current status.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id, status string) error {
	if err := validateVar(status, "status", "required,oneof=accepted rejected pending"); err != nil {
		return apperror.ValidationFailed("status", "Invalid status")
	}
	if err := s.repo.UpdateStatus(ctx, id, model.ApplicationStatus(status)); err != nil {
		return fmt.Errorf("service/application: updating status of %s: %w", id, err)
	}

	s.logger.Info("application status updated",
		slog.String("applicationID", id),
		slog.String("status", status),
	)
	return nil
}

func viewsOf(apps []model.Application) []ApplicationView {
	out := make([]ApplicationView, 0, len(apps))
	for i := range apps {
		out = append(out, applicationViewOf(&apps[i]))
	}
	return out
}
