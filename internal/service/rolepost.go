package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/model"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
)

// PageSize is the fixed number of role posts per listing page.
const PageSize = 30

// RolePostFields are the owner-editable fields of a RolePost. An update
// writes all of them, so omitted fields are cleared.
type RolePostFields struct {
	ProjectName string   `json:"pName"`
	RepoLink    string   `json:"repoLink"`
	TechStack   []string `json:"techStack"`
	TechPublic  bool     `json:"techPublic"`
	Roles       []string `json:"roles"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Deadline    string   `json:"deadline"`
}

// RolePostInput is the create payload. pName and userId are required on
// create only. UserID is the owner; it cannot be changed afterwards.
type RolePostInput struct {
	RolePostFields
	UserID string `json:"userId" validate:"required"`
}

// RolePostQuery is a listing request. Page is 1-based; anything below 1 is
// treated as 1.
type RolePostQuery struct {
	Page      int
	UserID    string
	TechStack []string
	Roles     []string
}

type RolePostService struct {
	repo   repository.RolePostRepository
	logger *slog.Logger
	now    clock
}

func NewRolePostService(repo repository.RolePostRepository, logger *slog.Logger) *RolePostService {
	return &RolePostService{repo: repo, logger: logger, now: time.Now}
}

// Create stamps createdAt and stores the post. It returns the new id.
func (s *RolePostService) Create(ctx context.Context, in RolePostInput) (string, error) {
	if err := validateVar(in.ProjectName, "pName", "required"); err != nil {
		return "", err
	}
	if err := validateStruct(in); err != nil {
		return "", err
	}

	post := &model.RolePost{
		ProjectName: in.ProjectName,
		RepoLink:    in.RepoLink,
		TechStack:   in.TechStack,
		TechPublic:  in.TechPublic,
		Roles:       in.Roles,
		Address:     in.Address,
		Description: in.Description,
		Duration:    in.Duration,
		Deadline:    in.Deadline,
		UserID:      in.UserID,
		CreatedAt:   model.Timestamp(s.now()),
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return "", fmt.Errorf("service/rolepost: creating: %w", err)
	}

	s.logger.Info("role post created",
		slog.String("rolePostID", post.ID),
		slog.String("userID", post.UserID),
	)
	return post.ID, nil
}

// List returns one page in store order. An empty page is not an error.
func (s *RolePostService) List(ctx context.Context, q RolePostQuery) ([]RolePostSummary, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	// Past this the offset overflows int; no store holds that many posts.
	if page > math.MaxInt/PageSize {
		return []RolePostSummary{}, nil
	}

	posts, err := s.repo.List(ctx, repository.RolePostFilter{
		UserID:    q.UserID,
		TechStack: q.TechStack,
		Roles:     q.Roles,
		Limit:     PageSize,
		Offset:    (page - 1) * PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("service/rolepost: listing page %d: %w", page, err)
	}

	out := make([]RolePostSummary, 0, len(posts))
	for i := range posts {
		out = append(out, summaryOf(&posts[i]))
	}
	return out, nil
}

func (s *RolePostService) Get(ctx context.Context, id string) (*RolePostDetail, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/rolepost: getting %s: %w", id, err)
	}
	return detailOf(post), nil
}

// ListByUser reports NotFound when the user owns no posts.
func (s *RolePostService) ListByUser(ctx context.Context, userID string) ([]RolePostBrief, error) {
	posts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/rolepost: listing for user %s: %w", userID, err)
	}
	if len(posts) == 0 {
		return nil, apperror.NotFoundMessage("No role posts found for this user")
	}

	out := make([]RolePostBrief, 0, len(posts))
	for _, p := range posts {
		out = append(out, RolePostBrief{ID: p.ID, Roles: p.Roles, Deadline: p.Deadline, CreatedAt: p.CreatedAt})
	}
	return out, nil
}

// Update replaces every editable field; owner and createdAt stay.
func (s *RolePostService) Update(ctx context.Context, id string, in RolePostFields) error {
	err := s.repo.Update(ctx, &model.RolePost{
		ID:          id,
		ProjectName: in.ProjectName,
		RepoLink:    in.RepoLink,
		TechStack:   in.TechStack,
		TechPublic:  in.TechPublic,
		Roles:       in.Roles,
		Address:     in.Address,
		Description: in.Description,
		Duration:    in.Duration,
		Deadline:    in.Deadline,
	})
	if err != nil {
		return fmt.Errorf("service/rolepost: updating %s: %w", id, err)
	}
	return nil
}
