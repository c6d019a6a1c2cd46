package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sujiiiiit/collabhub-backend/internal/model"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
)

// RoleInput is the body of the role admin endpoints.
type RoleInput struct {
	RoleID string `json:"roleId" validate:"required"`
	Name   string `json:"name" validate:"required"`
}

// CanonicalRoles and CanonicalTechStacks are inserted by the seed command
// into empty collections.
var (
	CanonicalRoles = []RoleInput{
		{RoleID: "1", Name: "Frontend Developer"},
		{RoleID: "2", Name: "Backend Developer"},
		{RoleID: "3", Name: "Full Stack Developer"},
		{RoleID: "4", Name: "Mobile Developer"},
		{RoleID: "5", Name: "UI/UX Designer"},
		{RoleID: "6", Name: "DevOps Engineer"},
		{RoleID: "7", Name: "Data Scientist"},
		{RoleID: "8", Name: "Machine Learning Engineer"},
		{RoleID: "9", Name: "QA Engineer"},
		{RoleID: "10", Name: "Technical Writer"},
		{RoleID: "11", Name: "Product Manager"},
	}

	CanonicalTechStacks = []model.TechStack{
		{StackID: "1", Name: "JavaScript"},
		{StackID: "2", Name: "TypeScript"},
		{StackID: "3", Name: "React"},
		{StackID: "4", Name: "Next.js"},
		{StackID: "5", Name: "Vue"},
		{StackID: "6", Name: "Node.js"},
		{StackID: "7", Name: "Express"},
		{StackID: "8", Name: "Go"},
		{StackID: "9", Name: "Python"},
		{StackID: "10", Name: "Django"},
		{StackID: "11", Name: "Java"},
		{StackID: "12", Name: "Spring Boot"},
		{StackID: "13", Name: "Rust"},
		{StackID: "14", Name: "Flutter"},
		{StackID: "15", Name: "MongoDB"},
		{StackID: "16", Name: "PostgreSQL"},
		{StackID: "17", Name: "Docker"},
		{StackID: "18", Name: "Kubernetes"},
		{StackID: "19", Name: "AWS"},
		{StackID: "20", Name: "Tailwind CSS"},
	}
)

// TaxonomyService serves the canonical role and tech-stack lookups.
type TaxonomyService struct {
	roles  repository.RoleRepository
	stacks repository.TechStackRepository
	logger *slog.Logger
}

func NewTaxonomyService(roles repository.RoleRepository, stacks repository.TechStackRepository, logger *slog.Logger) *TaxonomyService {
	return &TaxonomyService{roles: roles, stacks: stacks, logger: logger}
}

func (s *TaxonomyService) ListRoles(ctx context.Context) ([]RoleView, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/taxonomy: listing roles: %w", err)
	}
	out := make([]RoleView, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleView(r))
	}
	return out, nil
}

func (s *TaxonomyService) GetRole(ctx context.Context, id string) (*RoleView, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/taxonomy: getting role %s: %w", id, err)
	}
	view := RoleView(*role)
	return &view, nil
}

func (s *TaxonomyService) CreateRole(ctx context.Context, in RoleInput) (*RoleView, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	role := &model.Role{RoleID: in.RoleID, Name: in.Name}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("service/taxonomy: creating role: %w", err)
	}
	s.logger.Info("role created", slog.String("id", role.ID), slog.String("name", role.Name))
	view := RoleView(*role)
	return &view, nil
}

func (s *TaxonomyService) UpdateRole(ctx context.Context, id string, in RoleInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if err := s.roles.Update(ctx, &model.Role{ID: id, RoleID: in.RoleID, Name: in.Name}); err != nil {
		return fmt.Errorf("service/taxonomy: updating role %s: %w", id, err)
	}
	return nil
}

func (s *TaxonomyService) DeleteRole(ctx context.Context, id string) error {
	if err := s.roles.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/taxonomy: deleting role %s: %w", id, err)
	}
	s.logger.Info("role deleted", slog.String("id", id))
	return nil
}

func (s *TaxonomyService) ListTechStacks(ctx context.Context) ([]TechStackView, error) {
	stacks, err := s.stacks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/taxonomy: listing tech stacks: %w", err)
	}
	out := make([]TechStackView, 0, len(stacks))
	for _, st := range stacks {
		out = append(out, TechStackView(st))
	}
	return out, nil
}

// SeedResult reports how many entries Seed inserted into each collection.
type SeedResult struct {
	Roles      int
	TechStacks int
}

// Seed fills the role and tech-stack collections with the canonical lists.
// A collection that already has entries is left alone, so Seed can run on
// every deploy.
func (s *TaxonomyService) Seed(ctx context.Context) (*SeedResult, error) {
	var res SeedResult

	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/taxonomy: seeding roles: %w", err)
	}
	if len(roles) == 0 {
		for _, in := range CanonicalRoles {
			if err := s.roles.Create(ctx, &model.Role{RoleID: in.RoleID, Name: in.Name}); err != nil {
				return nil, fmt.Errorf("service/taxonomy: seeding role %q: %w", in.Name, err)
			}
			res.Roles++
		}
	}

	stacks, err := s.stacks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/taxonomy: seeding tech stacks: %w", err)
	}
	if len(stacks) == 0 {
		for _, st := range CanonicalTechStacks {
			if err := s.stacks.Create(ctx, &model.TechStack{StackID: st.StackID, Name: st.Name}); err != nil {
				return nil, fmt.Errorf("service/taxonomy: seeding tech stack %q: %w", st.Name, err)
			}
			res.TechStacks++
		}
	}

	s.logger.Info("taxonomy seeded",
		slog.Int("roles", res.Roles),
		slog.Int("techStacks", res.TechStacks),
	)
	return &res, nil
}
