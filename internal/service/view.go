package service

import "github.com/sujiiiiit/collabhub-backend/internal/model"

// techStackIfPublic is the one place the techPublic rule is applied. A nil
// pointer is dropped by omitempty; a pointer to an empty list is kept.
func techStackIfPublic(p *model.RolePost) *[]string {
	if !p.TechPublic {
		return nil
	}
	stack := p.TechStack
	if stack == nil {
		stack = []string{}
	}
	return &stack
}

// RolePostSummary is one entry of the paginated listing.
type RolePostSummary struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	TechPublic bool      `json:"techPublic"`
	TechStack  *[]string `json:"techStack,omitempty"`
	Roles      []string  `json:"roles"`
	Address    string    `json:"address"`
	CreatedAt  string    `json:"createdAt"`
}

func summaryOf(p *model.RolePost) RolePostSummary {
	return RolePostSummary{
		ID:         p.ID,
		UserID:     p.UserID,
		TechPublic: p.TechPublic,
		TechStack:  techStackIfPublic(p),
		Roles:      p.Roles,
		Address:    p.Address,
		CreatedAt:  p.CreatedAt,
	}
}

// RolePostDetail is the fetch-by-id projection.
type RolePostDetail struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ProjectName string    `json:"pName"`
	RepoLink    string    `json:"repoLink"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Roles       []string  `json:"roles"`
	TechPublic  bool      `json:"techPublic"`
	TechStack   *[]string `json:"techStack,omitempty"`
	Duration    string    `json:"duration"`
	Deadline    string    `json:"deadline"`
	CreatedAt   string    `json:"createdAt"`
}

func detailOf(p *model.RolePost) *RolePostDetail {
	return &RolePostDetail{
		ID:          p.ID,
		UserID:      p.UserID,
		ProjectName: p.ProjectName,
		RepoLink:    p.RepoLink,
		Description: p.Description,
		Address:     p.Address,
		Roles:       p.Roles,
		TechPublic:  p.TechPublic,
		TechStack:   techStackIfPublic(p),
		Duration:    p.Duration,
		Deadline:    p.Deadline,
		CreatedAt:   p.CreatedAt,
	}
}

// RolePostBrief is the per-owner listing; it never carries techStack.
type RolePostBrief struct {
	ID        string   `json:"id"`
	Roles     []string `json:"roles"`
	Deadline  string   `json:"deadline"`
	CreatedAt string   `json:"createdAt"`
}

// ApplicationView is every projection of an Application except the résumé
// fetch. It has no field for the résumé, so no listing can leak one.
type ApplicationView struct {
	ID         string                  `json:"id"`
	Username   string                  `json:"username"`
	RolePostID string                  `json:"rolePostId"`
	Message    string                  `json:"message"`
	AppliedOn  string                  `json:"appliedOn"`
	Status     model.ApplicationStatus `json:"status"`
	Role       string                  `json:"role"`
}

func applicationViewOf(a *model.Application) ApplicationView {
	return ApplicationView{
		ID:         a.ID,
		Username:   a.Username,
		RolePostID: a.RolePostID,
		Message:    a.Message,
		AppliedOn:  a.AppliedOn,
		Status:     a.Status,
		Role:       a.Role,
	}
}

// ResumeView is the only projection that includes the résumé.
type ResumeView struct {
	ID     string        `json:"id"`
	Resume *model.Resume `json:"resume"`
}

type RoleView struct {
	ID     string `json:"id"`
	RoleID string `json:"roleId"`
	Name   string `json:"name"`
}

type TechStackView struct {
	ID      string `json:"id"`
	StackID string `json:"stackId"`
	Name    string `json:"name"`
}

// UserSummary is an entry of GET /api/users.
type UserSummary struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// UserApplications is GET /api/users/{id}.
type UserApplications struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Applied  []string `json:"applied"`
}

// UserContact is GET /api/users/username/{username}. The id key is "_id"
// because that is what clients of the original endpoint read.
type UserContact struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
