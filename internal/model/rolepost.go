package model

import "time"

// TimestampLayout is the ISO-8601 layout, with millisecond precision and an
// explicit offset, used for RolePost.CreatedAt and Application.AppliedOn.
//
//	2024-11-03T14:05:09.123+05:30
const TimestampLayout = "2006-01-02T15:04:05.000-07:00"

// Timestamp formats t with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// RolePost is one project's set of open roles.
//
// TechStack must only leave the service layer when TechPublic is true; the
// response projections in internal/service enforce that, the model does not.
type RolePost struct {
	ID          string
	ProjectName string
	RepoLink    string
	TechStack   []string
	TechPublic  bool
	Roles       []string
	Address     string
	Description string
	Duration    string
	Deadline    string
	UserID      string
	CreatedAt   string
}
