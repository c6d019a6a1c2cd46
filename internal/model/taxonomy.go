package model

// Role is a canonical role name used to tag RolePosts.
type Role struct {
	ID     string
	RoleID string
	Name   string
}

// TechStack is a canonical technology used to tag RolePosts.
type TechStack struct {
	ID      string
	StackID string
	Name    string
}
