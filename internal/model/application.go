package model

import "strings"

// ApplicationStatus is the review state of an Application.
type ApplicationStatus string

// All statuses are lower-case. StatusPending is the initial value.
const (
	StatusPending  ApplicationStatus = "pending"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

// NormalizeStatus maps a stored status to the lower-case convention.
// Older documents were created with "Pending".
func NormalizeStatus(s string) ApplicationStatus {
	return ApplicationStatus(strings.ToLower(s))
}

// Resume is an uploaded PDF kept in memory and stored inline with the
// Application.
type Resume struct {
	Data        []byte `json:"data"`
	ContentType string `json:"contentType"`
	Filename    string `json:"filename"`
}

// Application is a user's submission against a RolePost.
//
// RolePostID is not checked against the rolePost collection. Resume is nil
// whenever the application was loaded without its payload.
type Application struct {
	ID         string
	Username   string
	CreatedBy  string
	RolePostID string
	Message    string
	Role       string
	Resume     *Resume
	AppliedOn  string
	Status     ApplicationStatus
}
