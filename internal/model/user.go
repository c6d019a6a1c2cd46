// Package model defines the data structures used throughout the application.
// Models are storage-agnostic: identifiers are plain strings and each
// repository backend maps them to its own key type.
package model

// User represents an account created by the GitHub OAuth callback.
//
// GitHubID is kept as a string because that is how the provider identity has
// always been stored in the users collection.
//
// AccessToken holds the provider token exactly as stored. The auth service
// seals it before writing and opens it before returning it to the owner, so
// repositories never see a plaintext token.
//
// Applied lists Application ids in submission order.
type User struct {
	ID               string   `json:"_id"`
	Username         string   `json:"username"`
	Email            string   `json:"email"`
	GitHubID         string   `json:"githubId"`
	AccessToken      string   `json:"accessToken"`
	ApplicationCount int      `json:"applicationCount"`
	Applied          []string `json:"applied"`
}

// EmailPlaceholder is stored when the provider withholds every email address.
const EmailPlaceholder = "Private"
