package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
	"github.com/sujiiiiit/collabhub-backend/internal/model"
)

// newTestDB opens a fresh in-memory database that is closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, u *UserDB, githubID, username string) *model.User {
	t.Helper()
	user := &model.User{
		GitHubID:    githubID,
		Username:    username,
		Email:       username + "@example.com",
		AccessToken: "gho_" + username,
	}
	if err := u.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestUserCreate(t *testing.T) {
	u := newTestDB(t).Users()

	user := &model.User{GitHubID: "12345", Username: "octocat", Email: "octo@example.com"}
	if err := u.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}

	found, err := u.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.ApplicationCount != 0 {
		t.Errorf("ApplicationCount = %d, want 0", found.ApplicationCount)
	}
	if found.Applied == nil || len(found.Applied) != 0 {
		t.Errorf("Applied = %v, want empty non-nil slice", found.Applied)
	}
}

func TestUserCreate_DuplicateGitHubID(t *testing.T) {
	u := newTestDB(t).Users()
	createTestUser(t, u, "99999", "firstuser")

	err := u.Create(context.Background(), &model.User{GitHubID: "99999", Username: "seconduser"})
	if err == nil {
		t.Fatal("Create() should have returned an error for duplicate github_id")
	}
}

func TestUserLookups(t *testing.T) {
	u := newTestDB(t).Users()
	created := createTestUser(t, u, "111", "lookup_user")
	ctx := context.Background()

	byGitHub, err := u.GetByGitHubID(ctx, "111")
	if err != nil {
		t.Fatalf("GetByGitHubID() error = %v", err)
	}
	if byGitHub.ID != created.ID {
		t.Errorf("GetByGitHubID().ID = %q, want %q", byGitHub.ID, created.ID)
	}

	byName, err := u.GetByUsername(ctx, "lookup_user")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if byName.Email != "lookup_user@example.com" {
		t.Errorf("Email = %q, want %q", byName.Email, "lookup_user@example.com")
	}
}

func TestUserGet_NotFound(t *testing.T) {
	u := newTestDB(t).Users()
	ctx := context.Background()

	if _, err := u.GetByID(ctx, "nonexistent-id"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if _, err := u.GetByGitHubID(ctx, "0"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByGitHubID() error = %v, want ErrNotFound", err)
	}
	if _, err := u.GetByUsername(ctx, "nobody"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrNotFound", err)
	}
}

func TestUserUpdateAccessToken(t *testing.T) {
	u := newTestDB(t).Users()
	user := createTestUser(t, u, "222", "token_user")
	ctx := context.Background()

	if err := u.UpdateAccessToken(ctx, user.ID, "gho_new"); err != nil {
		t.Fatalf("UpdateAccessToken() error = %v", err)
	}
	found, _ := u.GetByID(ctx, user.ID)
	if found.AccessToken != "gho_new" {
		t.Errorf("AccessToken = %q, want %q", found.AccessToken, "gho_new")
	}

	if err := u.UpdateAccessToken(ctx, "missing", "x"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateAccessToken(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserList_InsertionOrder(t *testing.T) {
	u := newTestDB(t).Users()
	createTestUser(t, u, "1", "alpha")
	createTestUser(t, u, "2", "bravo")
	createTestUser(t, u, "3", "charlie")

	users, err := u.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("List() returned %d users, want 3", len(users))
	}
	for i, want := range []string{"alpha", "bravo", "charlie"} {
		if users[i].Username != want {
			t.Errorf("users[%d].Username = %q, want %q", i, users[i].Username, want)
		}
	}
}
