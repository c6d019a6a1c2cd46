package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
)

func newTestRolePostService(t *testing.T) *RolePostService {
	t.Helper()
	svc := NewRolePostService(newTestStore(t).RolePosts, discardLogger())
	svc.now = fixedClock
	return svc
}

func sampleRolePost(userID string, techPublic bool) RolePostInput {
	return RolePostInput{
		RolePostFields: RolePostFields{
			ProjectName: "collabhub",
			RepoLink:    "https://github.com/example/collabhub",
			TechStack:   []string{"Go", "React"},
			TechPublic:  techPublic,
			Roles:       []string{"Backend Developer"},
			Address:     "Remote",
			Description: "matching collaborators",
			Duration:    "3 months",
			Deadline:    "2024-12-31",
		},
		UserID: userID,
	}
}

func TestRolePostCreate_StampsCreatedAt(t *testing.T) {
	svc := newTestRolePostService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, sampleRolePost("u1", true))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2024-11-03T14:05:09.123+05:30", got.CreatedAt)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "collabhub", got.ProjectName)
}

func TestRolePostCreate_Validation(t *testing.T) {
	svc := newTestRolePostService(t)

	tests := []struct {
		name  string
		input RolePostInput
		field string
	}{
		{"missing project name", RolePostInput{UserID: "u1"}, "pName"},
		{"missing owner", RolePostInput{RolePostFields: RolePostFields{ProjectName: "p"}}, "userId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			require.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestRolePost_TechStackHiddenWhenNotPublic(t *testing.T) {
	svc := newTestRolePostService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, sampleRolePost("u1", false))
	require.NoError(t, err)

	detail, err := svc.Get(ctx, id)
	require.NoError(t, err)
	raw, err := json.Marshal(detail)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "techStack")

	list, err := svc.List(ctx, RolePostQuery{Page: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	raw, err = json.Marshal(list[0])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "techStack")
}

func TestRolePost_TechStackShownWhenPublic(t *testing.T) {
	svc := newTestRolePostService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, sampleRolePost("u1", true))
	require.NoError(t, err)

	detail, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, detail.TechStack)
	assert.Equal(t, []string{"Go", "React"}, *detail.TechStack)
}

func TestRolePost_PublicEmptyStackStillSerialized(t *testing.T) {
	svc := newTestRolePostService(t)
	ctx := context.Background()

	in := sampleRolePost("u1", true)
	in.TechStack = nil
	id, err := svc.Create(ctx, in)
	require.NoError(t, err)

	detail, err := svc.Get(ctx, id)
	require.NoError(t, err)
	raw, err := json.Marshal(detail)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"techStack":[]`)
}

func TestRolePostList_Pagination(t *testing.T) {
	svc := newTestRolePostService(t)
	ctx := context.Background()

	ids := make([]string, 0, 65)
	for i := range 65 {
		in := sampleRolePost(fmt.Sprintf("u%d", i), true)
		id, err := svc.Create(ctx, in)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	page2, err := svc.List(ctx, RolePostQuery{Page: 2})
	require.NoError(t, err)
	require.Len(t, page2, PageSize)
	for i, p := range page2 {
		assert.Equal(t, ids[30+i], p.ID)
	}

	page3, err := svc.List(ctx, RolePostQuery{Page: 3})
	require.NoError(t, err)
	assert.Len(t, page3, 5)

	// Pages below 1 are served as page 1.
	page0, err := svc.List(ctx, RolePostQuery{Page: 0})
	require.NoError(t, err)
	require.Len(t, page0, PageSize)
	assert.Equal(t, ids[0], page0[0].ID)

	for _, page := range []int{10, math.MaxInt / PageSize, math.MaxInt/PageSize + 1, math.MaxInt} {
		empty, err := svc.List(ctx, RolePostQuery{Page: page})
		require.NoError(t, err, "page %d", page)
		assert.NotNil(t, empty, "page %d", page)
		assert.Empty(t, empty, "page %d", page)
	}
}

func TestRolePostList_Filters(t *testing.T) {
	svc := newTestRolePostService(t)
	ctx := context.Background()

	a := sampleRolePost("alice", true)
	a.TechStack = []string{"Go"}
	a.Roles = []string{"Backend Developer"}
	_, err := svc.Create(ctx, a)
	require.NoError(t, err)

	b := sampleRolePost("bob", true)
	b.TechStack = []string{"React"}
	b.Roles = []string{"Frontend Developer"}
	_, err = svc.Create(ctx, b)
	require.NoError(t, err)

	got, err := svc.List(ctx, RolePostQuery{TechStack: []string{"Rust", "React"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0].UserID)

	got, err = svc.List(ctx, RolePostQuery{UserID: "alice", Roles: []string{"Frontend Developer"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRolePostListByUser(t *testing.T) {
	svc := newTestRolePostService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, sampleRolePost("alice", true))
	require.NoError(t, err)

	briefs, err := svc.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, briefs, 1)
	assert.Equal(t, id, briefs[0].ID)
	assert.Equal(t, "2024-12-31", briefs[0].Deadline)

	_, err = svc.ListByUser(ctx, "nobody")
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "No role posts found for this user", err.Error())
}

func TestRolePostUpdate(t *testing.T) {
	svc := newTestRolePostService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, sampleRolePost("alice", false))
	require.NoError(t, err)

	err = svc.Update(ctx, id, RolePostFields{ProjectName: "renamed", TechPublic: true, TechStack: []string{"Rust"}})
	require.NoError(t, err)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.ProjectName)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "2024-11-03T14:05:09.123+05:30", got.CreatedAt)
	require.NotNil(t, got.TechStack)
	assert.Equal(t, []string{"Rust"}, *got.TechStack)

	err = svc.Update(ctx, "missing", RolePostFields{ProjectName: "x"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	// Update is a full replace: an empty body clears every editable field
	// but leaves the owner alone.
	require.NoError(t, svc.Update(ctx, id, RolePostFields{}))
	cleared, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, cleared.ProjectName)
	assert.False(t, cleared.TechPublic)
	assert.Nil(t, cleared.TechStack)
	assert.Equal(t, "alice", cleared.UserID)
}
