package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujiiiiit/collabhub-backend/internal/apperror"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation",
			err:        apperror.ValidationFailed("status", "Invalid status"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"validation_error","message":"Invalid status"}`,
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("service/application: getting x: %w", apperror.NotFound("application", "x")),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"not_found","message":"application not found with id x"}`,
		},
		{
			name:       "unauthenticated",
			err:        apperror.Unauthenticated(),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"unauthenticated","message":"Not authenticated"}`,
		},
		{
			name:       "forbidden",
			err:        apperror.Forbidden("Admin access required"),
			wantStatus: http.StatusForbidden,
			wantBody:   `{"error":"forbidden","message":"Admin access required"}`,
		},
		{
			name:       "upstream timeout",
			err:        apperror.UpstreamTimeout("GitHub did not respond in time", nil),
			wantStatus: http.StatusGatewayTimeout,
			wantBody:   `{"error":"upstream_timeout","message":"GitHub did not respond in time"}`,
		},
		{
			name:       "upstream failure hides the message",
			err:        apperror.Upstream("GitHub returned 502", errors.New("bad gateway")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal_error","message":"An internal error occurred"}`,
		},
		{
			name:       "plain error hides the message",
			err:        errors.New("sqlite: no such table: users"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal_error","message":"An internal error occurred"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestDecodeJSON_Invalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	var dst map[string]any

	err := decodeJSON(req, &dst)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Equal(t, "Invalid JSON body", err.Error())
}

func TestWriteRawJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeRawJSON(rec, http.StatusOK, []byte(`[{"id":1}]`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `[{"id":1}]`, rec.Body.String())
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , ,"))
	assert.Equal(t, []string{"Go"}, splitList("Go"))
	assert.Equal(t, []string{"Go", "Rust", "React"}, splitList("Go, Rust,,React "))
}
