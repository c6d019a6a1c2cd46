package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sujiiiiit/collabhub-backend/internal/auth"
	"github.com/sujiiiiit/collabhub-backend/internal/service"
)

// RolePostHandler serves /api/rolepost.
type RolePostHandler struct {
	svc    *service.RolePostService
	logger *slog.Logger
}

func NewRolePostHandler(svc *service.RolePostService, logger *slog.Logger) *RolePostHandler {
	return &RolePostHandler{svc: svc, logger: logger}
}

type createRolePostResponse struct {
	Message string `json:"message"`
	RoleID  string `json:"roleId"`
}

// HandleCreate creates a role post.
//
// HTTP: POST /api/rolepost
// REQUEST BODY: {"pName": "...", "techStack": [...], "roles": [...], "userId": "...", ...}
//
// When the body has no userId and the request carries a session, the
// signed-in user becomes the owner.
func (h *RolePostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.RolePostInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.UserID == "" {
		if userID, ok := auth.UserIDFromContext(r.Context()); ok {
			in.UserID = userID
		}
	}

	id, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createRolePostResponse{
		Message: "Role created successfully",
		RoleID:  id,
	})
}

// HandleList returns one page of role posts.
//
// HTTP: GET /api/rolepost?page=2&userId=u1&techStack=Go,React&roles=Backend%20Developer
//
// page defaults to 1; non-numeric values are treated as 1. A number too
// large for int is clamped by Atoi and yields an empty page.
func (h *RolePostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		page = 1
	}

	posts, err := h.svc.List(r.Context(), service.RolePostQuery{
		Page:      page,
		UserID:    q.Get("userId"),
		TechStack: splitList(q.Get("techStack")),
		Roles:     splitList(q.Get("roles")),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleGet returns one role post.
//
// HTTP: GET /api/rolepost/id/{id}
func (h *RolePostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleListByUser returns the role posts owned by a user.
//
// HTTP: GET /api/rolepost/user/{userId}
func (h *RolePostHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListByUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleUpdate replaces a role post's editable fields.
//
// HTTP: PUT /api/rolepost/update/{id}
func (h *RolePostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.RolePostFields
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Update(r.Context(), r.PathValue("id"), in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Role post updated successfully"})
}

// splitList parses "a, b,,c" into [a b c].
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
