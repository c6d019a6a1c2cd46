package handler

import (
	"log/slog"
	"net/http"

	"github.com/sujiiiiit/collabhub-backend/internal/middleware"
	"github.com/sujiiiiit/collabhub-backend/internal/service"
)

// ApplicationHandler serves /api/application.
//
// HandleSubmit must be mounted behind middleware.ResumeIntake; it reads the
// accepted file from the request context and never parses the upload itself.
type ApplicationHandler struct {
	svc    *service.ApplicationService
	logger *slog.Logger
}

func NewApplicationHandler(svc *service.ApplicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, logger: logger}
}

type submitResponse struct {
	Message       string   `json:"message"`
	ApplicationID string   `json:"applicationId"`
	Applied       []string `json:"applied"`
}

// HandleSubmit stores a new application.
//
// HTTP: POST /api/application/submit
// REQUEST: multipart/form-data with message, username, rolePostId, role,
// createdBy and a "resume" PDF.
func (h *ApplicationHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Submit(r.Context(), service.SubmitInput{
		Username:   r.FormValue("username"),
		RolePostID: r.FormValue("rolePostId"),
		CreatedBy:  r.FormValue("createdBy"),
		Message:    r.FormValue("message"),
		Role:       r.FormValue("role"),
		Resume:     middleware.ResumeFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{
		Message:       "Application submitted successfully",
		ApplicationID: res.ApplicationID,
		Applied:       res.Applied,
	})
}

// HandleGet returns an application without its résumé.
//
// HTTP: GET /api/application/{id}
func (h *ApplicationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	app, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// HandleResume returns {id, resume}. This is the only endpoint that sends
// résumé bytes.
//
// HTTP: GET /api/application/resume/{id}
func (h *ApplicationHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	resume, err := h.svc.GetResume(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resume)
}

// HandleCheck reports whether a user has applied to a role post.
//
// HTTP: GET /api/application/check/{username}/{rolePostId}
func (h *ApplicationHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	applied, err := h.svc.HasApplied(r.Context(), r.PathValue("username"), r.PathValue("rolePostId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

// HandleListByRolePost lists applications whose rolePostId starts with the
// path value.
//
// HTTP: GET /api/application/rolepost/{rolePostId}
func (h *ApplicationHandler) HandleListByRolePost(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.ListByRolePost(r.Context(), r.PathValue("rolePostId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// HandleListByCreator lists applications to role posts created by a user.
//
// HTTP: GET /api/application/rolepost/user/{userId}
func (h *ApplicationHandler) HandleListByCreator(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.ListByCreator(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus sets an application's status.
//
// HTTP: PUT /api/application/status/{id}
// REQUEST BODY: {"status": "accepted" | "rejected" | "pending"}
func (h *ApplicationHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Application status updated successfully"})
}
