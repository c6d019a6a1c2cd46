package handler

import (
	"log/slog"
	"net/http"

	"github.com/sujiiiiit/collabhub-backend/internal/service"
)

// TaxonomyHandler serves /api/roles and /api/techstack. The role write
// endpoints are mounted behind auth.RequireAdmin.
type TaxonomyHandler struct {
	svc    *service.TaxonomyService
	logger *slog.Logger
}

func NewTaxonomyHandler(svc *service.TaxonomyService, logger *slog.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{svc: svc, logger: logger}
}

func (h *TaxonomyHandler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.ListRoles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

func (h *TaxonomyHandler) HandleGetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.svc.GetRole(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

// HandleCreateRole answers 201 with the stored role.
func (h *TaxonomyHandler) HandleCreateRole(w http.ResponseWriter, r *http.Request) {
	var in service.RoleInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	role, err := h.svc.CreateRole(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

func (h *TaxonomyHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var in service.RoleInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.UpdateRole(r.Context(), r.PathValue("id"), in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Role updated successfully"})
}

func (h *TaxonomyHandler) HandleDeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRole(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Role deleted successfully"})
}

func (h *TaxonomyHandler) HandleListTechStacks(w http.ResponseWriter, r *http.Request) {
	stacks, err := h.svc.ListTechStacks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stacks)
}
