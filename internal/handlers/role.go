package handlers

import (
	"net/http"

	"github.com/diewo77/fieldops-app/internal/httpx"
	"github.com/diewo77/fieldops-app/internal/services"
)

type RoleHandler struct {
	directory *services.Directory
}

func NewRoleHandler(directory *services.Directory) *RoleHandler {
	return &RoleHandler{directory: directory}
}

func (h *RoleHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/roles", h.list)
	mux.HandleFunc("POST /api/roles", h.create)
}

func (h *RoleHandler) list(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	roles, err := h.directory.ListRoles(r.Context(), claims.AccountID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *RoleHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	var req nameRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	role, err := h.directory.CreateRole(r.Context(), claims.AccountID, req.Name)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}
