package handlers

import (
	"net/http"

	"github.com/diewo77/fieldops-app/internal/httpx"
	"github.com/diewo77/fieldops-app/internal/services"
)

type TeamHandler struct {
	directory *services.Directory
}

func NewTeamHandler(directory *services.Directory) *TeamHandler {
	return &TeamHandler{directory: directory}
}

func (h *TeamHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/teams", h.list)
	mux.HandleFunc("POST /api/teams", h.create)
}

func (h *TeamHandler) list(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	teams, err := h.directory.ListTeams(r.Context(), claims.AccountID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, teams)
}

type teamRequest struct {
	Name       string `json:"name"`
	CompanyIDs []uint `json:"companyIds"`
}

func (h *TeamHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	var req teamRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	team, err := h.directory.CreateTeam(r.Context(), claims.AccountID, req.Name, req.CompanyIDs)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, team)
}
