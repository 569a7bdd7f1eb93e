package handlers

import (
	"net/http"

	"github.com/diewo77/fieldops-app/internal/httpx"
	"github.com/diewo77/fieldops-app/internal/services"
)

type CompanyHandler struct {
	directory *services.Directory
}

func NewCompanyHandler(directory *services.Directory) *CompanyHandler {
	return &CompanyHandler{directory: directory}
}

func (h *CompanyHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/companies", h.list)
	mux.HandleFunc("POST /api/companies", h.create)
}

func (h *CompanyHandler) list(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	companies, err := h.directory.ListCompanies(r.Context(), claims.AccountID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, companies)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *CompanyHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	var req nameRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	company, err := h.directory.CreateCompany(r.Context(), claims.AccountID, req.Name)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, company)
}
