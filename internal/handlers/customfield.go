package handlers

import (
	"net/http"

	"github.com/diewo77/fieldops-app/internal/httpx"
	"github.com/diewo77/fieldops-app/internal/services"
)

type CustomFieldHandler struct {
	fields *services.CustomFields
}

func NewCustomFieldHandler(fields *services.CustomFields) *CustomFieldHandler {
	return &CustomFieldHandler{fields: fields}
}

func (h *CustomFieldHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/custom-fields", h.list)
	mux.HandleFunc("POST /api/custom-fields", h.create)
	mux.HandleFunc("DELETE /api/custom-fields/{id}", h.delete)
}

func (h *CustomFieldHandler) list(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	module := r.URL.Query().Get("module")
	fields, err := h.fields.ListFields(r.Context(), claims.AccountID, module)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fields)
}

type customFieldRequest struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Module   string   `json:"module"`
	Options  []string `json:"options"`
	Required bool     `json:"required"`
}

func (h *CustomFieldHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	var req customFieldRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	field, err := h.fields.DefineField(r.Context(), claims.AccountID, services.FieldInput{
		Name:     req.Name,
		Label:    req.Label,
		Type:     req.Type,
		Module:   req.Module,
		Options:  req.Options,
		Required: req.Required,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, field)
}

func (h *CustomFieldHandler) delete(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	fieldID, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.fields.DeleteField(r.Context(), claims.AccountID, fieldID); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
