package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/fieldops-app/internal/httpx"
	"github.com/diewo77/fieldops-app/internal/models"
	"github.com/diewo77/fieldops-app/internal/services"
)

type SiteHandler struct {
	directory *services.Directory
	fields    *services.CustomFields
	log       *zap.Logger
}

func NewSiteHandler(directory *services.Directory, fields *services.CustomFields, log *zap.Logger) *SiteHandler {
	return &SiteHandler{directory: directory, fields: fields, log: log}
}

func (h *SiteHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sites", h.listAll)
	mux.HandleFunc("GET /api/companies/{companyId}/sites", h.listByCompany)
	mux.HandleFunc("POST /api/companies/{companyId}/sites", h.create)
}

type siteRequest struct {
	Name           string           `json:"name"`
	Address        models.Address   `json:"address"`
	BillingAddress models.Address   `json:"billingAddress"`
	BillingContact models.Contact   `json:"billingContact"`
	PrimaryContact models.Contact   `json:"primaryContact"`
	PublicNotes    string           `json:"publicNotes"`
	PrivateNotes   string           `json:"privateNotes"`
	Zone           string           `json:"zone"`
	STCZone        string           `json:"stcZone"`
	VEECZone       string           `json:"veecZone"`
	PreferredTechs []string         `json:"preferredTechs"`
	Customers      []string         `json:"customers"`
	Rates          models.SiteRates `json:"rates"`
	Archived       bool             `json:"archived"`
	Custom         map[uint]any     `json:"customFields"`
}

type siteWithFields struct {
	models.Site
	CustomFields []models.CustomFieldValue `json:"customFields"`
}

func (h *SiteHandler) listAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, nil)
}

func (h *SiteHandler) listByCompany(w http.ResponseWriter, r *http.Request) {
	companyID, ok := pathID(r, "companyId")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_company_id", nil)
		return
	}
	h.list(w, r, &companyID)
}

func (h *SiteHandler) list(w http.ResponseWriter, r *http.Request, companyID *uint) {
	claims := mustClaims(r)
	sites, err := h.directory.ListSites(r.Context(), claims.AccountID, companyID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	out := make([]siteWithFields, 0, len(sites))
	for _, site := range sites {
		values, err := h.fields.GetValues(r.Context(), claims.AccountID, site.ID)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		out = append(out, siteWithFields{Site: site, CustomFields: values})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *SiteHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	companyID, ok := pathID(r, "companyId")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_company_id", nil)
		return
	}
	var req siteRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	site, err := h.directory.CreateSite(r.Context(), claims.AccountID, companyID, services.SiteInput{
		Name:           req.Name,
		Address:        req.Address,
		BillingAddress: req.BillingAddress,
		BillingContact: req.BillingContact,
		PrimaryContact: req.PrimaryContact,
		PublicNotes:    req.PublicNotes,
		PrivateNotes:   req.PrivateNotes,
		Zone:           req.Zone,
		STCZone:        req.STCZone,
		VEECZone:       req.VEECZone,
		PreferredTechs: req.PreferredTechs,
		Customers:      req.Customers,
		Rates:          req.Rates,
		Archived:       req.Archived,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if len(req.Custom) > 0 {
		if err := h.fields.SetValues(r.Context(), claims.AccountID, site.ID, stringifyFields(req.Custom)); err != nil {
			httpx.Error(w, err)
			return
		}
	}
	httpx.JSON(w, http.StatusCreated, site)
}
