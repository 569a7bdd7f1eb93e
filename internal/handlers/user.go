package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/diewo77/fieldops-app/internal/apperr"
	"github.com/diewo77/fieldops-app/internal/httpx"
	"github.com/diewo77/fieldops-app/internal/models"
	"github.com/diewo77/fieldops-app/internal/services"
)

type UserHandler struct {
	directory *services.Directory
	fields    *services.CustomFields
	log       *zap.Logger
}

func NewUserHandler(directory *services.Directory, fields *services.CustomFields, log *zap.Logger) *UserHandler {
	return &UserHandler{directory: directory, fields: fields, log: log}
}

func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", h.list)
	mux.HandleFunc("POST /api/users", h.create)
	mux.HandleFunc("PUT /api/users/{id}", h.update)
	mux.HandleFunc("DELETE /api/users/{id}", h.delete)
}

type userRequest struct {
	Email      string       `json:"email"`
	Password   string       `json:"password"`
	FirstName  string       `json:"firstName"`
	LastName   string       `json:"lastName"`
	Name       string       `json:"name"`
	RoleID     uint         `json:"roleId"`
	CompanyIDs []uint       `json:"companyIds"`
	TeamIDs    []uint       `json:"teamIds"`
	Custom     map[uint]any `json:"customFields"`
}

func (r userRequest) fullName() string {
	if r.Name != "" {
		return r.Name
	}
	return joinName(r.FirstName, r.LastName)
}

type userWithFields struct {
	models.User
	CustomFields []models.CustomFieldValue `json:"customFields"`
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	users, err := h.directory.ListUsers(r.Context(), claims.AccountID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	out := make([]userWithFields, 0, len(users))
	for _, user := range users {
		values, err := h.fields.GetValues(r.Context(), claims.AccountID, user.ID)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		out = append(out, userWithFields{User: user, CustomFields: values})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	var req userRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	user, err := h.directory.CreateUser(r.Context(), claims.AccountID, services.UserInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.fullName(),
		RoleID:     req.RoleID,
		CompanyIDs: req.CompanyIDs,
		TeamIDs:    req.TeamIDs,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.setCustom(r, claims.AccountID, user.ID, req.Custom); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	userID, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req userRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	user, err := h.directory.UpdateUser(r.Context(), claims.AccountID, userID, services.UserInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.fullName(),
		RoleID:     req.RoleID,
		CompanyIDs: req.CompanyIDs,
		TeamIDs:    req.TeamIDs,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.setCustom(r, claims.AccountID, user.ID, req.Custom); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	userID, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.directory.DeleteUser(r.Context(), claims.AccountID, userID); err != nil {
		if errors.Is(err, apperr.ErrInternal) {
			h.log.Error("delete user failed", zap.Uint("userId", userID), zap.Error(err))
		}
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) setCustom(r *http.Request, accountID, entityID uint, raw map[uint]any) error {
	if len(raw) == 0 {
		return nil
	}
	return h.fields.SetValues(r.Context(), accountID, entityID, stringifyFields(raw))
}

// stringifyFields stores every raw value as its string representation; the
// declared field type is not enforced here.
func stringifyFields(raw map[uint]any) map[uint]string {
	out := make(map[uint]string, len(raw))
	for id, v := range raw {
		out[id] = fmt.Sprint(v)
	}
	return out
}

func pathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
