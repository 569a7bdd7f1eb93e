package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/fieldops-app/internal/apperr"
	"github.com/diewo77/fieldops-app/internal/auth"
	"github.com/diewo77/fieldops-app/internal/httpx"
	"github.com/diewo77/fieldops-app/internal/services"
)

// AuthHandler exposes signup and signin. These are the only two routes that
// run before the access gate.
type AuthHandler struct {
	directory *services.Directory
	tokens    *auth.TokenService
	log       *zap.Logger
}

func NewAuthHandler(directory *services.Directory, tokens *auth.TokenService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{directory: directory, tokens: tokens, log: log}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signup", h.signup)
	mux.HandleFunc("POST /api/auth/signin", h.signin)
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	AccountName string `json:"accountName"`
	CompanyName string `json:"companyName"`
}

type userPayload struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AccountID uint   `json:"accountId"`
}

type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    userPayload `json:"user"`
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	result, err := h.directory.RegisterTenant(r.Context(), services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        joinName(req.FirstName, req.LastName),
		AccountName: req.AccountName,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		h.logInternal("signup", err)
		httpx.Error(w, err)
		return
	}

	token, err := h.tokens.Issue(result.User.ID, result.Account.ID, result.Role.Name, 0)
	if err != nil {
		h.logInternal("signup_token", err)
		httpx.Error(w, apperr.ErrInternal)
		return
	}
	httpx.JSON(w, http.StatusCreated, authResponse{
		Message: "User created successfully",
		Token:   token,
		User: userPayload{
			ID:        result.User.ID,
			Email:     result.User.Email,
			Name:      result.User.Name,
			Role:      result.Role.Name,
			AccountID: result.Account.ID,
		},
	})
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	user, err := h.directory.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logInternal("signin", err)
		httpx.Error(w, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.AccountID, user.Role.Name, 0)
	if err != nil {
		h.logInternal("signin_token", err)
		httpx.Error(w, apperr.ErrInternal)
		return
	}
	httpx.JSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   token,
		User: userPayload{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role.Name,
			AccountID: user.AccountID,
		},
	})
}

func (h *AuthHandler) logInternal(op string, err error) {
	if errors.Is(err, apperr.ErrInternal) {
		h.log.Error("auth operation failed", zap.String("op", op), zap.Error(err))
	}
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// mustClaims returns the verified claims; the gate guarantees presence on
// every route registered behind RequireAuth.
func mustClaims(r *http.Request) *auth.Claims {
	claims, _ := auth.ClaimsFromContext(r.Context())
	return claims
}
