package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/fieldops-app/internal/config"
	"github.com/diewo77/fieldops-app/internal/db"
	"github.com/diewo77/fieldops-app/internal/storage"
)

func setupE2EApp(t *testing.T) *App {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:e2e_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(dbi); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Load()
	blobs := storage.NewMemoryBlobStore(cfg.App.BlobBase)
	return NewApp(dbi, cfg, blobs, zap.NewNop())
}

func doJSON(t *testing.T, app *App, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	var out map[string]any
	if rr.Body.Len() > 0 && rr.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response: %v (body=%s)", err, rr.Body.String())
		}
	}
	return rr, out
}

func TestSignupLoginAndScopedAccessE2E(t *testing.T) {
	app := setupE2EApp(t)

	rr, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email": "a@x.com", "password": "p", "firstName": "Ada", "lastName": "Lovelace",
		"accountName": "Acme", "companyName": "Acme Co",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	user := body["user"].(map[string]any)
	if user["role"] != "ADMIN" {
		t.Fatalf("expected ADMIN role got %v", user["role"])
	}
	signupAccountID := user["accountId"].(float64)

	rr, body = doJSON(t, app, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email": "a@x.com", "password": "p",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("signin: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
	token := body["token"].(string)
	loginUser := body["user"].(map[string]any)
	if loginUser["accountId"].(float64) != signupAccountID {
		t.Fatalf("login account mismatch: %v vs %v", loginUser["accountId"], signupAccountID)
	}
	if loginUser["role"] != "ADMIN" {
		t.Fatalf("expected ADMIN role on login got %v", loginUser["role"])
	}

	// No token, no data.
	rr, _ = doJSON(t, app, http.MethodGet, "/api/companies", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr2 := httptest.NewRecorder()
	app.ServeHTTP(rr2, req)
	if rr2.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d body=%s", rr2.Code, rr2.Body.String())
	}
	var companies []map[string]any
	if err := json.Unmarshal(rr2.Body.Bytes(), &companies); err != nil {
		t.Fatalf("decode companies: %v", err)
	}
	if len(companies) != 1 || companies[0]["name"] != "Acme Co" {
		t.Fatalf("expected the seed company, got %s", rr2.Body.String())
	}
}

func TestCustomFieldFlowE2E(t *testing.T) {
	app := setupE2EApp(t)

	rr, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email": "a@x.com", "password": "p", "accountName": "Acme",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup: %d body=%s", rr.Code, rr.Body.String())
	}
	token := body["token"].(string)
	userID := body["user"].(map[string]any)["id"].(float64)

	rr, body = doJSON(t, app, http.MethodPost, "/api/custom-fields", token, map[string]any{
		"name": "dob", "label": "Date of birth", "type": "DATE", "module": "USER", "required": false,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create field: %d body=%s", rr.Code, rr.Body.String())
	}
	fieldID := int(body["id"].(float64))

	// Attach a value through the user update path.
	rr, _ = doJSON(t, app, http.MethodPut, "/api/users/"+strconv.Itoa(int(userID)), token, map[string]any{
		"customFields": map[string]any{strconv.Itoa(fieldID): "1990-01-01"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update user: %d body=%s", rr.Code, rr.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr2 := httptest.NewRecorder()
	app.ServeHTTP(rr2, req)
	if rr2.Code != http.StatusOK {
		t.Fatalf("list users: %d", rr2.Code)
	}
	var users []struct {
		ID           float64 `json:"id"`
		CustomFields []struct {
			Value       string `json:"value"`
			CustomField struct {
				Name string `json:"name"`
			} `json:"customField"`
		} `json:"customFields"`
	}
	if err := json.Unmarshal(rr2.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v body=%s", err, rr2.Body.String())
	}
	if len(users) != 1 || len(users[0].CustomFields) != 1 {
		t.Fatalf("expected one user with one value, body=%s", rr2.Body.String())
	}
	if users[0].CustomFields[0].Value != "1990-01-01" || users[0].CustomFields[0].CustomField.Name != "dob" {
		t.Fatalf("unexpected decoration: %+v", users[0].CustomFields[0])
	}
}

func TestPresignE2E(t *testing.T) {
	app := setupE2EApp(t)

	rr, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email": "a@x.com", "password": "p",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup: %d", rr.Code)
	}
	token := body["token"].(string)

	rr, body = doJSON(t, app, http.MethodPost, "/api/upload/presign", token, map[string]any{
		"fileName": "logo.png", "fileType": "image/png",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("presign: %d body=%s", rr.Code, rr.Body.String())
	}
	if body["uploadUrl"] == "" || body["publicUrl"] == "" || body["fileName"] == "" {
		t.Fatalf("incomplete presign response: %v", body)
	}
}
