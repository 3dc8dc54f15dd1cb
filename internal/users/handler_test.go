package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	r := gin.New()
	NewHandler(f.svc).RegisterRoutes(r.Group(""), nil)
	return r, f
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRegisterAdminHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := postJSON(r, "/registration/admin", adminRequest("alice@example.com"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Status bool           `json:"status"`
		User   map[string]any `json:"user"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Status {
		t.Fatalf("expected status true")
	}
	for _, key := range []string{"id", "first_name", "last_name", "email", "role", "permission", "organization_id"} {
		if _, ok := body.User[key]; !ok {
			t.Fatalf("missing user field %s", key)
		}
	}
	if _, ok := body.User["password_hash"]; ok {
		t.Fatalf("password hash must not be exposed")
	}
}

func TestRegisterMismatchedPasswordsCreatesNoUser(t *testing.T) {
	r, f := newTestRouter(t)

	req := adminRequest("alice@example.com")
	req.ConfirmPassword = "nope"
	resp := postJSON(r, "/registration/admin", req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body.Error.Message != "Passwords do not match" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
	if _, err := f.users.GetByEmail(context.Background(), "alice@example.com"); err != ErrNotFound {
		t.Fatalf("expected no user, got %v", err)
	}
}

func TestRegisterStaffUnknownOrganization(t *testing.T) {
	r, f := newTestRouter(t)

	resp := postJSON(r, "/registration/staff", staffRequest("max@example.com", "missing-org"))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if _, err := f.users.GetByEmail(context.Background(), "max@example.com"); err != ErrNotFound {
		t.Fatalf("expected no user, got %v", err)
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	r, _ := newTestRouter(t)

	if resp := postJSON(r, "/registration/admin", adminRequest("alice@example.com")); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if resp := postJSON(r, "/registration/admin", adminRequest("alice@example.com")); resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestLoginHandler(t *testing.T) {
	r, _ := newTestRouter(t)
	postJSON(r, "/registration/admin", adminRequest("alice@example.com"))

	resp := postJSON(r, "/auth/login", LoginRequest{Email: "ghost@example.com", Password: "x"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unknown email expected 404, got %d", resp.Code)
	}

	resp = postJSON(r, "/auth/login", LoginRequest{Email: "alice@example.com", Password: "wrong"})
	if resp.Code != http.StatusOK {
		t.Fatalf("wrong password expected 200, got %d", resp.Code)
	}
	var failed map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &failed)
	if failed["status"] != false {
		t.Fatalf("expected status false, got %v", failed["status"])
	}
	if _, ok := failed["session_token"]; ok {
		t.Fatalf("wrong password must not return a token")
	}

	resp = postJSON(r, "/auth/login", LoginRequest{Email: "alice@example.com", Password: "password"})
	var ok struct {
		Status       bool  `json:"status"`
		SessionToken int64 `json:"session_token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &ok); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !ok.Status || ok.SessionToken <= 0 {
		t.Fatalf("expected token, got %+v", ok)
	}
}
