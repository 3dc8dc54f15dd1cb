package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"compliance-backend/internal/debugapi"
	"compliance-backend/internal/documents"
	"compliance-backend/internal/folders"
	"compliance-backend/internal/organizations"
	"compliance-backend/internal/shared/config"
	"compliance-backend/internal/users"
)

func debugHandler() *debugapi.Handler {
	return &debugapi.Handler{
		Orgs:      organizations.NewMemoryRepo(),
		Users:     users.NewMemoryRepo(),
		Folders:   folders.NewMemoryRepo(),
		Documents: documents.NewMemoryRepo(),
	}
}

func TestDebugRoutesOnlyInDev(t *testing.T) {
	cases := []struct {
		env  string
		want int
	}{
		{env: "dev", want: http.StatusOK},
		{env: "local", want: http.StatusOK},
		{env: "staging", want: http.StatusNotFound},
		{env: "production", want: http.StatusNotFound},
	}
	for _, tc := range cases {
		r := NewRouter(RouterDeps{Config: config.Config{Env: tc.env}, DebugHandler: debugHandler()})
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/dump", nil))
		if resp.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.env, tc.want, resp.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	r := NewRouter(RouterDeps{Config: config.Config{Env: "dev"}})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.Code)
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
