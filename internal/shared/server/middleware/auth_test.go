package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type stubResolver map[int64]Identity

func (s stubResolver) ResolveToken(_ context.Context, token int64) (Identity, error) {
	identity, ok := s[token]
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	return identity, nil
}

func newGuardRouter(resolver IdentityResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/staff", RequireStaff(resolver), func(c *gin.Context) {
		identity, _ := IdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID})
	})
	r.GET("/admin", RequireAdmin(resolver), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestGuards(t *testing.T) {
	resolver := stubResolver{
		11: {UserID: "admin-1", OrganizationID: "org-1", Permission: PermissionAdmin},
		22: {UserID: "staff-1", OrganizationID: "org-1", Permission: PermissionStaff},
	}
	router := newGuardRouter(resolver)

	cases := []struct {
		name    string
		path    string
		token   string
		status  int
		message string
	}{
		{name: "staff ok", path: "/staff", token: "22", status: http.StatusOK},
		{name: "admin on staff route", path: "/staff", token: "11", status: http.StatusOK},
		{name: "missing token", path: "/staff", token: "", status: http.StatusForbidden, message: "Invalid token."},
		{name: "malformed token", path: "/staff", token: "abc", status: http.StatusForbidden, message: "Invalid token."},
		{name: "negative token", path: "/staff", token: "-5", status: http.StatusForbidden, message: "Invalid token."},
		{name: "unknown token", path: "/admin", token: "99", status: http.StatusForbidden, message: "Invalid token."},
		{name: "staff on admin route", path: "/admin", token: "22", status: http.StatusForbidden, message: "User does not have admin privileges"},
		{name: "admin ok", path: "/admin", token: "11", status: http.StatusOK},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.token != "" {
				req.Header.Set(TokenHeader, tc.token)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
			if tc.message == "" {
				return
			}
			var body struct {
				Error struct {
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Message != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, body.Error.Message)
			}
		})
	}
}

func TestRequireStaffStoresIdentity(t *testing.T) {
	router := newGuardRouter(stubResolver{7: {UserID: "u-7", Permission: PermissionStaff}})

	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set(TokenHeader, "7")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["user_id"] != "u-7" {
		t.Fatalf("expected u-7, got %q", body["user_id"])
	}
}
