package debugapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-backend/internal/documents"
	"compliance-backend/internal/folders"
	"compliance-backend/internal/organizations"
	"compliance-backend/internal/sessions"
	"compliance-backend/internal/users"
)

func TestDumpAndReset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	h := &Handler{
		Orgs:      organizations.NewMemoryRepo(),
		Users:     users.NewMemoryRepo(),
		Folders:   folders.NewMemoryRepo(),
		Documents: documents.NewMemoryRepo(),
	}
	store := sessions.NewMemoryStore(time.Hour, nil)
	h.Sessions = store

	require.NoError(t, h.Orgs.Create(ctx, organizations.Organization{ID: "org-1", Name: "Demo"}))
	require.NoError(t, h.Users.Create(ctx, users.User{ID: "u1", Email: "a@example.com", PasswordHash: "secret-hash", OrganizationID: "org-1"}))
	token, err := store.Create(ctx, "u1")
	require.NoError(t, err)

	r := gin.New()
	h.RegisterRoutes(r.Group(""))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/dump", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, strings.Contains(resp.Body.String(), "secret-hash"))

	var body struct {
		Organizations []map[string]any `json:"organizations"`
		Users         []map[string]any `json:"users"`
		Documents     []map[string]any `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body.Organizations, 1)
	assert.Len(t, body.Users, 1)
	assert.NotNil(t, body.Documents)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/reset_database", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	orgs, err := h.Orgs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orgs)
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, sessions.ErrInvalidToken)
}
