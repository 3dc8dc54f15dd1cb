package debugapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"compliance-backend/internal/documents"
	"compliance-backend/internal/folders"
	"compliance-backend/internal/organizations"
	"compliance-backend/internal/shared/server/respond"
	"compliance-backend/internal/shared/telemetry"
	"compliance-backend/internal/users"
)

// Resetter wipes a backing store.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler serves database inspection routes for development environments.
type Handler struct {
	Orgs      organizations.Repo
	Users     users.Repo
	Folders   folders.Repo
	Documents documents.Repo
	Sessions  Resetter
}

type dump struct {
	Organizations []organizations.Organization `json:"organizations"`
	Users         []users.Profile              `json:"users"`
	Folders       []folders.Folder             `json:"folders"`
	Documents     []documents.Document         `json:"documents"`
}

// RegisterRoutes attaches /dump and /reset_database. Callers gate this on ENV.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dump", h.dump)
	rg.GET("/reset_database", h.reset)
}

func (h *Handler) dump(c *gin.Context) {
	ctx := c.Request.Context()
	orgs, err := h.Orgs.List(ctx)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list organizations", nil)
		return
	}
	userList, err := h.Users.List(ctx)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list users", nil)
		return
	}
	folderList, err := h.Folders.List(ctx)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list folders", nil)
		return
	}
	docs, err := h.Documents.List(ctx)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	out := dump{
		Organizations: nonNil(orgs),
		Users:         make([]users.Profile, 0, len(userList)),
		Folders:       nonNil(folderList),
		Documents:     nonNil(docs),
	}
	for _, u := range userList {
		out.Users = append(out.Users, u.Profile())
	}
	respond.OK(c, out)
}

func (h *Handler) reset(c *gin.Context) {
	ctx := c.Request.Context()
	for _, r := range []Resetter{h.Documents, h.Folders, h.Users, h.Orgs, h.Sessions} {
		if r == nil {
			continue
		}
		if err := r.Reset(ctx); err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reset database", nil)
			return
		}
	}
	telemetry.Warn("debug.reset_database", map[string]any{"request_id": c.GetString("requestId")})
	respond.OK(c, gin.H{"status": true})
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
