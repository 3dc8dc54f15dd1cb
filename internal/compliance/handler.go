package compliance

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"compliance-backend/internal/shared/server/middleware"
	"compliance-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches compliance routes to an admin-guarded /organization group.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/compliance-folders", h.folders)
	admin.GET("/folder/:folder_id", h.folderDocuments)
}

func (h *Handler) folders(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	list, err := h.Svc.FolderSummaries(c.Request.Context(), identity.OrganizationID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load compliance folders", nil)
		return
	}
	respond.OK(c, gin.H{"folders": list})
}

func (h *Handler) folderDocuments(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	docs, err := h.Svc.FolderDocuments(c.Request.Context(), identity.OrganizationID, c.Param("folder_id"))
	if err != nil {
		if errors.Is(err, ErrFolderNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Folder not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list folder documents", nil)
		return
	}
	respond.OK(c, docs)
}
