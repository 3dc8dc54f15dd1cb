package folders

import (
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

// RegisterRoutes attaches folder routes to an admin-guarded /organization group.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/folder/all", h.listAll)
}

func (h *Handler) listAll(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		respond.Error(c, http.StatusForbidden, "forbidden", "Invalid token.", nil)
		return
	}
	list, err := h.Svc.ListForOrganization(c.Request.Context(), identity.OrganizationID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list folders", nil)
		return
	}
	respond.OK(c, list)
}
