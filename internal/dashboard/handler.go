package dashboard

import (
	"github.com/gin-gonic/gin"

	"compliance-backend/internal/shared/server/respond"
)

// Overview is the admin dashboard summary.
type Overview struct {
	HoursSaved                int `json:"hours_saved"`
	DocumentationCompleteness int `json:"documentation_completeness"`
	StaffDocumentationStatus  int `json:"staff_documentation_status"`
	TrainingComplianceStatus  int `json:"training_compliance_status"`
	BackgroundCheckStatus     int `json:"background_check_status"`
}

// TODO: derive these from document statuses once the dashboard design is final.
var fixedOverview = Overview{
	HoursSaved:                3,
	DocumentationCompleteness: 50,
	StaffDocumentationStatus:  90,
	TrainingComplianceStatus:  30,
	BackgroundCheckStatus:     10,
}

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

// RegisterRoutes attaches dashboard routes to an admin-guarded /organization group.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/dashboard/overview", h.overview)
}

func (h *Handler) overview(c *gin.Context) {
	respond.OK(c, fixedOverview)
}
