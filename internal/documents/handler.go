package documents

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"compliance-backend/internal/shared/server/middleware"
	"compliance-backend/internal/shared/server/respond"
)

const defaultMaxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
	// MaxUploadBytes caps multipart uploads; zero means 10MB.
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes. Both groups are rooted at /organization.
func (h *Handler) RegisterRoutes(staff, admin *gin.RouterGroup) {
	staff.POST("/document/upload_document", h.upload)
	admin.GET("/document/all", h.listAll)
	admin.GET("/document/:document_id", h.get)
	admin.POST("/document/:document_id/resume", h.resume)
}

func (h *Handler) upload(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		respond.Error(c, http.StatusForbidden, "forbidden", "Invalid token.", nil)
		return
	}

	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name is required", nil)
		return
	}
	docType := Type(strings.TrimSpace(c.Query("document_type")))
	if !docType.Valid() {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document_type", nil)
		return
	}

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadSize
	}
	// The extra MiB leaves room for multipart framing around a file at the limit.
	maxBody := limit + (1 << 20)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || c.Request.ContentLength > maxBody {
			respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "file exceeds maximum upload size", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is empty", nil)
		return
	}
	if fileHeader.Size > limit {
		respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "file exceeds maximum upload size", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	res, err := h.Svc.Upload(c.Request.Context(), UploadInput{
		OrganizationID: identity.OrganizationID,
		UserID:         identity.UserID,
		Name:           name,
		DocumentType:   docType,
		Body:           file,
	})
	if err != nil {
		writePipelineError(c, err)
		return
	}

	c.Set(middleware.DocumentIDKey, res.Document.ID)
	c.Set(middleware.StageTransitionKey, string(StagePending)+"->"+string(res.Document.Stage))
	respond.JSON(c, http.StatusCreated, toUploadResponse(res))
}

func (h *Handler) resume(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	documentID := c.Param("document_id")
	c.Set(middleware.DocumentIDKey, documentID)

	before, err := h.Svc.GetInOrganization(c.Request.Context(), identity.OrganizationID, documentID)
	if err != nil {
		writePipelineError(c, err)
		return
	}
	res, err := h.Svc.Resume(c.Request.Context(), identity.OrganizationID, documentID)
	if err != nil {
		writePipelineError(c, err)
		return
	}

	c.Set(middleware.StageTransitionKey, string(before.Stage)+"->"+string(res.Document.Stage))
	respond.OK(c, toUploadResponse(res))
}

func (h *Handler) listAll(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	docs, err := h.Svc.ListForOrganization(c.Request.Context(), identity.OrganizationID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}
	respond.OK(c, docs)
}

func (h *Handler) get(c *gin.Context) {
	identity, _ := middleware.IdentityFromContext(c)
	documentID := c.Param("document_id")
	c.Set(middleware.DocumentIDKey, documentID)

	doc, err := h.Svc.GetInOrganization(c.Request.Context(), identity.OrganizationID, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		return
	}
	respond.OK(c, doc)
}

func writePipelineError(c *gin.Context, err error) {
	var pipeErr *PipelineError
	switch {
	case errors.Is(err, ErrStageConflict):
		respond.Error(c, http.StatusConflict, "conflict", "Document is already being processed", nil)
	case errors.As(err, &pipeErr):
		c.Set(middleware.DocumentIDKey, pipeErr.DocumentID)
		c.Set(middleware.StageTransitionKey, "->"+string(StageFailed))
		status, code := http.StatusBadGateway, "upstream_error"
		if errors.Is(pipeErr.Err, ErrInvalidInput) {
			status, code = http.StatusBadRequest, "validation_error"
		}
		respond.Error(c, status, code, "document processing failed", failureDetails{
			DocumentID:  pipeErr.DocumentID,
			FailedStage: pipeErr.Stage,
		})
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrFolderNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Folder not found", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
	case errors.Is(err, ErrNotResumable):
		respond.Error(c, http.StatusConflict, "conflict", "Document cannot be resumed; upload it again", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process document", nil)
	}
}
