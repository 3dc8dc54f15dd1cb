package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"compliance-backend/internal/sessions"
	"compliance-backend/internal/shared/server/middleware"
	"compliance-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches auth and registration routes. loginLimit guards
// the login endpoint; pass nil to disable limiting.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, loginLimit gin.HandlerFunc) {
	login := []gin.HandlerFunc{h.login}
	if loginLimit != nil {
		login = append([]gin.HandlerFunc{loginLimit}, login...)
	}
	rg.POST("/auth/login", login...)
	rg.POST("/auth/logout", middleware.RequireStaff(h.Svc), h.logout)
	rg.POST("/registration/staff", h.registerStaff)
	rg.POST("/registration/admin", h.registerAdmin)
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	token, ok, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "User not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to log in", nil)
		return
	}
	if !ok {
		respond.OK(c, loginResponse{Status: false})
		return
	}
	raw := int64(token)
	respond.OK(c, loginResponse{Status: true, SessionToken: &raw})
}

func (h *Handler) logout(c *gin.Context) {
	token, ok := middleware.SessionTokenFromContext(c)
	if !ok {
		respond.Error(c, http.StatusForbidden, "forbidden", "Invalid token.", nil)
		return
	}
	if err := h.Svc.Logout(c.Request.Context(), sessions.Token(token)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to log out", nil)
		return
	}
	respond.OK(c, gin.H{"status": true})
}

func (h *Handler) registerStaff(c *gin.Context) {
	var req StaffRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	user, err := h.Svc.RegisterStaff(c.Request.Context(), req)
	if err != nil {
		writeRegistrationError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, registrationResponse{Status: true, User: user.Profile()})
}

func (h *Handler) registerAdmin(c *gin.Context) {
	var req AdminRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	user, err := h.Svc.RegisterAdmin(c.Request.Context(), req)
	if err != nil {
		writeRegistrationError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, registrationResponse{Status: true, User: user.Profile()})
}

func writeRegistrationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Passwords do not match", nil)
	case errors.Is(err, ErrTermsNotAccepted):
		respond.Error(c, http.StatusBadRequest, "validation_error", "You must agree to the terms and conditions", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrOrganizationNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Organization not found", nil)
	case errors.Is(err, ErrEmailTaken):
		respond.Error(c, http.StatusConflict, "conflict", "Email already registered", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "registration failed", nil)
	}
}
