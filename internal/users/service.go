package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"compliance-backend/internal/folders"
	"compliance-backend/internal/organizations"
	"compliance-backend/internal/sessions"
	"compliance-backend/internal/shared/metrics"
	"compliance-backend/internal/shared/server/middleware"
	"compliance-backend/internal/shared/telemetry"
	"compliance-backend/internal/staffindex"
)

// StaffIndex records registered users in the organization's roster.
type StaffIndex interface {
	Append(ctx context.Context, orgID string, entry staffindex.Entry) error
}

type Service struct {
	Repo     Repo
	Orgs     organizations.Repo
	Folders  folders.Repo
	Sessions sessions.Store
	Index    StaffIndex
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
	NewID    func() string
}

// registration is the permission-independent part of a sign-up.
type registration struct {
	firstName, lastName, email string
	role                       Role
	password, confirm          string
	agreeToTerms               bool
}

// RegisterStaff creates a staff user and folder inside an existing organization.
func (s *Service) RegisterStaff(ctx context.Context, req StaffRegistration) (User, error) {
	reg := registration{
		firstName: req.FirstName, lastName: req.LastName, email: req.Email, role: req.Role,
		password: req.Password, confirm: req.ConfirmPassword, agreeToTerms: req.AgreeToTerms,
	}
	if err := validate(reg); err != nil {
		return User{}, err
	}
	orgID := strings.TrimSpace(req.OrganizationID)
	if orgID == "" {
		return User{}, fmt.Errorf("%w: organization_id is required", ErrInvalidInput)
	}
	if _, err := s.Orgs.GetByID(ctx, orgID); err != nil {
		if errors.Is(err, organizations.ErrNotFound) {
			return User{}, ErrOrganizationNotFound
		}
		return User{}, fmt.Errorf("load organization: %w", err)
	}
	return s.register(ctx, reg, PermissionStaff, orgID, nil)
}

// RegisterAdmin creates a new organization with the registrant as its admin.
func (s *Service) RegisterAdmin(ctx context.Context, req AdminRegistration) (User, error) {
	reg := registration{
		firstName: req.FirstName, lastName: req.LastName, email: req.Email, role: req.Role,
		password: req.Password, confirm: req.ConfirmPassword, agreeToTerms: req.AgreeToTerms,
	}
	if err := validate(reg); err != nil {
		return User{}, err
	}
	orgName := strings.TrimSpace(req.OrganizationName)
	if orgName == "" {
		return User{}, fmt.Errorf("%w: organization_name is required", ErrInvalidInput)
	}
	org := &organizations.Organization{ID: s.newID(), Name: orgName}
	return s.register(ctx, reg, PermissionAdmin, org.ID, org)
}

// register persists organization (when newOrg is set), user and folder, then
// appends to the staff index. A failure undoes the earlier writes.
func (s *Service) register(ctx context.Context, reg registration, perm Permission, orgID string, newOrg *organizations.Organization) (User, error) {
	email := strings.TrimSpace(reg.email)
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hash(reg.password)
	if err != nil {
		return User{}, err
	}

	var undo []func(context.Context) error
	rollback := func(cause error) {
		for i := len(undo) - 1; i >= 0; i-- {
			if err := undo[i](context.WithoutCancel(ctx)); err != nil {
				telemetry.Error("registration.compensate_failed", map[string]any{
					"organization_id": orgID,
					"error":           err.Error(),
					"cause":           cause.Error(),
				})
			}
		}
	}

	if newOrg != nil {
		if err := s.Orgs.Create(ctx, *newOrg); err != nil {
			return User{}, fmt.Errorf("create organization: %w", err)
		}
		undo = append(undo, func(ctx context.Context) error { return s.Orgs.Delete(ctx, newOrg.ID) })
	}

	user := User{
		ID:             s.newID(),
		FirstName:      strings.TrimSpace(reg.firstName),
		LastName:       strings.TrimSpace(reg.lastName),
		Email:          email,
		PasswordHash:   hash,
		Role:           reg.role,
		Permission:     perm,
		OrganizationID: orgID,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		rollback(err)
		if errors.Is(err, ErrEmailTaken) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	undo = append(undo, func(ctx context.Context) error { return s.Repo.Delete(ctx, user.ID) })

	folder := folders.Folder{
		ID:             s.newID(),
		Name:           folders.NameFor(user.FirstName, user.LastName),
		OrganizationID: orgID,
		UserID:         user.ID,
	}
	if err := s.Folders.Create(ctx, folder); err != nil {
		rollback(err)
		return User{}, fmt.Errorf("create folder: %w", err)
	}
	undo = append(undo, func(ctx context.Context) error { return s.Folders.Delete(ctx, folder.ID) })

	if s.Index != nil {
		if err := s.Index.Append(ctx, orgID, IndexEntry(user)); err != nil {
			rollback(err)
			return User{}, fmt.Errorf("update staff index: %w", err)
		}
	}

	metrics.IncRegistration(string(perm))
	telemetry.Info("registration.complete", map[string]any{
		"user_id":         user.ID,
		"organization_id": orgID,
		"permission":      string(perm),
	})
	return user, nil
}

// Login returns a session token when the password matches. Unknown emails
// yield ErrNotFound; a wrong password yields ok=false with no error.
func (s *Service) Login(ctx context.Context, email, password string) (token sessions.Token, ok bool, err error) {
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.IncLogin("unknown_email")
		}
		return 0, false, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.IncLogin("failure")
		return 0, false, nil
	}
	token, err = s.Sessions.Create(ctx, user.ID)
	if err != nil {
		return 0, false, fmt.Errorf("create session: %w", err)
	}
	metrics.IncLogin("success")
	return token, true, nil
}

// Logout revokes token.
func (s *Service) Logout(ctx context.Context, token sessions.Token) error {
	return s.Sessions.Revoke(ctx, token)
}

// ResolveToken implements middleware.IdentityResolver.
func (s *Service) ResolveToken(ctx context.Context, token int64) (middleware.Identity, error) {
	userID, err := s.Sessions.Resolve(ctx, sessions.Token(token))
	if err != nil {
		if errors.Is(err, sessions.ErrInvalidToken) {
			return middleware.Identity{}, middleware.ErrInvalidToken
		}
		return middleware.Identity{}, err
	}
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return middleware.Identity{}, middleware.ErrInvalidToken
		}
		return middleware.Identity{}, err
	}
	return middleware.Identity{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Permission:     string(user.Permission),
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
	}, nil
}

// IndexEntry converts a user to its staff index representation.
func IndexEntry(u User) staffindex.Entry {
	return staffindex.Entry{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Role:           string(u.Role),
		Permission:     string(u.Permission),
		OrganizationID: u.OrganizationID,
	}
}

// HashPassword hashes a plaintext password with the given bcrypt cost.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) hash(password string) (string, error) {
	return HashPassword(password, s.HashCost)
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// validate checks password confirmation and terms first, so those
// messages win over missing-field errors.
func validate(reg registration) error {
	if reg.password != reg.confirm {
		return ErrPasswordMismatch
	}
	if !reg.agreeToTerms {
		return ErrTermsNotAccepted
	}
	switch {
	case strings.TrimSpace(reg.firstName) == "":
		return fmt.Errorf("%w: first_name is required", ErrInvalidInput)
	case strings.TrimSpace(reg.lastName) == "":
		return fmt.Errorf("%w: last_name is required", ErrInvalidInput)
	case reg.password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	case !reg.role.Valid():
		return fmt.Errorf("%w: role %q is not recognized", ErrInvalidInput, reg.role)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(reg.email)); err != nil {
		return fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	return nil
}
