package users

import (
	"strings"
	"time"
)

type Role string

const (
	RoleTeacher                 Role = "teacher"
	RoleAssistantTeacher        Role = "assistant_teacher"
	RoleSubstituteTeacher       Role = "substitute_teacher"
	RoleTeacherAide             Role = "teacher_aide"
	RoleStaff                   Role = "staff"
	RoleCookKitchenStaff        Role = "cook_kitchen_staff"
	RoleMaintenanceStaff        Role = "maintenance_staff"
	RoleAdministrativeAssistant Role = "administrative_assistant"
	RoleAdmin                   Role = "admin"
	RoleDirector                Role = "director"
	RoleOther                   Role = "other"
)

var validRoles = map[Role]struct{}{
	RoleTeacher: {}, RoleAssistantTeacher: {}, RoleSubstituteTeacher: {}, RoleTeacherAide: {},
	RoleStaff: {}, RoleCookKitchenStaff: {}, RoleMaintenanceStaff: {}, RoleAdministrativeAssistant: {},
	RoleAdmin: {}, RoleDirector: {}, RoleOther: {},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := validRoles[r]
	return ok
}

type Permission string

const (
	PermissionAdmin Permission = "admin"
	PermissionStaff Permission = "staff"
)

type User struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Role           Role       `json:"role"`
	Permission     Permission `json:"permission"`
	OrganizationID string     `json:"organization_id"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Profile is the public view of a user; it never carries credentials.
type Profile struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Role           Role       `json:"role"`
	Permission     Permission `json:"permission"`
	OrganizationID string     `json:"organization_id"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Role:           u.Role,
		Permission:     u.Permission,
		OrganizationID: u.OrganizationID,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
