package users

// StaffRegistration joins an existing organization.
type StaffRegistration struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	OrganizationID  string `json:"organization_id"`
	Role            Role   `json:"role"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	AgreeToTerms    bool   `json:"agree_to_terms"`
}

// AdminRegistration creates a new organization owned by the registrant.
type AdminRegistration struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	OrganizationName string `json:"organization_name"`
	Role             Role   `json:"role"`
	Password         string `json:"password"`
	ConfirmPassword  string `json:"confirm_password"`
	AgreeToTerms     bool   `json:"agree_to_terms"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status       bool   `json:"status"`
	SessionToken *int64 `json:"session_token,omitempty"`
}

type registrationResponse struct {
	Status bool    `json:"status"`
	User   Profile `json:"user"`
}
