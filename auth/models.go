package auth

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// User is the domain representation of an account. It mirrors the users table
// and carries the password hash, so it must never be serialized directly; use
// Public() for anything that leaves the process.
type User struct {
	ID                    string
	Name                  string
	Email                 string
	PasswordHash          string
	Phone                 *string
	Role                  Role
	IsVerified            bool
	VerificationToken     *string
	VerificationExpiresAt *time.Time
	AgencyName            *string
	AgencyLicense         *string
	AgencyAddress         *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Agency is the optional agency affiliation sub-record.
type Agency struct {
	Name    string `json:"name"`
	License string `json:"license"`
	Address string `json:"address"`
}

// PublicUser is the projection of a user that is safe to return from the API.
// There is deliberately no field for the password hash.
type PublicUser struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone,omitempty"`
	Role       Role    `json:"role"`
	IsVerified bool    `json:"is_verified"`
	Agency     *Agency `json:"agency,omitempty"`
}

// Public strips the credential material from a user record.
func (u User) Public() PublicUser {
	pub := PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
	}
	if u.Phone != nil {
		pub.Phone = *u.Phone
	}
	if u.AgencyName != nil || u.AgencyLicense != nil || u.AgencyAddress != nil {
		agency := &Agency{}
		if u.AgencyName != nil {
			agency.Name = *u.AgencyName
		}
		if u.AgencyLicense != nil {
			agency.License = *u.AgencyLicense
		}
		if u.AgencyAddress != nil {
			agency.Address = *u.AgencyAddress
		}
		pub.Agency = agency
	}
	return pub
}

// RegisterRequest contains user registration data supplied by callers.
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    string  `json:"phone"`
	Role     Role    `json:"role"`
	Agency   *Agency `json:"agency"`
}

// LoginRequest contains user login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileParams carries a partial profile update; nil fields are left
// unchanged. Role changes are accepted here but gated to admins at the HTTP layer.
type UpdateProfileParams struct {
	Name          *string
	Email         *string
	Phone         *string
	Role          *Role
	AgencyName    *string
	AgencyLicense *string
	AgencyAddress *string
}

func isValidRole(role Role) bool {
	switch role {
	case RoleUser, RoleAgent, RoleAdmin:
		return true
	default:
		return false
	}
}
