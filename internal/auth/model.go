package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Clinic staff roles. A user may hold several.
const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RoleNurse        = "nurse"
	RoleTechnician   = "technician"
	RoleRadiologist  = "radiologist"
	RolePharmacist   = "pharmacist"
	RoleCashier      = "cashier"
	RoleReceptionist = "receptionist"
)

// ValidRoles is the set of assignable roles.
var ValidRoles = map[string]bool{
	RoleAdmin:        true,
	RoleDoctor:       true,
	RoleNurse:        true,
	RoleTechnician:   true,
	RoleRadiologist:  true,
	RolePharmacist:   true,
	RoleCashier:      true,
	RoleReceptionist: true,
}

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Roles        []string   `json:"roles"`
	Status       string     `json:"status"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Claims struct {
	jwt.RegisteredClaims
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// LoginResponse is returned on successful authentication. Every subsequent
// call must carry the token as a Bearer credential.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
