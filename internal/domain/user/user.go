package user

import (
	"time"

	"labmatch/internal/common"
)

// Role is a closed set; lifecycle operations dispatch on it instead of
// comparing raw strings.
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleProfessor
}

type User struct {
	ID         common.UUID `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       Role        `json:"role"`
	Department string      `json:"department,omitempty"`
	Skills     []string    `json:"skills,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
