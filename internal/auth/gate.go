package auth

import (
	"errors"

	"github.com/learnhub/backend/internal/models"
)

var ErrForbidden = errors.New("admin access required")

// Admin names the administrative account and the credential the gate
// expects to find in its session.
type Admin struct {
	Username string
	Password string
}

// Gate decides whether a session may use the admin surface. It only looks at
// the session it is given.
type Gate struct {
	admin Admin
}

func NewGate(admin Admin) *Gate {
	return &Gate{admin: admin}
}

// Authorize returns nil for the admin session and ErrForbidden otherwise
func (g *Gate) Authorize(s *models.Session) error {
	if s == nil || g.admin.Username == "" {
		return ErrForbidden
	}
	if s.Username != g.admin.Username || s.Credential != g.admin.Password {
		return ErrForbidden
	}
	return nil
}
