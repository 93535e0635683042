package auth

import (
	"errors"
	"testing"

	"github.com/learnhub/backend/internal/models"
)

func TestGate_Authorize(t *testing.T) {
	gate := NewGate(Admin{Username: "admin", Password: "admin111"})

	tests := []struct {
		name    string
		session *models.Session
		allowed bool
	}{
		{"admin with credential", &models.Session{Username: "admin", Credential: "admin111"}, true},
		{"admin without credential", &models.Session{Username: "admin"}, false},
		{"admin with wrong credential", &models.Session{Username: "admin", Credential: "nope"}, false},
		{"other user with credential", &models.Session{Username: "sara", Credential: "admin111"}, false},
		{"other user", &models.Session{Username: "sara"}, false},
		{"no session", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Authorize(tt.session)
			if tt.allowed && err != nil {
				t.Errorf("Expected access, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, ErrForbidden) {
				t.Errorf("Expected ErrForbidden, got %v", err)
			}
		})
	}
}
