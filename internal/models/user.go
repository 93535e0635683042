package models

import (
	"errors"
	"fmt"
	"strings"
)

// MinPasswordLength is the shortest password registration accepts.
const MinPasswordLength = 6

var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

// User is one entry of the stored user list. Password holds a bcrypt hash for
// accounts created here and may hold plaintext for imported accounts.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// Validate checks basic user fields
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return errors.New("username is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	if u.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// DisplayName falls back to the username when no name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Public drops the password for responses.
func (u *User) Public() UserView {
	return UserView{Username: u.Username, Email: u.Email, Name: u.DisplayName()}
}

type UserView struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Validate applies the registration rules independently of the transport
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return errors.New("username, email and password are required")
	}
	if len(r.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string   `json:"token"`
	Session Session  `json:"session"`
	User    UserView `json:"user"`
}
