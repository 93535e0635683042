package models

import (
	"errors"
	"strings"
)

const (
	// AvatarPlaceholder is shown when no avatar is set or it fails to load.
	AvatarPlaceholder = "https://via.placeholder.com/160"
	GuestUsername     = "guest"
)

type Profile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
}

// Normalize trims the fields and applies the defaults for username.
func (p Profile) Normalize(username string) Profile {
	if username == "" {
		username = GuestUsername
	}
	out := Profile{
		Name:   strings.TrimSpace(p.Name),
		Avatar: strings.TrimSpace(p.Avatar),
		Bio:    strings.TrimSpace(p.Bio),
	}
	if out.Name == "" {
		out.Name = username
	}
	if out.Avatar == "" {
		out.Avatar = AvatarPlaceholder
	}
	return out
}

// Themes
const (
	ThemeDark    = "dark"
	ThemeLight   = "light"
	DefaultTheme = ThemeDark
)

var ErrInvalidTheme = errors.New("theme must be dark or light")

// ValidateTheme reports whether t is a known theme token.
func ValidateTheme(t string) error {
	switch t {
	case ThemeDark, ThemeLight:
		return nil
	default:
		return ErrInvalidTheme
	}
}

type ThemeRequest struct {
	Theme string `json:"theme" binding:"required"`
}
