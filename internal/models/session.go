package models

import "time"

// Session identifies the signed-in local user. Credential is the admin
// credential flag captured at login; it is never serialized.
type Session struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	CreatedAt  int64  `json:"createdAt"`
	Credential string `json:"-"`
}

// NewSession starts a session for u at now.
func NewSession(u *User, now time.Time) Session {
	return Session{
		Username:  u.Username,
		Name:      u.DisplayName(),
		CreatedAt: now.UnixMilli(),
	}
}
