package models

// WebSocket event types
const (
	EventStorageChanged = "storage.changed"
	EventAvatarChanged  = "avatar.changed"
	EventCoursesChanged = "courses.changed"
	EventThemeChanged   = "theme.changed"
	EventThemeSet       = "theme.set"
	EventError          = "error"
)

type WSMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type WSStoragePayload struct {
	Key     string `json:"key"`
	Removed bool   `json:"removed,omitempty"`
}

type WSAvatarPayload struct {
	AvatarURL string `json:"avatarUrl"`
}

type WSCoursesPayload struct {
	UpdatedAt int64 `json:"updatedAt"`
}

type WSThemePayload struct {
	Theme string `json:"theme"`
}

type WSErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
