package repository

// Slot names. They match the keys the browser client uses so exported data
// can be imported unchanged.
const (
	SlotCourses        = "encrypted_videos"
	SlotCoursesUpdated = "encrypted_videos_updated_at"
	SlotUsers          = "lh_users"
	SlotSession        = "lh_session"
	SlotUsername       = "username"
	SlotAdminPass      = "admin_pass"
	SlotProfileName    = "lh_profile_name"
	SlotProfileAvatar  = "lh_profile_avatar"
	SlotProfileBio     = "lh_profile_bio"
	SlotTheme          = "theme"
)
