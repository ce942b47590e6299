package constants

const (
	// Session
	SessionCookieName = "school_session"
	ContextKeyUserID  = "user_id"

	// Auth
	MinPasswordLength = 8

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Storage: default per-school quota for newly created schools (15 GiB).
	DefaultStorageLimit = int64(15) << 30
)
