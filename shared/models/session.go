package models

// Session is the server-side session record stored in Redis under "session:<id>".
// Admin access is decided by the IsAdmin flag only.
type Session struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}
