package domain

type SessionOrigin string

const (
	// SessionRestored sessions were rebuilt from the cookie jar and are not
	// verified until the first request.
	SessionRestored SessionOrigin = "restored"
	SessionLoggedIn SessionOrigin = "logged_in"
)
