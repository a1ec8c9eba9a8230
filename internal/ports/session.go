package ports

import (
	"time"

	"github.com/bnema/apex-activities-cli/internal/domain"
)

// Session is the one authenticated browser handle a process owns.
type Session struct {
	Browser   Browser
	Origin    domain.SessionOrigin
	CreatedAt time.Time
}
