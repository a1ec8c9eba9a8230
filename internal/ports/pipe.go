package ports

import (
	"context"
	"time"

	"github.com/bnema/apex-activities-cli/internal/domain"
)

type InstanceConnector interface {
	Type() string
	Flavor() string
}

// DerivedDefinition describes a server-side aggregate computed from a pipe's
// target table.
type DerivedDefinition struct {
	Name    string
	Parent  string
	Query   string
	Columns map[string]string
}

// Pipe is the host storage collaborator for one target table.
type Pipe interface {
	Target() string
	// SyncTime returns the newest stored timestamp, or nil for an empty target.
	SyncTime(ctx context.Context) (*time.Time, error)
	Columns() map[string]string
	SetColumns(ctx context.Context, columns map[string]string) error
	DerivedExists(ctx context.Context, name string) (bool, error)
	Register(ctx context.Context, definition DerivedDefinition) error
	Write(ctx context.Context, table domain.ActivityTable) error
	InstanceConnector() InstanceConnector
}
