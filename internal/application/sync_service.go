package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

const maxSyncAttempts = 2

type CredentialResolver interface {
	Resolve(ctx context.Context) (domain.Credentials, error)
}

type SessionProvider interface {
	EnsureSession(ctx context.Context, creds domain.Credentials, forceRelogin bool) (*ports.Session, error)
}

type SyncResult struct {
	RunID    string
	Target   string
	Window   domain.DateWindow
	Attempts int
	Origin   domain.SessionOrigin
	Table    domain.ActivityTable
}

// SyncService runs one incremental fetch and normalize pass for a pipe.
type SyncService struct {
	credentials CredentialResolver
	sessions    SessionProvider
	fetcher     ports.ActivityFetcher
	clock       ports.Clock
	categories  []domain.Category
	logger      *zap.Logger
	slot        *semaphore.Weighted
	newRunID    func() string
}

func NewSyncService(credentials CredentialResolver, sessions SessionProvider, fetcher ports.ActivityFetcher, clock ports.Clock, categories []domain.Category, logger *zap.Logger) *SyncService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if len(categories) == 0 {
		categories = domain.DefaultCategories()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SyncService{
		credentials: credentials,
		sessions:    sessions,
		fetcher:     fetcher,
		clock:       clock,
		categories:  categories,
		logger:      logger.Named("sync"),
		slot:        semaphore.NewWeighted(1),
		newRunID:    uuid.NewString,
	}
}

type attemptOutcome int

const (
	attemptSucceeded attemptOutcome = iota
	attemptNeedsRelogin
	attemptFatal
)

// Sync fetches everything since the given timestamp, or since the pipe's
// sync time when nil. Only one sync may run at a time.
func (s *SyncService) Sync(ctx context.Context, pipe ports.Pipe, since *time.Time) (SyncResult, error) {
	if !s.slot.TryAcquire(1) {
		return SyncResult{}, domain.ErrSyncInProgress
	}
	defer s.slot.Release(1)

	result := SyncResult{RunID: s.newRunID(), Target: pipe.Target()}
	logger := s.logger.With(zap.String("run_id", result.RunID), zap.String("target", result.Target))

	creds, err := s.credentials.Resolve(ctx)
	if err != nil {
		return result, fmt.Errorf("resolve credentials: %w", err)
	}

	cursor := since
	if cursor == nil {
		cursor, err = pipe.SyncTime(ctx)
		if err != nil {
			return result, fmt.Errorf("read sync time: %w", err)
		}
	}
	result.Window = domain.ResolveWindow(domain.IncrementalStart(cursor), nil, s.clock.Now())

	if err := s.ensureDatetimeColumn(ctx, pipe); err != nil {
		return result, err
	}
	s.ensureDerived(ctx, pipe, logger)

	logger.Info("sync started", zap.Stringer("window", result.Window))

	var lastErr error
	for attempt := 1; attempt <= maxSyncAttempts; attempt++ {
		result.Attempts = attempt
		forceRelogin := attempt > 1

		table, origin, outcome, err := s.attempt(ctx, creds, result.Window, forceRelogin)
		switch outcome {
		case attemptSucceeded:
			result.Origin = origin
			result.Table = table
			logger.Info("sync finished", zap.Int("rows", table.Len()), zap.Int("attempts", attempt))
			return result, nil
		case attemptNeedsRelogin:
			logger.Warn("session rejected by portal", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
		default:
			return result, err
		}
	}

	return result, fmt.Errorf("session still invalid after forced re-login: %w", lastErr)
}

func (s *SyncService) attempt(ctx context.Context, creds domain.Credentials, window domain.DateWindow, forceRelogin bool) (domain.ActivityTable, domain.SessionOrigin, attemptOutcome, error) {
	session, err := s.sessions.EnsureSession(ctx, creds, forceRelogin)
	if err != nil {
		return domain.ActivityTable{}, "", attemptFatal, fmt.Errorf("ensure session: %w", err)
	}

	payloads, err := s.fetcher.Fetch(ctx, session, creds.Account, s.categories, window)
	if err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			return domain.ActivityTable{}, session.Origin, attemptNeedsRelogin, err
		}
		return domain.ActivityTable{}, session.Origin, attemptFatal, err
	}

	table, err := domain.Normalize(payloads)
	if err != nil {
		return domain.ActivityTable{}, session.Origin, attemptFatal, fmt.Errorf("normalize activities: %w", err)
	}

	return table, session.Origin, attemptSucceeded, nil
}

func (s *SyncService) ensureDatetimeColumn(ctx context.Context, pipe ports.Pipe) error {
	columns := pipe.Columns()
	if columns["datetime"] != "" {
		return nil
	}

	updated := make(map[string]string, len(columns)+1)
	for key, value := range columns {
		updated[key] = value
	}
	updated["datetime"] = domain.ColumnTimestamp

	if err := pipe.SetColumns(ctx, updated); err != nil {
		return fmt.Errorf("set pipe columns: %w", err)
	}
	return nil
}

func (s *SyncService) ensureDerived(ctx context.Context, pipe ports.Pipe, logger *zap.Logger) {
	definition, ok := runningDividendsDefinition(pipe.Target(), pipe.InstanceConnector())
	if !ok {
		logger.Debug("host does not support derived aggregates")
		return
	}

	exists, err := pipe.DerivedExists(ctx, definition.Name)
	if err != nil {
		logger.Warn("check derived aggregate", zap.String("name", definition.Name), zap.Error(err))
		return
	}
	if exists {
		return
	}

	if err := pipe.Register(ctx, definition); err != nil {
		logger.Warn("register derived aggregate", zap.String("name", definition.Name), zap.Error(err))
		return
	}
	logger.Info("registered derived aggregate", zap.String("name", definition.Name))
}
