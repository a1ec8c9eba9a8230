package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/bnema/apex-activities-cli/internal/adapters/host/sqlschema"
	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

// DBPool abstracts pgxpool.Pool so tests can use pgxmock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type connector struct {
	flavor string
}

func (c connector) Type() string   { return "sql" }
func (c connector) Flavor() string { return c.flavor }

// Pipe stores one target table in PostgreSQL or TimescaleDB.
type Pipe struct {
	pool   DBPool
	target string
	flavor string
	logger *zap.Logger

	mu      sync.RWMutex
	columns map[string]string
}

var _ ports.Pipe = (*Pipe)(nil)

// Connect opens a pgx pool for dsn. The caller closes it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	return pool, nil
}

// Open verifies the connection, creates the registry and target table when
// missing and loads the target's registered columns.
func Open(ctx context.Context, pool DBPool, target, flavor string, logger *zap.Logger) (*Pipe, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("postgres pipe: target is required")
	}
	flavor = strings.ToLower(strings.TrimSpace(flavor))
	if flavor == "" {
		flavor = sqlschema.Postgres.Flavor
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &Pipe{
		pool:    pool,
		target:  target,
		flavor:  flavor,
		logger:  logger.Named("postgres").With(zap.String("target", target)),
		columns: map[string]string{},
	}

	dialect := sqlschema.Postgres
	for _, stmt := range []string{
		dialect.CreateRegistry(),
		dialect.CreateTable(target),
		dialect.CreateTimestampIndex(target),
	} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("prepare postgres schema: %w", err)
		}
	}

	params, err := p.loadParameters(ctx)
	if err != nil {
		return nil, err
	}
	if params.Columns != nil {
		p.columns = params.Columns
	}

	return p, nil
}

func (p *Pipe) Target() string {
	return p.target
}

func (p *Pipe) InstanceConnector() ports.InstanceConnector {
	return connector{flavor: p.flavor}
}

func (p *Pipe) Columns() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return sqlschema.CloneColumns(p.columns)
}

func (p *Pipe) SetColumns(ctx context.Context, columns map[string]string) error {
	encoded, err := sqlschema.EncodeParameters(sqlschema.Parameters{Columns: columns})
	if err != nil {
		return err
	}
	if err := p.upsertRegistry(ctx, p.pool, p.target, sqlschema.KindTarget, encoded); err != nil {
		return err
	}

	p.mu.Lock()
	p.columns = sqlschema.CloneColumns(columns)
	p.mu.Unlock()
	return nil
}

func (p *Pipe) SyncTime(ctx context.Context) (*time.Time, error) {
	query := fmt.Sprintf("SELECT max(%s) FROM %s", sqlschema.Quote(domain.ColumnTimestamp), sqlschema.Quote(p.target))

	var newest *time.Time
	if err := p.pool.QueryRow(ctx, query).Scan(&newest); err != nil {
		return nil, fmt.Errorf("query sync time: %w", err)
	}
	if newest == nil {
		return nil, nil
	}
	utc := newest.UTC()
	return &utc, nil
}

func (p *Pipe) DerivedExists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM information_schema.views WHERE table_name = $1)`

	var exists bool
	if err := p.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check view %s: %w", name, err)
	}
	return exists, nil
}

// Register creates the derived aggregate as a view and records it in the
// registry in one transaction.
func (p *Pipe) Register(ctx context.Context, definition ports.DerivedDefinition) error {
	encoded, err := sqlschema.EncodeParameters(sqlschema.Parameters{
		Columns: definition.Columns,
		Parent:  definition.Parent,
		Query:   definition.Query,
	})
	if err != nil {
		return err
	}

	return p.inTx(ctx, func(tx pgx.Tx) error {
		stmt := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", sqlschema.Quote(definition.Name), definition.Query)
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create view %s: %w", definition.Name, err)
		}
		return p.upsertRegistry(ctx, tx, definition.Name, sqlschema.KindDerived, encoded)
	})
}

// Write replaces every stored row at or after the table's first timestamp
// with the table's rows.
func (p *Pipe) Write(ctx context.Context, table domain.ActivityTable) error {
	first, _, ok := table.Span()
	if !ok {
		return nil
	}

	rows := sqlschema.Rows(table, nil)
	return p.inTx(ctx, func(tx pgx.Tx) error {
		stmt := fmt.Sprintf("DELETE FROM %s WHERE %s >= $1", sqlschema.Quote(p.target), sqlschema.Quote(domain.ColumnTimestamp))
		if _, err := tx.Exec(ctx, stmt, first); err != nil {
			return fmt.Errorf("delete overlapping rows: %w", err)
		}

		copied, err := tx.CopyFrom(ctx, pgx.Identifier{p.target}, table.ColumnNames(), pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy activities: %w", err)
		}
		if int(copied) != len(rows) {
			return fmt.Errorf("copy activities: expected %d rows, copied %d", len(rows), copied)
		}

		p.logger.Debug("activities written", zap.Int64("rows", copied), zap.Time("from", first))
		return nil
	})
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (p *Pipe) upsertRegistry(ctx context.Context, db execer, target, kind, parameters string) error {
	stmt := fmt.Sprintf(
		"INSERT INTO %s (target, kind, parameters) VALUES ($1, $2, $3) "+
			"ON CONFLICT (target) DO UPDATE SET kind = EXCLUDED.kind, parameters = EXCLUDED.parameters",
		sqlschema.Quote(sqlschema.RegistryTable),
	)
	if _, err := db.Exec(ctx, stmt, target, kind, parameters); err != nil {
		return fmt.Errorf("register %s: %w", target, err)
	}
	return nil
}

func (p *Pipe) loadParameters(ctx context.Context) (sqlschema.Parameters, error) {
	query := fmt.Sprintf("SELECT parameters FROM %s WHERE target = $1", sqlschema.Quote(sqlschema.RegistryTable))

	var raw string
	err := p.pool.QueryRow(ctx, query, p.target).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return sqlschema.Parameters{}, nil
	}
	if err != nil {
		return sqlschema.Parameters{}, fmt.Errorf("load pipe parameters: %w", err)
	}
	return sqlschema.DecodeParameters(raw)
}

func (p *Pipe) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			p.logger.Debug("rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
