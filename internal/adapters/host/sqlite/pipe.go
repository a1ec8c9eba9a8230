package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/bnema/apex-activities-cli/internal/adapters/host/sqlschema"
	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

// timestampLayout is fixed width so text order equals time order.
const timestampLayout = "2006-01-02 15:04:05.000000000"

type connector struct{}

func (connector) Type() string   { return "sql" }
func (connector) Flavor() string { return sqlschema.SQLite.Flavor }

// Pipe stores one target table in a local SQLite database.
type Pipe struct {
	db     *sql.DB
	target string
	logger *zap.Logger

	mu      sync.RWMutex
	columns map[string]string
}

var _ ports.Pipe = (*Pipe)(nil)

// Open opens or creates the database file at path and prepares the target.
func Open(ctx context.Context, path, target string, logger *zap.Logger) (*Pipe, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps :memory: databases and write transactions coherent.
	db.SetMaxOpenConns(1)

	pipe, err := New(ctx, db, target, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return pipe, nil
}

func New(ctx context.Context, db *sql.DB, target string, logger *zap.Logger) (*Pipe, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("sqlite pipe: target is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	dialect := sqlschema.SQLite
	for _, stmt := range []string{
		dialect.CreateRegistry(),
		dialect.CreateTable(target),
		dialect.CreateTimestampIndex(target),
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("prepare sqlite schema: %w", err)
		}
	}

	p := &Pipe{
		db:      db,
		target:  target,
		logger:  logger.Named("sqlite").With(zap.String("target", target)),
		columns: map[string]string{},
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

func (p *Pipe) Close() error {
	return p.db.Close()
}

func (p *Pipe) Target() string {
	return p.target
}

func (p *Pipe) InstanceConnector() ports.InstanceConnector {
	return connector{}
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
	if err := upsertRegistry(ctx, p.db, p.target, sqlschema.KindTarget, encoded); err != nil {
		return err
	}

	p.mu.Lock()
	p.columns = sqlschema.CloneColumns(columns)
	p.mu.Unlock()
	return nil
}

func (p *Pipe) SyncTime(ctx context.Context) (*time.Time, error) {
	query := fmt.Sprintf("SELECT max(%s) FROM %s", sqlschema.Quote(domain.ColumnTimestamp), sqlschema.Quote(p.target))

	var newest sql.NullString
	if err := p.db.QueryRowContext(ctx, query).Scan(&newest); err != nil {
		return nil, fmt.Errorf("query sync time: %w", err)
	}
	if !newest.Valid || newest.String == "" {
		return nil, nil
	}

	parsed, err := time.ParseInLocation(timestampLayout, newest.String, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse sync time %q: %w", newest.String, err)
	}
	return &parsed, nil
}

func (p *Pipe) DerivedExists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT count(*) FROM sqlite_master WHERE type = 'view' AND name = ?`

	var count int
	if err := p.db.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		return false, fmt.Errorf("check view %s: %w", name, err)
	}
	return count > 0, nil
}

func (p *Pipe) Register(ctx context.Context, definition ports.DerivedDefinition) error {
	encoded, err := sqlschema.EncodeParameters(sqlschema.Parameters{
		Columns: definition.Columns,
		Parent:  definition.Parent,
		Query:   definition.Query,
	})
	if err != nil {
		return err
	}

	return p.inTx(ctx, func(tx *sql.Tx) error {
		name := sqlschema.Quote(definition.Name)
		if _, err := tx.ExecContext(ctx, "DROP VIEW IF EXISTS "+name); err != nil {
			return fmt.Errorf("drop view %s: %w", definition.Name, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE VIEW %s AS %s", name, definition.Query)); err != nil {
			return fmt.Errorf("create view %s: %w", definition.Name, err)
		}
		return upsertRegistry(ctx, tx, definition.Name, sqlschema.KindDerived, encoded)
	})
}

// Write replaces every stored row at or after the table's first timestamp
// with the table's rows.
func (p *Pipe) Write(ctx context.Context, table domain.ActivityTable) error {
	first, _, ok := table.Span()
	if !ok {
		return nil
	}

	names := table.ColumnNames()
	quoted := make([]string, len(names))
	placeholders := make([]string, len(names))
	for i, name := range names {
		quoted[i] = sqlschema.Quote(name)
		placeholders[i] = "?"
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		sqlschema.Quote(p.target), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	rows := sqlschema.Rows(table, toDriverValue)
	return p.inTx(ctx, func(tx *sql.Tx) error {
		stmt := fmt.Sprintf("DELETE FROM %s WHERE %s >= ?", sqlschema.Quote(p.target), sqlschema.Quote(domain.ColumnTimestamp))
		if _, err := tx.ExecContext(ctx, stmt, first.UTC().Format(timestampLayout)); err != nil {
			return fmt.Errorf("delete overlapping rows: %w", err)
		}

		prepared, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer func() { _ = prepared.Close() }()

		for i, row := range rows {
			if _, err := prepared.ExecContext(ctx, row...); err != nil {
				return fmt.Errorf("insert row %d: %w", i, err)
			}
		}

		p.logger.Debug("activities written", zap.Int("rows", len(rows)), zap.Time("from", first))
		return nil
	})
}

func toDriverValue(value any) any {
	if ts, ok := value.(time.Time); ok {
		return ts.UTC().Format(timestampLayout)
	}
	return value
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertRegistry(ctx context.Context, db execer, target, kind, parameters string) error {
	stmt := fmt.Sprintf(
		"INSERT INTO %s (target, kind, parameters) VALUES (?, ?, ?) "+
			"ON CONFLICT (target) DO UPDATE SET kind = excluded.kind, parameters = excluded.parameters",
		sqlschema.Quote(sqlschema.RegistryTable),
	)
	if _, err := db.ExecContext(ctx, stmt, target, kind, parameters); err != nil {
		return fmt.Errorf("register %s: %w", target, err)
	}
	return nil
}

func (p *Pipe) loadParameters(ctx context.Context) (sqlschema.Parameters, error) {
	query := fmt.Sprintf("SELECT parameters FROM %s WHERE target = ?", sqlschema.Quote(sqlschema.RegistryTable))

	var raw string
	err := p.db.QueryRowContext(ctx, query, p.target).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return sqlschema.Parameters{}, nil
	}
	if err != nil {
		return sqlschema.Parameters{}, fmt.Errorf("load pipe parameters: %w", err)
	}
	return sqlschema.DecodeParameters(raw)
}

func (p *Pipe) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			p.logger.Debug("rollback transaction", zap.Error(rollbackErr))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
