package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/bnema/apex-activities-cli/internal/domain"
	"github.com/bnema/apex-activities-cli/internal/ports"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// ErrDerivedUnsupported is returned by Register; file hosts have no query
// engine for derived aggregates.
var ErrDerivedUnsupported = errors.New("yaml host does not support derived aggregates")

type connector struct{}

func (connector) Type() string   { return "file" }
func (connector) Flavor() string { return "yaml" }

type document struct {
	Target  string            `yaml:"target"`
	Columns map[string]string `yaml:"columns,omitempty"`
	Rows    []map[string]any  `yaml:"rows"`
}

// Pipe keeps one target as a single YAML document on disk.
type Pipe struct {
	path   string
	target string
	logger *zap.Logger

	mu sync.Mutex
}

var _ ports.Pipe = (*Pipe)(nil)

func Open(path, target string, logger *zap.Logger) (*Pipe, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("yaml pipe: path is required")
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("yaml pipe: target is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipe{
		path:   filepath.Clean(path),
		target: target,
		logger: logger.Named("yaml").With(zap.String("target", target)),
	}, nil
}

func (p *Pipe) Target() string {
	return p.target
}

func (p *Pipe) InstanceConnector() ports.InstanceConnector {
	return connector{}
}

func (p *Pipe) Columns() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.read()
	if err != nil {
		p.logger.Warn("read columns", zap.Error(err))
		return map[string]string{}
	}
	columns := make(map[string]string, len(doc.Columns))
	for k, v := range doc.Columns {
		columns[k] = v
	}
	return columns
}

func (p *Pipe) SetColumns(ctx context.Context, columns map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.read()
	if err != nil {
		return err
	}
	doc.Columns = columns
	return p.write(doc)
}

func (p *Pipe) SyncTime(ctx context.Context) (*time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.read()
	if err != nil {
		return nil, err
	}

	var newest *time.Time
	for i, row := range doc.Rows {
		ts, err := rowTimestamp(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if newest == nil || ts.After(*newest) {
			newest = &ts
		}
	}
	return newest, nil
}

func (p *Pipe) DerivedExists(context.Context, string) (bool, error) {
	return false, nil
}

func (p *Pipe) Register(context.Context, ports.DerivedDefinition) error {
	return ErrDerivedUnsupported
}

// Write drops stored rows at or after the table's first timestamp and
// appends the table, keeping rows ordered by timestamp.
func (p *Pipe) Write(ctx context.Context, table domain.ActivityTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	first, _, ok := table.Span()
	if !ok {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := p.read()
	if err != nil {
		return err
	}

	kept := make([]map[string]any, 0, len(doc.Rows)+table.Len())
	for i, row := range doc.Rows {
		ts, err := rowTimestamp(row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if ts.Before(first) {
			kept = append(kept, row)
		}
	}
	for _, record := range table.Records {
		kept = append(kept, encodeRecord(record, table.Columns))
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, _ := rowTimestamp(kept[i])
		b, _ := rowTimestamp(kept[j])
		return a.Before(b)
	})

	doc.Rows = kept
	if err := p.write(doc); err != nil {
		return err
	}
	p.logger.Debug("activities written", zap.Int("rows", table.Len()), zap.Int("stored", len(kept)))
	return nil
}

func encodeRecord(record domain.ActivityRecord, columns []domain.Column) map[string]any {
	row := make(map[string]any, len(columns))
	for _, column := range columns {
		value := record.Value(column.Name)
		if ts, ok := value.(time.Time); ok {
			value = ts.UTC().Format(time.RFC3339Nano)
		}
		row[column.Name] = value
	}
	return row
}

func rowTimestamp(row map[string]any) (time.Time, error) {
	switch v := row[domain.ColumnTimestamp].(type) {
	case string:
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
		}
		return ts.UTC(), nil
	case time.Time:
		return v.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("timestamp is %T", v)
	}
}

func (p *Pipe) read() (document, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return document{Target: p.target}, nil
	}
	if err != nil {
		return document{}, fmt.Errorf("read %s: %w", filepath.Base(p.path), err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("decode %s: %w", filepath.Base(p.path), err)
	}
	if doc.Target != "" && doc.Target != p.target {
		return document{}, fmt.Errorf("%s holds target %q, not %q", filepath.Base(p.path), doc.Target, p.target)
	}
	doc.Target = p.target
	return doc, nil
}

// write replaces the file atomically.
func (p *Pipe) write(doc document) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create host directory: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(p.path), err)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(p.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tempFile.Chmod(fileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tempName, p.path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(p.path), err)
	}
	cleanup = false
	return nil
}
