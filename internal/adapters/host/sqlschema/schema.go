// Package sqlschema holds the DDL and registry encoding shared by the SQL
// host backends.
package sqlschema

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/bnema/apex-activities-cli/internal/domain"
)

// RegistryTable records per-target parameters and derived aggregates.
const RegistryTable = "apx_pipes"

const (
	KindTarget  = "target"
	KindDerived = "derived"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Dialect struct {
	Flavor   string
	Datetime string
	Text     string
	Float    string
}

var (
	Postgres = Dialect{Flavor: "postgresql", Datetime: "TIMESTAMPTZ", Text: "TEXT", Float: "DOUBLE PRECISION"}
	SQLite   = Dialect{Flavor: "sqlite", Datetime: "TEXT", Text: "TEXT", Float: "REAL"}
)

func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d Dialect) columnType(t domain.ColumnType) string {
	switch t {
	case domain.ColumnDatetime:
		return d.Datetime
	case domain.ColumnFloat:
		return d.Float
	default:
		return d.Text
	}
}

// CreateTable declares every canonical column so tables with and without
// descriptionLines share one target.
func (d Dialect) CreateTable(target string) string {
	defs := make([]string, 0, len(domain.CanonicalSchema))
	for _, column := range domain.CanonicalSchema {
		def := Quote(column.Name) + " " + d.columnType(column.Type)
		if column.Name == domain.ColumnTimestamp {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", Quote(target), strings.Join(defs, ", "))
}

func (d Dialect) CreateTimestampIndex(target string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		Quote(target+"_timestamp_idx"), Quote(target), Quote(domain.ColumnTimestamp))
}

func (d Dialect) CreateRegistry() string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (target TEXT PRIMARY KEY, kind TEXT NOT NULL, parameters TEXT NOT NULL)",
		Quote(RegistryTable),
	)
}

// Parameters is the registry payload of one target or derived aggregate.
type Parameters struct {
	Columns map[string]string `json:"columns,omitempty"`
	Parent  string            `json:"parent,omitempty"`
	Query   string            `json:"query,omitempty"`
}

func EncodeParameters(p Parameters) (string, error) {
	encoded, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode pipe parameters: %w", err)
	}
	return string(encoded), nil
}

func DecodeParameters(raw string) (Parameters, error) {
	var p Parameters
	if strings.TrimSpace(raw) == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Parameters{}, fmt.Errorf("decode pipe parameters: %w", err)
	}
	return p, nil
}

// Rows flattens a table in column order. convert maps each non-nil cell to
// the driver value.
func Rows(table domain.ActivityTable, convert func(any) any) [][]any {
	rows := make([][]any, len(table.Records))
	for i, record := range table.Records {
		row := make([]any, len(table.Columns))
		for j, column := range table.Columns {
			value := record.Value(column.Name)
			if value != nil && convert != nil {
				value = convert(value)
			}
			row[j] = value
		}
		rows[i] = row
	}
	return rows
}

func CloneColumns(columns map[string]string) map[string]string {
	clone := make(map[string]string, len(columns))
	for k, v := range columns {
		clone[k] = v
	}
	return clone
}
