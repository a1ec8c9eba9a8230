package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// nullText lists textual values the storage layer cannot tell apart from a
// missing value; they become nulls after coercion.
var nullText = map[string]struct{}{
	"":    {},
	"nan": {},
}

var errMissingTimestamp = errors.New("timestamp is required")

type mergedRow struct {
	raw       RawRecord
	timestamp time.Time
}

// Normalize merges per-category payloads into one canonical activity table.
// Payload order is the merge order; rows with equal timestamps keep it.
func Normalize(payloads []CategoryPayload) (ActivityTable, error) {
	rows := make([]mergedRow, 0, countRecords(payloads))
	hasDescriptionLines := false

	for _, payload := range payloads {
		for _, raw := range payload.Records {
			if _, ok := raw[ColumnDescriptionLines]; ok {
				hasDescriptionLines = true
			}

			position := len(rows)
			ts, err := coerceTime(raw[ColumnTimestamp])
			if err != nil {
				return ActivityTable{}, &CoercionError{Column: ColumnTimestamp, Row: position, Value: raw[ColumnTimestamp], Err: err}
			}
			if ts == nil {
				return ActivityTable{}, &CoercionError{Column: ColumnTimestamp, Row: position, Value: raw[ColumnTimestamp], Err: errMissingTimestamp}
			}

			rows = append(rows, mergedRow{raw: raw, timestamp: *ts})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].timestamp.Before(rows[j].timestamp)
	})

	table := ActivityTable{
		Columns: tableColumns(hasDescriptionLines),
		Records: make([]ActivityRecord, len(rows)),
	}

	for i, row := range rows {
		record := ActivityRecord{Index: i, Timestamp: row.timestamp}
		for _, column := range table.Columns {
			if column.Name == ColumnTimestamp {
				continue
			}

			value := row.raw[column.Name]
			if column.Name == ColumnDescriptionLines {
				joined, err := joinLines(value)
				if err != nil {
					return ActivityTable{}, &CoercionError{Column: column.Name, Row: i, Value: value, Err: err}
				}
				value = joined
			}

			if err := record.set(column, value); err != nil {
				return ActivityTable{}, &CoercionError{Column: column.Name, Row: i, Value: value, Err: err}
			}
		}
		table.Records[i] = record
	}

	return table, nil
}

func countRecords(payloads []CategoryPayload) int {
	total := 0
	for _, payload := range payloads {
		total += len(payload.Records)
	}
	return total
}

func tableColumns(withDescriptionLines bool) []Column {
	columns := make([]Column, 0, len(CanonicalSchema))
	for _, column := range CanonicalSchema {
		if column.Name == ColumnDescriptionLines && !withDescriptionLines {
			continue
		}
		columns = append(columns, column)
	}
	return columns
}

func (r *ActivityRecord) set(column Column, value any) error {
	switch column.Type {
	case ColumnText:
		field := r.textField(column.Name)
		if field == nil {
			return fmt.Errorf("unknown text column %q", column.Name)
		}
		text, err := coerceText(value)
		if err != nil {
			return err
		}
		if text != nil {
			if _, isNull := nullText[*text]; isNull {
				text = nil
			}
		}
		*field = text
	case ColumnFloat:
		field := r.floatField(column.Name)
		if field == nil {
			return fmt.Errorf("unknown float column %q", column.Name)
		}
		number, err := coerceFloat(value)
		if err != nil {
			return err
		}
		*field = number
	case ColumnDatetime:
		field := r.timeField(column.Name)
		if field == nil {
			return fmt.Errorf("unknown datetime column %q", column.Name)
		}
		ts, err := coerceTime(value)
		if err != nil {
			return err
		}
		*field = ts
	default:
		return fmt.Errorf("unsupported column type %q", column.Type)
	}

	return nil
}

func joinLines(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case []string:
		return strings.Join(v, "\n"), nil
	case []any:
		lines := make([]string, 0, len(v))
		for i, item := range v {
			line, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("description line %d is %T, want string", i, item)
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n"), nil
	default:
		return nil, fmt.Errorf("description lines is %T, want list of strings", value)
	}
}
