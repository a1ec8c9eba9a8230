package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	DateLayout,
}

func coerceText(value any) (*string, error) {
	var text string
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		text = v
	case json.Number:
		text = v.String()
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		text = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		text = strconv.Itoa(v)
	case int64:
		text = strconv.FormatInt(v, 10)
	case bool:
		text = strconv.FormatBool(v)
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode nested value: %w", err)
		}
		text = string(encoded)
	default:
		return nil, fmt.Errorf("cannot convert %T to text", value)
	}
	return &text, nil
}

func coerceFloat(value any) (*float64, error) {
	var number float64
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		number = v
	case float32:
		number = float64(v)
	case int:
		number = float64(v)
	case int64:
		number = float64(v)
	case bool:
		if v {
			number = 1
		}
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("parse number %q: %w", v.String(), err)
		}
		number = parsed
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.EqualFold(trimmed, "nan") {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("parse float %q: %w", v, err)
		}
		number = parsed
	default:
		return nil, fmt.Errorf("cannot convert %T to float", value)
	}

	if math.IsNaN(number) {
		return nil, nil
	}
	return &number, nil
}

func coerceTime(value any) (*time.Time, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		utc := v.UTC()
		return &utc, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || strings.EqualFold(trimmed, "nat") {
			return nil, nil
		}
		for _, layout := range datetimeLayouts {
			parsed, err := time.Parse(layout, trimmed)
			if err == nil {
				utc := parsed.UTC()
				return &utc, nil
			}
		}
		return nil, fmt.Errorf("unrecognized datetime %q", v)
	case json.Number:
		if millis, err := v.Int64(); err == nil {
			ts := time.UnixMilli(millis).UTC()
			return &ts, nil
		}
		// Exponent or fractional forms such as 1.6725312e12.
		millis, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("parse epoch milliseconds %q: %w", v.String(), err)
		}
		ts := time.UnixMilli(int64(millis)).UTC()
		return &ts, nil
	case float64:
		ts := time.UnixMilli(int64(v)).UTC()
		return &ts, nil
	case int64:
		ts := time.UnixMilli(v).UTC()
		return &ts, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to datetime", value)
	}
}
