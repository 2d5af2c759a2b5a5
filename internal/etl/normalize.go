package etl

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"smarthome_dw/internal/models"
	"smarthome_dw/internal/thingspeak"
)

// Frame is a normalized row-set: a fixed, ordered set of labelled measurement
// columns plus one row per feed entry. It only lives for the duration of one
// ETL cycle.
type Frame struct {
	Fields []string // labelled column names, in selection order
	Rows   []Row
}

// Row is one normalized feed entry. Values are keyed by labelled column name;
// anything that failed numeric coercion is an invalid (NULL) value, never a
// dropped row.
type Row struct {
	CreatedAt time.Time
	EntryID   int64
	Values    map[string]sql.NullFloat64
}

// Empty reports whether the frame carries no rows.
func (f Frame) Empty() bool { return len(f.Rows) == 0 }

// acceptedTimestampLayouts covers the remote API's RFC3339 timestamps and the
// storage-layer text form.
var acceptedTimestampLayouts = []string{time.RFC3339, models.TimestampLayout}

// Normalize converts a raw feed payload into a Frame.
//
// Field selection uses the explicit fields list when provided; otherwise every
// fieldN key present in the first entry is auto-detected, ordered by its
// numeric suffix. Each selected field is renamed to the channel's trimmed
// label when one exists, and its values are coerced to numeric with NULL for
// anything unparseable. A malformed created_at fails the whole batch: loading
// part of a page would break timestamp-based resumption.
func Normalize(p *thingspeak.Payload, fields []string) (Frame, error) {
	if p == nil || len(p.Feeds) == 0 {
		return Frame{}, nil
	}

	selected := fields
	if len(selected) == 0 {
		selected = detectFields(p.Feeds[0])
	}

	columns := make([]string, len(selected))
	for i, key := range selected {
		columns[i] = columnName(p.Channel, key)
	}

	rows := make([]Row, 0, len(p.Feeds))
	for _, entry := range p.Feeds {
		ts, err := parseTimestamp(entry.CreatedAt)
		if err != nil {
			return Frame{}, fmt.Errorf("entry %d: %w", entry.EntryID, err)
		}
		row := Row{
			CreatedAt: ts,
			EntryID:   entry.EntryID,
			Values:    make(map[string]sql.NullFloat64, len(selected)),
		}
		for i, key := range selected {
			row.Values[columns[i]] = coerceNumeric(entry.Fields[key])
		}
		rows = append(rows, row)
	}

	return Frame{Fields: columns, Rows: rows}, nil
}

// detectFields returns the entry's fieldN keys ordered by numeric suffix.
func detectFields(first thingspeak.Entry) []string {
	keys := make([]string, 0, len(first.Fields))
	for k := range first.Fields {
		if thingspeak.IsFieldKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return fieldIndex(keys[i]) < fieldIndex(keys[j]) })
	return keys
}

// fieldIndex extracts N from a fieldN key. Keys have already matched the
// naming convention, so the suffix is all digits.
func fieldIndex(key string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(key, "field"))
	return n
}

// columnName maps a field key to its output column name: the channel's trimmed
// label when non-empty, the raw key otherwise.
func columnName(ch thingspeak.Channel, key string) string {
	if label := strings.TrimSpace(ch.Labels[key]); label != "" {
		return label
	}
	return key
}

// parseTimestamp accepts the remote RFC3339 form and the storage text form.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range acceptedTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed created_at %q", s)
}

// coerceNumeric parses a raw feed value. Missing or unparseable values become
// NULL, never an error.
func coerceNumeric(raw string) sql.NullFloat64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
