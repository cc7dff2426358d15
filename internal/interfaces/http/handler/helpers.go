package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// parseOptionalUUID parses a query value; empty means no filter
func parseOptionalUUID(raw, field string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format", field)
	}
	return &id, nil
}

// parseOptionalTime accepts RFC 3339 or a plain date
func parseOptionalTime(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s, expected YYYY-MM-DD or RFC 3339", field)
	}
	return &t, nil
}

// endOfDay moves a plain date bound to the last instant of that day so
// "to" filters include it
func endOfDay(t *time.Time) *time.Time {
	if t == nil || !t.Equal(t.Truncate(24*time.Hour)) {
		return t
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end
}

// splitCSV splits a comma separated query value, dropping blanks
func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseUUIDs parses a list of IDs from a request body
func parseUUIDs(raw []string, field string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid %s format", field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// csvFilename builds the attachment name for an export
func csvFilename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", prefix, now.Format("20060102-150405"))
}
