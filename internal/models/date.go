package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Date accepts either a calendar date (2024-02-27) or an RFC 3339 timestamp in JSON payloads
type Date struct {
	time.Time
}

// UnmarshalJSON parses a date string; null leaves the value untouched
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

// Ptr returns a copy of the wrapped time, or nil for a nil Date
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// ParseDate parses YYYY-MM-DD (as UTC midnight) or RFC 3339
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation("2006-01-02", raw, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", raw)
	}
	return t, nil
}
