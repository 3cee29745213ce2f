// Package domain defines the normalized types the console works with.
// These types are independent of the HTTP API's JSON envelopes.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robby/adminctl/internal/form"
)

// Row is one record of a resource list. There is no enforced schema: each
// resource declares which columns it shows.
type Row map[string]any

// ID returns the row identity: the string form of the primary field value.
func (r Row) ID(primaryField string) string {
	return r.Text(primaryField)
}

// Text returns a field value formatted for display or comparison.
// Whole numbers are rendered without a fractional part. Integer json.Number
// values keep every digit.
func (r Row) Text(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		if !strings.ContainsAny(v.String(), ".eE") {
			return v.String()
		}
		if f, err := v.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Number returns a numeric field value, parsing strings when needed.
func (r Row) Number(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// Time returns a date field value.
func (r Row) Time(key string) (time.Time, bool) {
	return ParseTime(r.Text(key))
}

// timeLayouts are the date formats the API is known to return.
var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// ParseTime parses a date string in any of the supported layouts.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ColumnKind controls how a column is sorted and rendered.
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnNumber
	ColumnDate
)

// Column describes one displayed field of a resource.
type Column struct {
	Key   string
	Label string
	Kind  ColumnKind
	Width int // Preferred display width in cells; 0 means share the remaining space
}

// Resource describes a server-backed entity type with list, create and delete endpoints.
type Resource struct {
	Name         string // Endpoint and topic name, e.g. "department"
	PrimaryField string // Field used as stable row identity
	Columns      []Column
	Fields       []form.Field // Create dialog schema
}

// Severity classifies a notification.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Notification is the transient alert shown by a dialog or screen.
type Notification struct {
	Message  string
	Severity Severity
}

// Empty reports whether there is nothing to show.
func (n Notification) Empty() bool {
	return n.Message == ""
}

// NavItem is one entry of the navigation settings returned by the API.
type NavItem struct {
	Name    string
	Enabled bool
}
