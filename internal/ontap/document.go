package ontap

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// unknown is the label value used when a descriptive field is absent.
const unknown = "unknown"

// lookup walks path through nested JSON objects.
func lookup(doc any, path ...string) (any, bool) {
	cur := doc
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// object returns the JSON object at path, or nil when it is absent or not an object.
func object(doc any, path ...string) map[string]any {
	v, _ := lookup(doc, path...)
	obj, _ := v.(map[string]any)
	return obj
}

// number returns the numeric value at path, or def when it is absent or not numeric.
// Numeric strings are accepted.
func number(doc any, def float64, path ...string) float64 {
	v, ok := lookup(doc, path...)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}

// text returns the non-empty string at path, or def.
func text(doc any, def string, path ...string) string {
	v, ok := lookup(doc, path...)
	if !ok {
		return def
	}
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

// records returns the resource summaries of a list response, which is either
// a bare array or an object with a "records" array.
func records(doc any) ([]any, bool) {
	switch d := doc.(type) {
	case []any:
		return d, true
	case map[string]any:
		if recs, ok := d["records"].([]any); ok {
			return recs, true
		}
	}
	return nil, false
}

// selfLink returns _links.self.href of a list entry, or "" when absent.
func selfLink(entry any) string {
	return text(entry, "", "_links", "self", "href")
}

// usagePercent is used/size*100, or 0 for an empty or unknown size.
func usagePercent(used, size float64) float64 {
	if size <= 0 {
		return 0
	}
	return used / size * 100
}

// createTimeLayouts are tried in order. Layouts without a zone are read as UTC.
var createTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// parseCreateTime converts an ISO 8601 timestamp ("2023-01-01T00:00:00Z",
// "2023-01-01T01:00:00+01:00") to Unix seconds.
func parseCreateTime(s string) (float64, error) {
	for _, layout := range createTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.Unix()) + float64(t.Nanosecond())/1e9, nil
		}
	}
	return 0, fmt.Errorf("unrecognised timestamp %q", s)
}
