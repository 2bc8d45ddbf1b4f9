package outbound

import "time"

// Timestamp layouts produced by the remote record service. Autodate
// fields render as "2006-01-02 15:04:05.000Z"; RFC3339 covers values
// echoed back from create payloads.
var timeLayouts = []string{
	"2006-01-02 15:04:05.000Z",
	"2006-01-02 15:04:05Z",
	time.RFC3339Nano,
	time.RFC3339,
}

// Str returns the field as a string, or "" when absent or mistyped
func (r Record) Str(key string) string {
	v, _ := r[key].(string)
	return v
}

// Float returns the field as a float64, or 0 when absent or mistyped
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Time parses the field as a remote timestamp; zero time when absent or
// unparsable
func (r Record) Time(key string) time.Time {
	raw := r.Str(key)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
