package pocketbase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pricetrail/internal/ports/outbound"
)

// filterTimeLayout is the timestamp format the service expects inside
// filter expressions
const filterTimeLayout = "2006-01-02 15:04:05.000Z"

// renderFilter renders a predicate conjunction in the service's filter
// syntax, e.g. `User = "abc" && created_at >= "2025-01-02 10:00:00.000Z"`.
// An empty filter renders as the empty string (match all).
func renderFilter(filter outbound.Filter) string {
	if len(filter) == 0 {
		return ""
	}

	parts := make([]string, 0, len(filter))
	for _, clause := range filter {
		parts = append(parts, renderClause(clause))
	}
	return strings.Join(parts, " && ")
}

func renderClause(clause outbound.FilterClause) string {
	switch clause.Op {
	case outbound.OpAnyOf:
		alts := make([]string, 0, len(clause.Values))
		for _, id := range clause.Values {
			alts = append(alts, fmt.Sprintf("%s = %s", clause.Field, quote(id)))
		}
		return "(" + strings.Join(alts, " || ") + ")"
	case outbound.OpAtLeast:
		return fmt.Sprintf("%s >= %s", clause.Field, renderValue(clause.Value))
	case outbound.OpAtMost:
		return fmt.Sprintf("%s <= %s", clause.Field, renderValue(clause.Value))
	default:
		return fmt.Sprintf("%s = %s", clause.Field, renderValue(clause.Value))
	}
}

func renderValue(v any) string {
	switch value := v.(type) {
	case string:
		return quote(value)
	case time.Time:
		return quote(value.UTC().Format(filterTimeLayout))
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case bool:
		return strconv.FormatBool(value)
	default:
		return quote(fmt.Sprint(value))
	}
}

func quote(s string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
	return `"` + escaped + `"`
}

// renderSort renders a sort key, "-" prefixed for descending
func renderSort(sort outbound.Sort) string {
	if sort.Field == "" {
		return ""
	}
	if sort.Descending {
		return "-" + sort.Field
	}
	return sort.Field
}
