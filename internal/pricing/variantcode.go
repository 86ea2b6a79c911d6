package pricing

import (
	"sort"
	"strconv"
	"strings"

	"ofmlcore/internal/property"
)

// buildVariantCode concatenates, in ascending sort_order, the canonical
// string form of every selected property whose sort_order > 0. Properties
// with sort_order == 0, or with no selection at all, are omitted.
func buildVariantCode(defs []*property.Definition, selections map[string]string) string {
	type part struct {
		order int
		value string
	}
	var parts []part
	for _, d := range defs {
		if d.SortOrder <= 0 {
			continue
		}
		v, ok := selections[d.Name]
		if !ok {
			continue
		}
		parts = append(parts, part{order: d.SortOrder, value: canonicalValue(d, v)})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].order < parts[j].order })

	values := make([]string, len(parts))
	for i, p := range parts {
		values[i] = p.value
	}
	return strings.Join(values, "_")
}

func canonicalValue(d *property.Definition, raw string) string {
	switch d.Kind {
	case property.KindBool:
		return canonicalBool(raw)
	case property.KindFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return formatFloat(f)
		}
		return raw
	default:
		return raw
	}
}

func canonicalBool(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ja", "true", "1", "yes":
		return "1"
	default:
		return "0"
	}
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}
