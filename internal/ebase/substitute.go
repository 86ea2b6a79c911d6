package ebase

import (
	"regexp"
	"strconv"
	"strings"
)

var substPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*):-([^}]*)\}`)

// substitute expands every ${NAME:-DEFAULT} occurrence in src to the float
// value of vars[NAME] when present, or to the literal default text
// otherwise. Substitution runs before tokenization so the expanded values
// participate directly in arithmetic.
func substitute(src string, vars map[string]float64) string {
	return substPattern.ReplaceAllStringFunc(src, func(m string) string {
		groups := substPattern.FindStringSubmatch(m)
		name, def := groups[1], groups[2]
		if v, ok := vars[name]; ok {
			return formatFloat(v)
		}
		return def
	})
}

func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(v, 'f', -1, 64), "0"), ".")
}
