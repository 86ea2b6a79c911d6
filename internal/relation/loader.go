package relation

import (
	"fmt"

	"ofmlcore/internal/catdb"
)

const tableRelation = "relation"

// Load reads the named variant-condition rules from the relation table of
// a catalog database and parses each rule's expression text. A reader
// without a relation table yields an empty, valid Set.
func Load(r *catdb.Reader) (*Set, error) {
	set := &Set{}

	found := false
	for _, t := range r.Tables() {
		if t == tableRelation {
			found = true
			break
		}
	}
	if !found {
		return set, nil
	}

	rows, err := r.ReadRecords(tableRelation, 0)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		vc := row["variantcond"].String()
		text := row["expression"].String()
		parsed, err := parseRule(text)
		if err != nil {
			return nil, fmt.Errorf("relation table: %w", err)
		}
		set.Rules = append(set.Rules, Rule{VariantCondition: vc, Expr: parsed, Source: text})
	}
	return set, nil
}

// Evaluate runs every rule against assignment and returns the
// variant-condition codes whose expression evaluates to true. Rules whose
// result is unknown or false are excluded; a rule referencing a property
// absent from assignment evaluates to unknown unless its expression is a
// tautology independent of that property.
func (s *Set) Evaluate(assignment map[string]string) []string {
	var matched []string
	for _, rule := range s.Rules {
		if rule.Expr.eval(assignment) == tsTrue {
			matched = append(matched, rule.VariantCondition)
		}
	}
	return matched
}
