// Package relation loads and evaluates the named variant-condition rules
// stored in a catalog database: boolean expressions over property
// assignments that resolve to the surcharge codes a configuration should
// pick up.
package relation

// Rule associates a variant-condition code with a parsed boolean
// expression tree.
type Rule struct {
	VariantCondition string
	Expr             expr
	Source           string // original expression text, kept for diagnostics
}

// Set is a loaded, ready-to-evaluate collection of rules.
type Set struct {
	Rules []Rule
}

// tristate is the three-valued logic result of evaluating an expr against
// an assignment: true, false, or unknown (an antecedent property was
// absent from the assignment).
type tristate int

const (
	tsUnknown tristate = iota
	tsTrue
	tsFalse
)

// expr is the evaluable form of a parsed rule expression. Three-valued
// propagation through eval is what gives a constant (property-free)
// subexpression its "tautology" behavior for free: a comparison between
// two literals never touches assignment and so always yields a concrete
// true/false, while a comparison against a missing property yields
// tsUnknown and can never by itself produce a match.
type expr interface {
	eval(assignment map[string]string) tristate
}
