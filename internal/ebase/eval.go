package ebase

import (
	"sync"
)

// Evaluator executes postfix expressions. An Evaluator is reusable across
// calls and caches parsed token streams keyed by source string; it is safe
// for concurrent use.
type Evaluator struct {
	mu    sync.Mutex
	cache map[string][]token
}

// New returns a ready-to-use Evaluator.
func New() *Evaluator {
	return &Evaluator{cache: map[string][]token{}}
}

// Evaluate substitutes variables, tokenizes, and runs src, returning the
// terminal EvalResult. Evaluation is strictly left-to-right, single-
// threaded, deterministic, and free of side effects.
func (e *Evaluator) Evaluate(src string, vars map[string]float64) (EvalResult, error) {
	expanded := substitute(src, vars)

	e.mu.Lock()
	tokens, ok := e.cache[expanded]
	e.mu.Unlock()
	if !ok {
		var err error
		tokens, err = tokenize(expanded)
		if err != nil {
			return EvalResult{}, err
		}
		e.mu.Lock()
		e.cache[expanded] = tokens
		e.mu.Unlock()
	}

	_, result, err := run(tokens, nil)
	if err != nil {
		return EvalResult{}, err
	}
	return result, nil
}

// run feeds tokens through the evaluation loop against stack, returning
// the updated stack and any terminal result produced along the way.
// Procedures invoked by if/ifelse recurse into run with the current
// stack, per spec: they have no lexical environment beyond the variable
// map already folded into the tokens by substitution.
func run(tokens []token, stack []stackValue) ([]stackValue, EvalResult, error) {
	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		switch tok.kind {
		case tokNumber:
			stack = append(stack, stackValue{kind: vNumber, num: tok.num})
			i++
		case tokString:
			stack = append(stack, stackValue{kind: vString, str: tok.str})
			i++
		case tokLBrace:
			j, proc, err := captureProcedure(tokens, i)
			if err != nil {
				return stack, EvalResult{}, err
			}
			stack = append(stack, stackValue{kind: vProcedure, proc: proc})
			i = j
		case tokRBrace:
			return stack, EvalResult{}, errAt(tok.pos, "unmatched '}'")
		case tokIdent:
			var result EvalResult
			var err error
			stack, result, err = applyOperator(tok, stack)
			if err != nil {
				return stack, EvalResult{}, err
			}
			if result.Kind != ResultNone {
				return stack, result, nil
			}
			i++
		}
	}
	return stack, EvalResult{}, nil
}

// captureProcedure returns the index just past the matching '}' for the
// '{' at tokens[open], and the deferred token list in between.
func captureProcedure(tokens []token, open int) (int, []token, error) {
	depth := 0
	for j := open; j < len(tokens); j++ {
		switch tokens[j].kind {
		case tokLBrace:
			depth++
		case tokRBrace:
			depth--
			if depth == 0 {
				return j + 1, tokens[open+1 : j], nil
			}
		}
	}
	return 0, nil, errAt(tokens[open].pos, "unterminated procedure")
}
