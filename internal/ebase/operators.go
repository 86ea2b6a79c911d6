package ebase

func applyOperator(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	switch tok.str {
	case "+", "-", "*", "/":
		return applyArith(tok, stack)
	case "neg":
		return applyNeg(tok, stack)
	case "==", "!=", "<", ">", "<=", ">=":
		return applyCompare(tok, stack)
	case "and", "or":
		return applyLogic(tok, stack)
	case "not":
		return applyNot(tok, stack)
	case "dup":
		return applyDup(tok, stack)
	case "pop":
		return applyPop(tok, stack)
	case "exch":
		return applyExch(tok, stack)
	case "if":
		return applyIf(tok, stack)
	case "ifelse":
		return applyIfElse(tok, stack)
	case "imp":
		return applyImp(tok, stack)
	case "clsref":
		return applyClsRef(tok, stack)
	case "egms":
		return applyEgms(tok, stack)
	default:
		return stack, EvalResult{}, errAt(tok.pos, "unknown operator %q", tok.str)
	}
}

func popN(tok token, stack []stackValue, n int) ([]stackValue, []stackValue, error) {
	if len(stack) < n {
		return stack, nil, errAt(tok.pos, "stack underflow: need %d value(s) for %q, have %d", n, tok.str, len(stack))
	}
	vals := append([]stackValue(nil), stack[len(stack)-n:]...)
	return stack[:len(stack)-n], vals, nil
}

func popNumber(tok token, stack []stackValue) ([]stackValue, float64, error) {
	stack, vals, err := popN(tok, stack, 1)
	if err != nil {
		return stack, 0, err
	}
	if vals[0].kind != vNumber {
		return stack, 0, errAt(tok.pos, "expected number operand for %q", tok.str)
	}
	return stack, vals[0].num, nil
}

func popBoolean(tok token, stack []stackValue) ([]stackValue, bool, error) {
	stack, vals, err := popN(tok, stack, 1)
	if err != nil {
		return stack, false, err
	}
	if vals[0].kind != vBoolean {
		return stack, false, errAt(tok.pos, "expected boolean operand for %q", tok.str)
	}
	return stack, vals[0].boo, nil
}

func popString(tok token, stack []stackValue) ([]stackValue, string, error) {
	stack, vals, err := popN(tok, stack, 1)
	if err != nil {
		return stack, "", err
	}
	if vals[0].kind != vString {
		return stack, "", errAt(tok.pos, "expected string operand for %q", tok.str)
	}
	return stack, vals[0].str, nil
}

func popProcedure(tok token, stack []stackValue) ([]stackValue, []token, error) {
	stack, vals, err := popN(tok, stack, 1)
	if err != nil {
		return stack, nil, err
	}
	if vals[0].kind != vProcedure {
		return stack, nil, errAt(tok.pos, "expected procedure operand for %q", tok.str)
	}
	return stack, vals[0].proc, nil
}

func applyArith(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	stack, b, err := popNumber(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	stack, a, err := popNumber(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	var r float64
	switch tok.str {
	case "+":
		r = a + b
	case "-":
		r = a - b
	case "*":
		r = a * b
	case "/":
		if b == 0 {
			return stack, EvalResult{}, errAt(tok.pos, "division by zero")
		}
		r = a / b
	}
	return append(stack, stackValue{kind: vNumber, num: r}), EvalResult{}, nil
}

func applyNeg(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	stack, a, err := popNumber(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	return append(stack, stackValue{kind: vNumber, num: -a}), EvalResult{}, nil
}

func applyCompare(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	stack, b, err := popNumber(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	stack, a, err := popNumber(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	var r bool
	switch tok.str {
	case "==":
		r = a == b
	case "!=":
		r = a != b
	case "<":
		r = a < b
	case ">":
		r = a > b
	case "<=":
		r = a <= b
	case ">=":
		r = a >= b
	}
	return append(stack, stackValue{kind: vBoolean, boo: r}), EvalResult{}, nil
}

func applyLogic(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	stack, b, err := popBoolean(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	stack, a, err := popBoolean(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	var r bool
	if tok.str == "and" {
		r = a && b
	} else {
		r = a || b
	}
	return append(stack, stackValue{kind: vBoolean, boo: r}), EvalResult{}, nil
}

func applyNot(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	stack, a, err := popBoolean(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	return append(stack, stackValue{kind: vBoolean, boo: !a}), EvalResult{}, nil
}

func applyDup(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	if len(stack) < 1 {
		return stack, EvalResult{}, errAt(tok.pos, "stack underflow for %q", tok.str)
	}
	return append(stack, stack[len(stack)-1]), EvalResult{}, nil
}

func applyPop(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	stack, _, err := popN(tok, stack, 1)
	return stack, EvalResult{}, err
}

func applyExch(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	if len(stack) < 2 {
		return stack, EvalResult{}, errAt(tok.pos, "stack underflow for %q", tok.str)
	}
	n := len(stack)
	stack[n-1], stack[n-2] = stack[n-2], stack[n-1]
	return stack, EvalResult{}, nil
}

func applyIf(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	stack, proc, err := popProcedure(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	stack, cond, err := popBoolean(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	if !cond {
		return stack, EvalResult{}, nil
	}
	return run(proc, stack)
}

func applyIfElse(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	stack, elseProc, err := popProcedure(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	stack, thenProc, err := popProcedure(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	stack, cond, err := popBoolean(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	if cond {
		return run(thenProc, stack)
	}
	return run(elseProc, stack)
}

func applyImp(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	stack, sz, err := popNumber(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	stack, sy, err := popNumber(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	stack, sx, err := popNumber(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	stack, filename, err := popString(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	return stack, EvalResult{Kind: ResultImport, Import: ImportResult{Filename: filename, Scale: [3]float64{sx, sy, sz}}}, nil
}

// applyClsRef pops the class name off the top of the stack, then collects
// every numeric value since the last string/procedure boundary as an
// ordered parameter list (the stack-consumption convention documented in
// SPEC_FULL.md for this underspecified operator).
func applyClsRef(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	stack, class, err := popString(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}

	var rev []float64
	for len(stack) > 0 && stack[len(stack)-1].kind == vNumber {
		rev = append(rev, stack[len(stack)-1].num)
		stack = stack[:len(stack)-1]
	}
	params := make([]float64, len(rev))
	for i, v := range rev {
		params[len(rev)-1-i] = v
	}

	return stack, EvalResult{Kind: ResultClsRef, ClsRef: ClsRefResult{Class: class, Params: params}}, nil
}

func applyEgms(tok token, stack []stackValue) ([]stackValue, EvalResult, error) {
	stack, name, err := popString(tok, stack)
	if err != nil {
		return stack, EvalResult{}, err
	}
	return stack, EvalResult{Kind: ResultEgms, Egms: EgmsResult{Name: name}}, nil
}
