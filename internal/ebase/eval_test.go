package ebase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateSimpleImport(t *testing.T) {
	e := New()
	res, err := e.Evaluate(`"table_top" 1 1 1 imp`, nil)
	require.NoError(t, err)
	require.Equal(t, ResultImport, res.Kind)
	require.Equal(t, "table_top", res.Import.Filename)
	require.Equal(t, [3]float64{1, 1, 1}, res.Import.Scale)
}

func TestEvaluateSubstitutionAndArithmetic(t *testing.T) {
	e := New()
	res, err := e.Evaluate(`"panel" ${W:-100} 1000 / ${D:-100} 1000 / 1 imp`, map[string]float64{"W": 1600, "D": 800})
	require.NoError(t, err)
	require.Equal(t, ResultImport, res.Kind)
	require.Equal(t, "panel", res.Import.Filename)
	require.InDelta(t, 1.6, res.Import.Scale[0], 1e-9)
	require.InDelta(t, 0.8, res.Import.Scale[1], 1e-9)
	require.InDelta(t, 1.0, res.Import.Scale[2], 1e-9)
}

func TestEvaluateSubstitutionDefault(t *testing.T) {
	e := New()
	res, err := e.Evaluate(`"panel" ${W:-100} 1000 / 1 1 imp`, nil)
	require.NoError(t, err)
	require.InDelta(t, 0.1, res.Import.Scale[0], 1e-9)
}

func TestEvaluateConditional(t *testing.T) {
	e := New()
	res, err := e.Evaluate(`1 1 == { "a" } { "b" } ifelse 1 1 1 imp`, nil)
	require.NoError(t, err)
	require.Equal(t, "a", res.Import.Filename)
}

func TestEvaluateConditionalFalseBranch(t *testing.T) {
	e := New()
	res, err := e.Evaluate(`1 2 == { "a" } { "b" } ifelse 1 1 1 imp`, nil)
	require.NoError(t, err)
	require.Equal(t, "b", res.Import.Filename)
}

func TestEvaluateIfOnly(t *testing.T) {
	e := New()
	res, err := e.Evaluate(`1 1 == { "x" } if egms`, nil)
	require.NoError(t, err)
	require.Equal(t, ResultEgms, res.Kind)
	require.Equal(t, "x", res.Egms.Name)
}

func TestEvaluateClsRef(t *testing.T) {
	e := New()
	res, err := e.Evaluate(`1 2 3 "MyClass" clsref`, nil)
	require.NoError(t, err)
	require.Equal(t, ResultClsRef, res.Kind)
	require.Equal(t, "MyClass", res.ClsRef.Class)
	require.Equal(t, []float64{1, 2, 3}, res.ClsRef.Params)
}

func TestEvaluateEgms(t *testing.T) {
	e := New()
	res, err := e.Evaluate(`"hinge" egms`, nil)
	require.NoError(t, err)
	require.Equal(t, ResultEgms, res.Kind)
	require.Equal(t, "hinge", res.Egms.Name)
}

func TestEvaluateNoTerminalYieldsNone(t *testing.T) {
	e := New()
	res, err := e.Evaluate(`1 2 +`, nil)
	require.NoError(t, err)
	require.Equal(t, ResultNone, res.Kind)
}

func TestEvaluateStackUnderflow(t *testing.T) {
	e := New()
	_, err := e.Evaluate(`+`, nil)
	require.Error(t, err)
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
}

func TestEvaluateDivisionByZero(t *testing.T) {
	e := New()
	_, err := e.Evaluate(`1 0 /`, nil)
	require.Error(t, err)
}

func TestEvaluateUnknownOperator(t *testing.T) {
	e := New()
	_, err := e.Evaluate(`1 2 frobnicate`, nil)
	require.Error(t, err)
}

func TestEvaluateExchPop(t *testing.T) {
	e := New()
	res, err := e.Evaluate(`"a" "b" exch pop egms`, nil)
	require.NoError(t, err)
	require.Equal(t, "b", res.Egms.Name)
}

func TestEvaluateIsReusableAndCaches(t *testing.T) {
	e := New()
	for i := 0; i < 3; i++ {
		res, err := e.Evaluate(`"fixed" 1 1 1 imp`, nil)
		require.NoError(t, err)
		require.Equal(t, "fixed", res.Import.Filename)
	}
}
