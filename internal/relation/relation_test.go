package relation

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ofmlcore/internal/catdb"
	"ofmlcore/internal/testdb"
)

func TestLoadAndEvaluateFromDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.pdata")
	tables := []testdb.TableDef{
		{
			Name: tableRelation,
			Columns: []testdb.ColDef{
				{Name: "variantcond", Type: testdb.TypeString, Size: 4},
				{Name: "expression", Type: testdb.TypeString, Size: 4},
			},
			Rows: []map[string]interface{}{
				{"variantcond": "PG_ADJUSTABLE_SEAT", "expression": `M_SEAT = "YES"`},
				{"variantcond": "PG_LAN", "expression": `COLOR = "white" OR COLOR = "black"`},
			},
		},
	}
	require.NoError(t, testdb.Write(path, tables))

	r, err := catdb.Open(path)
	require.NoError(t, err)
	defer r.Close()

	set, err := Load(r)
	require.NoError(t, err)
	require.Len(t, set.Rules, 2)

	matched := set.Evaluate(map[string]string{"M_ARTNO": "4711", "COLOR": "white"})
	require.Contains(t, matched, "PG_LAN")
	require.NotContains(t, matched, "PG_ADJUSTABLE_SEAT")
}

func TestLoadMissingTableYieldsEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.pdata")
	require.NoError(t, testdb.Write(path, nil))

	r, err := catdb.Open(path)
	require.NoError(t, err)
	defer r.Close()

	set, err := Load(r)
	require.NoError(t, err)
	require.Empty(t, set.Rules)
}

func TestComparisonMissingPropertyIsUnknown(t *testing.T) {
	e, err := parseRule(`M_SEAT = "YES"`)
	require.NoError(t, err)
	require.Equal(t, tsUnknown, e.eval(map[string]string{"M_ARTNO": "4711"}))
}

func TestRuleEngineMissingPropertyScenario(t *testing.T) {
	e, err := parseRule(`M_SEAT = "YES"`)
	require.NoError(t, err)
	set := &Set{Rules: []Rule{{VariantCondition: "PG_ADJUSTABLE_SEAT", Expr: e}}}

	matched := set.Evaluate(map[string]string{"M_ARTNO": "4711"})
	require.NotContains(t, matched, "PG_ADJUSTABLE_SEAT")
}

func TestComparisonCaseInsensitiveStrings(t *testing.T) {
	e, err := parseRule(`COLOR = "white"`)
	require.NoError(t, err)
	require.Equal(t, tsTrue, e.eval(map[string]string{"COLOR": "White"}))
}

func TestComparisonNumeric(t *testing.T) {
	e, err := parseRule(`HEIGHT > 700`)
	require.NoError(t, err)
	require.Equal(t, tsTrue, e.eval(map[string]string{"HEIGHT": "720"}))
	require.Equal(t, tsFalse, e.eval(map[string]string{"HEIGHT": "650"}))
}

func TestInExpression(t *testing.T) {
	e, err := parseRule(`COLOR IN ("white", "black")`)
	require.NoError(t, err)
	require.Equal(t, tsTrue, e.eval(map[string]string{"COLOR": "black"}))
	require.Equal(t, tsFalse, e.eval(map[string]string{"COLOR": "red"}))
	require.Equal(t, tsUnknown, e.eval(map[string]string{}))
}

func TestAndOrNotThreeValuedLogic(t *testing.T) {
	and, err := parseRule(`M_SEAT = "YES" AND COLOR = "white"`)
	require.NoError(t, err)
	require.Equal(t, tsUnknown, and.eval(map[string]string{"COLOR": "white"}))
	require.Equal(t, tsFalse, and.eval(map[string]string{"COLOR": "black"}))

	or, err := parseRule(`M_SEAT = "YES" OR COLOR = "white"`)
	require.NoError(t, err)
	require.Equal(t, tsTrue, or.eval(map[string]string{"COLOR": "white"}))
	require.Equal(t, tsUnknown, or.eval(map[string]string{"COLOR": "black"}))

	not, err := parseRule(`NOT M_SEAT = "YES"`)
	require.NoError(t, err)
	require.Equal(t, tsUnknown, not.eval(map[string]string{}))
	require.Equal(t, tsFalse, not.eval(map[string]string{"M_SEAT": "YES"}))
}
