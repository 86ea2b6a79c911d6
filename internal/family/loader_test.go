package family

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ofmlcore/internal/testdb"
)

func articleTable(rows []map[string]interface{}) testdb.TableDef {
	return testdb.TableDef{
		Name: "article",
		Columns: []testdb.ColDef{
			{Name: "artno", Type: testdb.TypeString, Size: 4},
			{Name: "series", Type: testdb.TypeString, Size: 4},
			{Name: "type", Type: testdb.TypeString, Size: 4},
			{Name: "textnr", Type: testdb.TypeString, Size: 4},
			{Name: "manufacturer", Type: testdb.TypeString, Size: 4},
			{Name: "propclasses", Type: testdb.TypeString, Size: 4},
		},
		Rows: rows,
	}
}

func textTable(rows []map[string]interface{}) testdb.TableDef {
	return testdb.TableDef{
		Name: "text",
		Columns: []testdb.ColDef{
			{Name: "textnr", Type: testdb.TypeString, Size: 4},
			{Name: "lang", Type: testdb.TypeString, Size: 4},
			{Name: "text", Type: testdb.TypeString, Size: 4},
		},
		Rows: rows,
	}
}

func TestLoadGroupsFamiliesAndPicksBaseArticle(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "acme", "chairs")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	tables := []testdb.TableDef{
		articleTable([]map[string]interface{}{
			{"artno": "A200", "series": "S1", "type": "chair", "textnr": "T1", "manufacturer": "acme", "propclasses": "PG_COLOR"},
			{"artno": "A100", "series": "S1", "type": "chair", "textnr": "T1", "manufacturer": "acme", "propclasses": "PG_COLOR,PG_SIZE"},
		}),
		textTable([]map[string]interface{}{
			{"textnr": "T1", "lang": "DE", "text": "Stuhl"},
		}),
	}
	require.NoError(t, testdb.Write(filepath.Join(dir, "pdata"), tables))

	res, err := Load(root, "DE")
	require.NoError(t, err)
	require.Empty(t, res.Skipped)

	fam, ok := res.Families["S1"]
	require.True(t, ok)
	require.ElementsMatch(t, []string{"A100", "A200"}, fam.Members)
	require.Equal(t, "A100", fam.BaseArticle) // superset of property classes
	require.Equal(t, "Stuhl", fam.DisplayName)
	require.Equal(t, []string{"PG_COLOR", "PG_SIZE"}, fam.PropertyClasses)
}

func TestLoadSkipsCorruptCatalogFile(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "acme", "chairs")
	bad := filepath.Join(root, "acme", "tables")
	require.NoError(t, os.MkdirAll(good, 0o755))
	require.NoError(t, os.MkdirAll(bad, 0o755))

	require.NoError(t, testdb.Write(filepath.Join(good, "pdata"), []testdb.TableDef{
		articleTable([]map[string]interface{}{
			{"artno": "A1", "series": "S1", "type": "chair", "textnr": "", "manufacturer": "acme", "propclasses": ""},
		}),
	}))
	require.NoError(t, os.WriteFile(filepath.Join(bad, "pdata"), []byte("garbage"), 0o644))

	res, err := Load(root, "DE")
	require.NoError(t, err)
	require.Len(t, res.Skipped, 1)
	require.Contains(t, res.Catalog.Articles, "A1")
}

func TestLoadMissingRootYieldsEmptyResult(t *testing.T) {
	res, err := Load(filepath.Join(t.TempDir(), "absent"), "DE")
	require.NoError(t, err)
	require.Empty(t, res.Catalog.Articles)
	require.Empty(t, res.Families)
}
