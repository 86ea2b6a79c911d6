package oam

import (
	"fmt"
	"path/filepath"
	"sync"

	"ofmlcore/internal/catdb"
	"ofmlcore/internal/fsdiscover"
)

const (
	tableArticle2Ofml = "oam_article2ofml"
	tableProperty2Mat = "oam_property2mat"
)

type fileResult struct {
	path      string
	classes   []ClassMapping
	materials []MaterialMapping
	err       error
}

// Load recursively discovers oam database files under root and merges the
// article->class and property->material mappings they hold. Per-file reads
// run concurrently; the merge into a single Index happens sequentially,
// in the same file order FindFiles returns, so the result is deterministic
// regardless of goroutine scheduling.
func Load(root string) (*Index, error) {
	files, err := fsdiscover.FindFiles(root, "oam")
	if err != nil {
		return nil, err
	}

	results := make([]fileResult, len(files))
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			classes, materials, err := readOamFile(path)
			results[i] = fileResult{path: path, classes: classes, materials: materials, err: err}
		}(i, path)
	}
	wg.Wait()

	idx := newIndex()
	for _, res := range results {
		if res.err != nil {
			idx.Conflicts = append(idx.Conflicts, fmt.Sprintf("%s: %v", filepath.Base(res.path), res.err))
			continue
		}
		for _, c := range res.classes {
			idx.Classes[c.ArticleNo] = c
		}
		idx.Materials = append(idx.Materials, res.materials...)
	}
	return idx, nil
}

func readOamFile(path string) ([]ClassMapping, []MaterialMapping, error) {
	r, err := catdb.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	var classes []ClassMapping
	if hasTable(r, tableArticle2Ofml) {
		rows, err := r.ReadRecords(tableArticle2Ofml, 0)
		if err != nil {
			return nil, nil, err
		}
		for _, row := range rows {
			classes = append(classes, ClassMapping{
				ArticleNo:  row["articleno"].String(),
				ClassName:  row["classname"].String(),
				Geometry:   row["geometry"].String(),
				InitParams: row["initparams"].String(),
			})
		}
	}

	var materials []MaterialMapping
	if hasTable(r, tableProperty2Mat) {
		rows, err := r.ReadRecords(tableProperty2Mat, 0)
		if err != nil {
			return nil, nil, err
		}
		for _, row := range rows {
			materials = append(materials, MaterialMapping{
				PropertyClass: row["propclass"].String(),
				PropertyValue: row["propvalue"].String(),
				MaterialCode:  row["material"].String(),
			})
		}
	}

	return classes, materials, nil
}

func hasTable(r *catdb.Reader, name string) bool {
	for _, t := range r.Tables() {
		if t == name {
			return true
		}
	}
	return false
}
