package property

import (
	"fmt"
	"path/filepath"
	"sync"

	"ofmlcore/internal/catdb"
	"ofmlcore/internal/fsdiscover"
)

const (
	tablePropDef = "propdef"
	tableOptions = "propoption"
)

// Load walks root for pdata database files, reads the property tables from
// each, and returns the merged per-manufacturer index. A corrupt file is
// skipped; the error is returned to the caller only when no file at all
// can be processed due to an unreadable root, which fsdiscover already
// treats as empty rather than an error.
func Load(root string) (*Index, error) {
	files, err := fsdiscover.FindFiles(root, "pdata")
	if err != nil {
		return nil, err
	}

	defsByFile := make([][]*Definition, len(files))
	errsByFile := make([]error, len(files))
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defsByFile[i], errsByFile[i] = readPropertyDefs(path)
		}(i, path)
	}
	wg.Wait()

	idx := newIndex()
	for i, path := range files {
		if errsByFile[i] != nil {
			idx.Conflicts = append(idx.Conflicts, fmt.Sprintf("%s: %v", filepath.Base(path), errsByFile[i]))
			continue
		}
		idx.merge(defsByFile[i])
	}
	return idx, nil
}

func readPropertyDefs(path string) ([]*Definition, error) {
	r, err := catdb.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var defs []*Definition
	if !hasTable(r, tablePropDef) {
		return defs, nil
	}

	rows, err := r.ReadRecords(tablePropDef, 0)
	if err != nil {
		return nil, err
	}

	optionsByName := map[string][]string{}
	if hasTable(r, tableOptions) {
		optRows, err := r.ReadRecords(tableOptions, 0)
		if err != nil {
			return nil, err
		}
		for _, row := range optRows {
			name := row["propname"].String()
			optionsByName[name] = append(optionsByName[name], row["value"].String())
		}
	}

	for _, row := range rows {
		name := row["name"].String()
		d := &Definition{
			Name:        name,
			Label:       row["label"].String(),
			Kind:        parseKind(row["kind"].String()),
			Min:         row["min"].Float(),
			Max:         row["max"].Float(),
			SortOrder:   int(row["sortorder"].Int()),
			Description: row["description"].String(),
			Category:    row["category"].String(),
			Visibility:  parseVisibility(row["visibility"].String()),
		}
		if d.Kind == KindChoice {
			d.Options = optionsByName[name]
		}
		defs = append(defs, d)
	}
	return defs, nil
}

func hasTable(r *catdb.Reader, name string) bool {
	for _, t := range r.Tables() {
		if t == name {
			return true
		}
	}
	return false
}

func parseKind(s string) Kind {
	switch s {
	case "int":
		return KindInt
	case "float":
		return KindFloat
	case "bool":
		return KindBool
	case "choice":
		return KindChoice
	default:
		return KindString
	}
}

func parseVisibility(s string) Visibility {
	switch s {
	case "hidden":
		return VisibleHidden
	case "readonly":
		return VisibleReadOnly
	default:
		return VisibleDefault
	}
}

// merge folds defs into the index per spec.md's merge rules: options are
// unioned preserving first-seen order, label/range come from the first
// occurrence, and a later definition with a different kind is recorded in
// idx.Conflicts rather than treated as fatal.
func (idx *Index) merge(defs []*Definition) {
	for _, d := range defs {
		existing, ok := idx.Definitions[d.Name]
		if !ok {
			cp := *d
			idx.Definitions[d.Name] = &cp
			continue
		}

		for _, opt := range d.Options {
			if !containsString(existing.Options, opt) {
				existing.Options = append(existing.Options, opt)
			}
		}

		if existing.Kind != d.Kind {
			idx.Conflicts = append(idx.Conflicts, fmt.Sprintf("property %q: kind mismatch %v vs %v, keeping first", d.Name, existing.Kind, d.Kind))
		}
	}
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
