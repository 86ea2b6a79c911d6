package family

import (
	"path/filepath"

	"ofmlcore/internal/fsdiscover"
)

// LoadAll discovers every manufacturer directory under root and loads each
// one's Result concurrently, keyed by manufacturer name. Corrupt files
// inside a manufacturer are skipped by Load itself; a manufacturer whose
// Load returns an error is left out of the map. LoadAll itself only fails
// if the manufacturer list cannot be read at all.
func LoadAll(root, lang string) (map[string]*Result, error) {
	names, err := fsdiscover.Manufacturers(root)
	if err != nil {
		return nil, err
	}

	type entry struct {
		name string
		res  *Result
		err  error
	}
	ch := make(chan entry, len(names))
	for _, name := range names {
		go func(name string) {
			res, err := Load(filepath.Join(root, name), lang)
			ch <- entry{name: name, res: res, err: err}
		}(name)
	}

	out := map[string]*Result{}
	for range names {
		e := <-ch
		if e.err != nil {
			continue
		}
		out[e.name] = e.res
	}
	return out, nil
}
