package family

import (
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"

	"ofmlcore/internal/catalog"
	"ofmlcore/internal/catdb"
	"ofmlcore/internal/fsdiscover"
	"ofmlcore/internal/logging"
	"ofmlcore/internal/oam"
	"ofmlcore/internal/property"
	"ofmlcore/internal/relation"
)

type catalogFileResult struct {
	path string
	cat  *catalog.Catalog
	rel  *relation.Set
	err  error
}

// Load runs the catalog, mapping, and property pipelines concurrently over
// root, merges them deterministically, and groups the merged articles into
// families. A root that does not exist yields an empty, non-error Result.
func Load(root, lang string) (*Result, error) {
	var wg sync.WaitGroup
	var cat *catalog.Catalog
	var rel *relation.Set
	var skipped []string
	var mappings *oam.Index
	var props *property.Index
	var catErr, oamErr, propErr error

	wg.Add(3)
	go func() {
		defer wg.Done()
		cat, rel, skipped, catErr = loadCatalogs(root)
	}()
	go func() {
		defer wg.Done()
		mappings, oamErr = oam.Load(root)
	}()
	go func() {
		defer wg.Done()
		props, propErr = property.Load(root)
	}()
	wg.Wait()

	if catErr != nil {
		return nil, catErr
	}
	if oamErr != nil {
		return nil, oamErr
	}
	if propErr != nil {
		return nil, propErr
	}

	r := &Result{
		Catalog:    cat,
		Relations:  rel,
		Mappings:   mappings,
		Properties: props,
		Skipped:    skipped,
	}
	r.Families = groupFamilies(cat, lang)
	return r, nil
}

// loadCatalogs finds every pdata file under root, opens and decodes each
// concurrently (one goroutine per file), then merges sequentially in
// lexicographic path order so the result does not depend on goroutine
// scheduling.
func loadCatalogs(root string) (*catalog.Catalog, *relation.Set, []string, error) {
	files, err := fsdiscover.FindFiles(root, "pdata")
	if err != nil {
		return nil, nil, nil, err
	}

	results := make([]catalogFileResult, len(files))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = readCatalogFile(path)
		}(i, path)
	}
	wg.Wait()

	merged := &catalog.Catalog{
		Articles:        map[string]catalog.Article{},
		Prices:          map[string][]catalog.PriceRow{},
		ShortTexts:      map[string][]catalog.ShortText{},
		PropertyClasses: catalog.PropertyClassMap{},
	}
	mergedRel := &relation.Set{}
	var skipped []string

	for _, res := range results {
		if res.err != nil {
			logging.L().Warn("skipping corrupt catalog file", zap.String("path", res.path), zap.Error(res.err))
			skipped = append(skipped, res.path)
			continue
		}
		mergeCatalog(merged, res.cat)
		mergedRel.Rules = append(mergedRel.Rules, res.rel.Rules...)
	}
	return merged, mergedRel, skipped, nil
}

func readCatalogFile(path string) catalogFileResult {
	r, err := catdb.Open(path)
	if err != nil {
		return catalogFileResult{path: path, err: err}
	}
	defer r.Close()

	cat, err := catalog.Load(r)
	if err != nil {
		return catalogFileResult{path: path, err: err}
	}
	rel, err := relation.Load(r)
	if err != nil {
		return catalogFileResult{path: path, err: err}
	}
	return catalogFileResult{path: path, cat: cat, rel: rel}
}

func mergeCatalog(dst, src *catalog.Catalog) {
	for k, v := range src.Articles {
		dst.Articles[k] = v
	}
	for k, v := range src.Prices {
		dst.Prices[k] = append(dst.Prices[k], v...)
	}
	for k, v := range src.ShortTexts {
		dst.ShortTexts[k] = append(dst.ShortTexts[k], v...)
	}
	for k, v := range src.PropertyClasses {
		dst.PropertyClasses[k] = v
	}
	dst.ValueConditions = append(dst.ValueConditions, src.ValueConditions...)
	dst.QualityFlags = append(dst.QualityFlags, src.QualityFlags...)
}

// groupFamilies groups merged articles by series code, choosing a base
// article per spec.md's tie-break rule: lowest article number, or the
// member whose property-class set is a superset of all members', with
// lexicographic tie-breaking when ambiguous.
func groupFamilies(cat *catalog.Catalog, lang string) map[string]*Family {
	bySeries := map[string][]catalog.Article{}
	for _, a := range cat.Articles {
		bySeries[a.SeriesCode] = append(bySeries[a.SeriesCode], a)
	}

	families := map[string]*Family{}
	for series, members := range bySeries {
		sort.Slice(members, func(i, j int) bool { return members[i].ArticleNo < members[j].ArticleNo })

		base := pickBaseArticle(members)
		classSet := map[string]bool{}
		var memberNos []string
		for _, m := range members {
			memberNos = append(memberNos, m.ArticleNo)
			for _, c := range m.PropertyClasses {
				classSet[c] = true
			}
		}
		classes := make([]string, 0, len(classSet))
		for c := range classSet {
			classes = append(classes, c)
		}
		sort.Strings(classes)

		name, _ := cat.ShortDescription(base.ShortTextRef, lang)
		if name == "" {
			name = series
		}

		families[series] = &Family{
			ID:              series,
			DisplayName:     name,
			BaseArticle:     base.ArticleNo,
			Members:         memberNos,
			PropertyClasses: classes,
			VariantCount:    len(members),
			Configurable:    len(classes) > 0,
		}
	}
	return families
}

// pickBaseArticle prefers a member whose property-class set contains every
// other member's set, taking the first such member in article-number order
// when several qualify; if none qualifies, it falls back to the lowest
// article number. members is already sorted ascending by article number,
// so that fallback is simply members[0].
func pickBaseArticle(members []catalog.Article) catalog.Article {
	if len(members) == 1 {
		return members[0]
	}

	sets := make([]map[string]bool, len(members))
	for i, m := range members {
		s := map[string]bool{}
		for _, c := range m.PropertyClasses {
			s[c] = true
		}
		sets[i] = s
	}

	for i := range members {
		if isSupersetOfAll(sets[i], sets) {
			return members[i]
		}
	}
	return members[0]
}

func isSupersetOfAll(candidate map[string]bool, all []map[string]bool) bool {
	for _, other := range all {
		for k := range other {
			if !candidate[k] {
				return false
			}
		}
	}
	return true
}
