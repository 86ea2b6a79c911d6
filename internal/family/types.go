// Package family is the per-manufacturer entry point: it runs the
// catalog, mapping, and property pipelines over a manufacturer's data
// tree concurrently, merges their results deterministically, and groups
// articles into product families.
package family

import (
	"ofmlcore/internal/catalog"
	"ofmlcore/internal/oam"
	"ofmlcore/internal/property"
	"ofmlcore/internal/relation"
)

// Family is a derived aggregate of catalog articles sharing a series code.
type Family struct {
	ID              string // series code
	DisplayName     string
	BaseArticle     string
	Members         []string
	PropertyClasses []string
	VariantCount    int
	Configurable    bool
}

// Result is the fully merged, queryable state for one manufacturer root.
type Result struct {
	Catalog   *catalog.Catalog
	Relations *relation.Set
	Mappings  *oam.Index
	Properties *property.Index
	Families  map[string]*Family
	// Skipped records corrupt files that were logged and excluded from the
	// merge rather than aborting the load.
	Skipped []string
}

// FamilyConfiguration is a mutable assignment of property name to selected
// value (string form), scoped to one family.
type FamilyConfiguration struct {
	FamilyID   string
	selections map[string]string
}

// NewConfiguration returns an empty configuration for the given family.
func NewConfiguration(familyID string) *FamilyConfiguration {
	return &FamilyConfiguration{FamilyID: familyID, selections: map[string]string{}}
}

func (c *FamilyConfiguration) Get(name string) (string, bool) {
	v, ok := c.selections[name]
	return v, ok
}

func (c *FamilyConfiguration) Set(name, value string) {
	c.selections[name] = value
}

// Selections returns a copy of the current property assignment.
func (c *FamilyConfiguration) Selections() map[string]string {
	out := make(map[string]string, len(c.selections))
	for k, v := range c.selections {
		out[k] = v
	}
	return out
}

// PropertiesFor returns the property definitions applicable to a family,
// i.e. those whose Category matches one of the family's property classes.
func (r *Result) PropertiesFor(familyID string) []*property.Definition {
	fam, ok := r.Families[familyID]
	if !ok || r.Properties == nil {
		return nil
	}
	classSet := make(map[string]bool, len(fam.PropertyClasses))
	for _, c := range fam.PropertyClasses {
		classSet[c] = true
	}

	var defs []*property.Definition
	for _, d := range r.Properties.Definitions {
		if classSet[d.Category] {
			defs = append(defs, d)
		}
	}
	return defs
}

// ArticlesFor returns the catalog articles belonging to a family.
func (r *Result) ArticlesFor(familyID string) []catalog.Article {
	fam, ok := r.Families[familyID]
	if !ok {
		return nil
	}
	out := make([]catalog.Article, 0, len(fam.Members))
	for _, artno := range fam.Members {
		if a, ok := r.Catalog.Articles[artno]; ok {
			out = append(out, a)
		}
	}
	return out
}
