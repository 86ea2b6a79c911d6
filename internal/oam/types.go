// Package oam reads the auxiliary mapping databases that link catalog
// articles to OFML geometry classes and property values to material codes.
package oam

// ClassMapping is the article -> OFML-class mapping for one article number.
type ClassMapping struct {
	ArticleNo  string
	ClassName  string // fully-qualified OFML class name
	Geometry   string // geometry name
	InitParams string // initialization-parameter string
}

// MaterialMapping is the property-value -> material-code mapping for one
// (property class, property value) pair.
type MaterialMapping struct {
	PropertyClass string
	PropertyValue string
	MaterialCode  string
}

// Index is the merged result of scanning a manufacturer tree for oam
// databases.
type Index struct {
	Classes   map[string]ClassMapping
	Materials []MaterialMapping
	// Conflicts records files that failed to read, keyed by basename, as
	// non-fatal diagnostics rather than aborting the whole load.
	Conflicts []string
}

func newIndex() *Index {
	return &Index{Classes: map[string]ClassMapping{}}
}
