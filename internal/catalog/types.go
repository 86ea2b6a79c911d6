// Package catalog projects decoded catdb table records into the domain
// entities the rest of the engine queries: articles, prices, short texts,
// and the property-class / variant-condition maps attached to them.
package catalog

import "time"

// Article is a single catalog entry keyed by article number.
type Article struct {
	ArticleNo      string
	SeriesCode     string
	ArticleType    string
	ShortTextRef   string
	PropertyClasses []string
	Manufacturer    string // optional
}

// PriceLevel identifies the kind of a PriceRow.
type PriceLevel string

const (
	LevelBase     PriceLevel = "B"
	LevelSurcharge PriceLevel = "X"
	LevelDiscount PriceLevel = "D"
	LevelUnknown  PriceLevel = ""
)

func ParsePriceLevel(s string) PriceLevel {
	switch s {
	case "B", "X", "D":
		return PriceLevel(s)
	default:
		return LevelUnknown
	}
}

// PriceRow is one row of a price table.
type PriceRow struct {
	ArticleNo       string
	Level           PriceLevel
	VariantCond     string
	Amount          float64
	Currency        string
	IsFixed         bool
	DateFrom        *time.Time
	DateTo          *time.Time
	ScaleQty        *int
}

// validOn reports whether the row's validity window covers date.
func (p PriceRow) validOn(date time.Time) bool {
	if p.DateFrom != nil && date.Before(*p.DateFrom) {
		return false
	}
	if p.DateTo != nil && date.After(*p.DateTo) {
		return false
	}
	return true
}

// ShortText is a localized article description.
type ShortText struct {
	TextNr string
	Lang   string
	Text   string
}

// PropertyClassMap maps an article number to the set of property classes
// it belongs to.
type PropertyClassMap map[string][]string

// ValueCondition is one property-value -> variant-condition mapping.
type ValueCondition struct {
	PropertyClass string
	PropertyValue string
	VariantCond   string
	CompositeKey  string // optional
}
