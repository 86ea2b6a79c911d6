// Package pricing implements the configuration engine: given a family, a
// property assignment, and a query date, it computes the variant code,
// resolves the base price, applies surcharges from both the inline-code
// and rule-engine mechanisms, and totals the result.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Surcharge is one applied surcharge line.
type Surcharge struct {
	Name        string
	Amount      decimal.Decimal
	IsPercentage bool
}

// PriceResult is the outcome of a successful CalculatePrice call.
type PriceResult struct {
	ArticleNo   string
	VariantCode string
	BasePrice   decimal.Decimal
	Surcharges  []Surcharge
	Currency    string
	Total       decimal.Decimal
	ValidFrom   *time.Time
	ValidTo     *time.Time
	QueryDate   time.Time

	warnings []string
}

// Warnings surfaces data-quality notices, e.g. an overlapping price-row
// date window resolved by preferring the latest date_from. Intended for
// CLI verbose output only.
func (r *PriceResult) Warnings() []string {
	return r.warnings
}

// PriceError reports that no base price could be resolved for a
// configuration.
type PriceError struct {
	ArticleNo   string
	VariantCode string
}

func (e *PriceError) Error() string {
	return "no base price for article " + e.ArticleNo + " variant " + e.VariantCode
}
