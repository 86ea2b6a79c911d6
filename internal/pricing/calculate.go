package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ofmlcore/internal/catalog"
	"ofmlcore/internal/family"
)

const inlineSurchargePrefix = "S_"

// CalculatePrice runs spec.md's six-step pricing algorithm against a
// loaded manufacturer Result. It returns a PriceError when no base price
// row can be resolved for the family's base article and variant code.
func CalculatePrice(res *family.Result, familyID string, config *family.FamilyConfiguration, date time.Time) (*PriceResult, error) {
	fam, ok := res.Families[familyID]
	if !ok {
		return nil, &PriceError{ArticleNo: "", VariantCode: ""}
	}

	article := fam.BaseArticle
	defs := res.PropertiesFor(familyID)
	selections := config.Selections()
	variantCode := buildVariantCode(defs, selections)

	base, warnings, ok := resolveBasePrice(res.Catalog, article, variantCode, date)
	if !ok {
		return nil, &PriceError{ArticleNo: article, VariantCode: variantCode}
	}

	surcharges := collectSurcharges(res, article, variantCode, selections)

	total := base.amount
	for _, s := range surcharges {
		if s.IsPercentage {
			total = total.Add(base.amount.Mul(s.Amount).Div(decimal.NewFromInt(100)))
		} else {
			total = total.Add(s.Amount)
		}
	}

	result := &PriceResult{
		ArticleNo:   article,
		VariantCode: variantCode,
		BasePrice:   base.amount.Round(2),
		Surcharges:  surcharges,
		Currency:    base.currency,
		Total:       total.Round(2),
		ValidFrom:   base.validFrom,
		ValidTo:     base.validTo,
		QueryDate:   date,
		warnings:    warnings,
	}
	return result, nil
}

type resolvedBase struct {
	amount    decimal.Decimal
	currency  string
	validFrom *time.Time
	validTo   *time.Time
}

// resolveBasePrice finds every "B" row matching article/variantCode/date,
// preferring the row whose variant condition equals variantCode over the
// empty-condition fallback, and emits a warning when more than one
// candidate row's validity windows overlap (Open Question 3: the row with
// the latest date_from wins).
func resolveBasePrice(cat *catalog.Catalog, article, variantCode string, date time.Time) (resolvedBase, []string, bool) {
	var candidates []catalog.PriceRow
	for _, p := range cat.Prices[article] {
		if p.Level != catalog.LevelBase {
			continue
		}
		if p.VariantCond != "" && p.VariantCond != variantCode {
			continue
		}
		candidates = append(candidates, p)
	}

	var matching []catalog.PriceRow
	for _, p := range candidates {
		if validOn(p, date) {
			matching = append(matching, p)
		}
	}
	if len(matching) == 0 {
		return resolvedBase{}, nil, false
	}

	best := matching[0]
	var warnings []string
	for _, p := range matching[1:] {
		if p.VariantCond == variantCode && best.VariantCond != variantCode {
			best = p
			continue
		}
		if p.VariantCond != variantCode && best.VariantCond == variantCode {
			continue
		}
		warnings = append(warnings, "overlapping base price rows for article "+article+", selecting latest date_from")
		if laterFrom(p, best) {
			best = p
		}
	}

	return resolvedBase{
		amount:    decimal.NewFromFloat(best.Amount),
		currency:  best.Currency,
		validFrom: best.DateFrom,
		validTo:   best.DateTo,
	}, warnings, true
}

func validOn(p catalog.PriceRow, date time.Time) bool {
	if p.DateFrom != nil && date.Before(*p.DateFrom) {
		return false
	}
	if p.DateTo != nil && date.After(*p.DateTo) {
		return false
	}
	return true
}

func laterFrom(a, b catalog.PriceRow) bool {
	if a.DateFrom == nil {
		return false
	}
	if b.DateFrom == nil {
		return true
	}
	return a.DateFrom.After(*b.DateFrom)
}

// collectSurcharges unions the inline-code and rule-engine matching
// mechanisms from spec.md §4.8 step 4, deduplicating by variant condition
// so a surcharge matched by both is applied once.
func collectSurcharges(res *family.Result, article, variantCode string, selections map[string]string) []Surcharge {
	matchedConditions := map[string]bool{}

	for _, s := range res.Catalog.Surcharges(article) {
		stripped := strings.TrimPrefix(s.VariantCond, inlineSurchargePrefix)
		for _, v := range selections {
			if stripped != "" && strings.Contains(v, stripped) {
				matchedConditions[s.VariantCond] = true
				break
			}
		}
	}

	if res.Relations != nil {
		assignment := map[string]string{"M_ARTNO": strings.ToUpper(article)}
		for name, value := range selections {
			assignment[strings.ToUpper(name)] = strings.ToUpper(value)
		}
		for _, vc := range res.Relations.Evaluate(assignment) {
			matchedConditions[vc] = true
		}
	}

	var surcharges []Surcharge
	for _, s := range res.Catalog.Surcharges(article) {
		if !matchedConditions[s.VariantCond] {
			continue
		}
		surcharges = append(surcharges, Surcharge{
			Name:         s.VariantCond,
			Amount:       decimal.NewFromFloat(s.Amount),
			IsPercentage: !s.IsFixed,
		})
	}
	return surcharges
}
