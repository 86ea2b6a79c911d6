// Package export serializes a priced configuration to the saved-
// configuration JSON schema a collaborator (the CLI or TUI) persists to
// disk. The core itself writes nothing; this package only shapes the
// payload.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ofmlcore/internal/pricing"
)

type surchargePayload struct {
	Name         string  `json:"name"`
	Amount       string  `json:"amount"`
	IsPercentage bool    `json:"is_percentage,omitempty"`
}

// Configuration is the saved-configuration JSON schema from spec.md §6.
type Configuration struct {
	Manufacturer  string              `json:"manufacturer"`
	Article       string              `json:"article"`
	ArticleNumber string              `json:"article_number,omitempty"`
	VariantCode   string              `json:"variant_code"`
	Properties    map[string]string   `json:"properties"`
	BasePrice     string              `json:"base_price,omitempty"`
	Surcharges    []surchargePayload  `json:"surcharges,omitempty"`
	TotalPrice    string              `json:"total_price,omitempty"`
	Currency      string              `json:"currency,omitempty"`
	PriceDate     string              `json:"price_date,omitempty"`
	SubArticles   []*Configuration    `json:"sub_articles,omitempty"`
	ExportedAt    string              `json:"exported_at"`
}

// FromPriceResult builds the JSON payload for one priced configuration.
// price may be nil, in which case the price-related fields are omitted
// and the properties alone are exported, matching the "null price result"
// behavior of spec.md §7.
func FromPriceResult(manufacturer string, price *pricing.PriceResult, selections map[string]string, exportedAt time.Time) *Configuration {
	cfg := &Configuration{
		Manufacturer: manufacturer,
		Properties:   selections,
		ExportedAt:   exportedAt.Format(time.RFC3339),
	}
	if price == nil {
		return cfg
	}

	cfg.Article = price.ArticleNo
	cfg.ArticleNumber = price.ArticleNo
	cfg.VariantCode = price.VariantCode
	cfg.BasePrice = formatGerman(price.BasePrice.InexactFloat64())
	cfg.TotalPrice = formatGerman(price.Total.InexactFloat64())
	cfg.Currency = price.Currency
	cfg.PriceDate = price.QueryDate.Format("2006-01-02")

	for _, s := range price.Surcharges {
		cfg.Surcharges = append(cfg.Surcharges, surchargePayload{
			Name:         s.Name,
			Amount:       formatGerman(s.Amount.InexactFloat64()),
			IsPercentage: s.IsPercentage,
		})
	}
	return cfg
}

// MarshalJSONIndent renders the configuration as indented JSON text.
func (c *Configuration) MarshalJSONIndent() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// formatGerman renders a decimal amount as "1.234,56": thousands
// separated by '.', fraction separated by ','.
func formatGerman(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := grouped.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
