package export

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ofmlcore/internal/pricing"
)

func TestFormatGermanThousandsAndDecimal(t *testing.T) {
	require.Equal(t, "1.234,56", formatGerman(1234.56))
	require.Equal(t, "100,00", formatGerman(100))
	require.Equal(t, "0,50", formatGerman(0.5))
	require.Equal(t, "-42,00", formatGerman(-42))
}

func TestFromPriceResultNilPriceOmitsPriceFields(t *testing.T) {
	doc := FromPriceResult("acme", nil, map[string]string{"COLOR": "white"}, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	require.Equal(t, "acme", doc.Manufacturer)
	require.Equal(t, "", doc.Article)
	require.Equal(t, "", doc.BasePrice)
	require.Equal(t, map[string]string{"COLOR": "white"}, doc.Properties)
}

func TestFromPriceResultFormatsAmounts(t *testing.T) {
	price := &pricing.PriceResult{
		ArticleNo:   "A100",
		VariantCode: "white_720",
		BasePrice:   decimal.NewFromFloat(1234.5),
		Currency:    "EUR",
		Total:       decimal.NewFromFloat(1334.5),
		QueryDate:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Surcharges: []pricing.Surcharge{
			{Name: "Aufpreis", Amount: decimal.NewFromInt(100), IsPercentage: false},
		},
	}
	doc := FromPriceResult("acme", price, map[string]string{"COLOR": "white"}, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	require.Equal(t, "1.234,50", doc.BasePrice)
	require.Equal(t, "1.334,50", doc.TotalPrice)
	require.Equal(t, "2026-01-15", doc.PriceDate)
	require.Len(t, doc.Surcharges, 1)
	require.Equal(t, "100,00", doc.Surcharges[0].Amount)

	data, err := doc.MarshalJSONIndent()
	require.NoError(t, err)
	require.Contains(t, string(data), "\"total_price\": \"1.334,50\"")
}
