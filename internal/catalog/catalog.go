package catalog

import (
	"sort"
	"time"
	"unicode"

	"ofmlcore/internal/catdb"
)

// Catalog is the materialized, read-only projection of one pdata database.
type Catalog struct {
	Articles        map[string]Article
	Prices          map[string][]PriceRow // keyed by article number, insertion order
	ShortTexts      map[string][]ShortText // keyed by text number
	PropertyClasses PropertyClassMap
	ValueConditions []ValueCondition

	// QualityFlags lists article numbers whose article number or short-text
	// reference contains a control character outside \t\r\n; the rows are
	// retained verbatim, never repaired.
	QualityFlags []string
}

// Table names as laid out by the pdata/oam binary format.
const (
	TableArticle    = "article"
	TablePrice      = "price"
	TableShortText  = "text"
	TablePropClass  = "propclass"
	TableValueCond  = "valuecond"
)

// Load materializes a Catalog from an open catdb.Reader. Tables that are
// absent from the database are treated as empty rather than an error.
func Load(r *catdb.Reader) (*Catalog, error) {
	c := &Catalog{
		Articles:        map[string]Article{},
		Prices:          map[string][]PriceRow{},
		ShortTexts:      map[string][]ShortText{},
		PropertyClasses: PropertyClassMap{},
	}

	if err := c.loadArticles(r); err != nil {
		return nil, err
	}
	if err := c.loadPrices(r); err != nil {
		return nil, err
	}
	if err := c.loadShortTexts(r); err != nil {
		return nil, err
	}
	if err := c.loadValueConditions(r); err != nil {
		return nil, err
	}

	return c, nil
}

func hasTable(r *catdb.Reader, name string) bool {
	for _, t := range r.Tables() {
		if t == name {
			return true
		}
	}
	return false
}

func (c *Catalog) loadArticles(r *catdb.Reader) error {
	if !hasTable(r, TableArticle) {
		return nil
	}
	rows, err := r.ReadRecords(TableArticle, 0)
	if err != nil {
		return err
	}
	for _, row := range rows {
		artno := row["artno"].String()
		a := Article{
			ArticleNo:    artno,
			SeriesCode:   row["series"].String(),
			ArticleType:  row["type"].String(),
			ShortTextRef: row["textnr"].String(),
			Manufacturer: row["manufacturer"].String(),
		}
		if classes := row["propclasses"].String(); classes != "" {
			a.PropertyClasses = splitCSV(classes)
			c.PropertyClasses[artno] = a.PropertyClasses
		}
		if containsControl(artno) || containsControl(a.ShortTextRef) {
			c.QualityFlags = append(c.QualityFlags, artno)
		}
		c.Articles[artno] = a
	}
	return nil
}

func (c *Catalog) loadPrices(r *catdb.Reader) error {
	if !hasTable(r, TablePrice) {
		return nil
	}
	rows, err := r.ReadRecords(TablePrice, 0)
	if err != nil {
		return err
	}
	for _, row := range rows {
		artno := row["artno"].String()
		p := PriceRow{
			ArticleNo:   artno,
			Level:       ParsePriceLevel(row["level"].String()),
			VariantCond: row["variantcond"].String(),
			Amount:      row["amount"].Float(),
			Currency:    row["currency"].String(),
			IsFixed:     row["isfixed"].Int() != 0,
		}
		if from := row["datefrom"].String(); from != "" {
			if t, err := time.Parse("2006-01-02", from); err == nil {
				p.DateFrom = &t
			}
		}
		if to := row["dateto"].String(); to != "" {
			if t, err := time.Parse("2006-01-02", to); err == nil {
				p.DateTo = &t
			}
		}
		if q := row["scaleqty"].Int(); q != 0 {
			qi := int(q)
			p.ScaleQty = &qi
		}
		c.Prices[artno] = append(c.Prices[artno], p)
	}
	return nil
}

func (c *Catalog) loadShortTexts(r *catdb.Reader) error {
	if !hasTable(r, TableShortText) {
		return nil
	}
	rows, err := r.ReadRecords(TableShortText, 0)
	if err != nil {
		return err
	}
	for _, row := range rows {
		textnr := row["textnr"].String()
		st := ShortText{TextNr: textnr, Lang: row["lang"].String(), Text: row["text"].String()}
		c.ShortTexts[textnr] = append(c.ShortTexts[textnr], st)
	}
	return nil
}

func (c *Catalog) loadValueConditions(r *catdb.Reader) error {
	if !hasTable(r, TableValueCond) {
		return nil
	}
	rows, err := r.ReadRecords(TableValueCond, 0)
	if err != nil {
		return err
	}
	for _, row := range rows {
		c.ValueConditions = append(c.ValueConditions, ValueCondition{
			PropertyClass: row["propclass"].String(),
			PropertyValue: row["value"].String(),
			VariantCond:   row["variantcond"].String(),
			CompositeKey:  row["compositekey"].String(),
		})
	}
	return nil
}

// BasePrice returns the unconditional "B" row for article valid on date,
// ties broken by latest DateFrom.
func (c *Catalog) BasePrice(article string, date time.Time) (PriceRow, bool) {
	var best *PriceRow
	for i := range c.Prices[article] {
		p := &c.Prices[article][i]
		if p.Level != LevelBase || p.VariantCond != "" || !p.validOn(date) {
			continue
		}
		if best == nil || laterDateFrom(*p, *best) {
			best = p
		}
	}
	if best == nil {
		return PriceRow{}, false
	}
	return *best, true
}

func laterDateFrom(a, b PriceRow) bool {
	if a.DateFrom == nil {
		return false
	}
	if b.DateFrom == nil {
		return true
	}
	return a.DateFrom.After(*b.DateFrom)
}

// Surcharges returns every "X" row for article, in table insertion order.
func (c *Catalog) Surcharges(article string) []PriceRow {
	var out []PriceRow
	for _, p := range c.Prices[article] {
		if p.Level == LevelSurcharge {
			out = append(out, p)
		}
	}
	return out
}

// ShortDescription resolves an exact (textnr, lang) match, falling back to
// the text whose language code sorts first for that text number.
func (c *Catalog) ShortDescription(textnr, lang string) (string, bool) {
	texts := c.ShortTexts[textnr]
	if len(texts) == 0 {
		return "", false
	}
	for _, t := range texts {
		if t.Lang == lang {
			return t.Text, true
		}
	}
	sorted := append([]ShortText(nil), texts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lang < sorted[j].Lang })
	return sorted[0].Text, true
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func containsControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) && r != '\t' && r != '\r' && r != '\n' {
			return true
		}
	}
	return false
}
