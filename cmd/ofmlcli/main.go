// Package main contains the cli implementation of the tool. It uses
// cobra for cli command wiring.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"

	"ofmlcore/internal/config"
	"ofmlcore/internal/export"
	"ofmlcore/internal/family"
	"ofmlcore/internal/logging"
	"ofmlcore/internal/pricing"
	"ofmlcore/internal/registry"
)

type globalFlags struct {
	configFile string
	root       string
	verbose    bool
}

type manufacturersFlags struct {
	json bool
}

type articlesFlags struct {
	manufacturer string
	lang         string
	json         bool
}

type configureFlags struct {
	manufacturer   string
	family         string
	lang           string
	priceDate      string
	set            []string
	listProperties bool
	exportFile     string
	json           bool
}

func main() {
	defer logging.Sync()

	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "ofmlcli",
		Short: "Offline OFML product-configuration engine",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if g.verbose {
				logging.SetVerbose()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "ofmlcore.toml", "Path to the engine configuration file")
	rootCmd.PersistentFlags().StringVar(&g.root, "root", "", "OFML data root (overrides the configuration file)")
	rootCmd.PersistentFlags().BoolVar(&g.verbose, "verbose", false, "Enable verbose development-mode logging")

	rootCmd.AddCommand(manufacturersCmd(g))
	rootCmd.AddCommand(articlesCmd(g))
	rootCmd.AddCommand(configureCmd(g))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(g *globalFlags) (*config.Config, error) {
	cfg, err := config.LoadFile(g.configFile)
	if err != nil {
		return nil, err
	}
	if g.root != "" {
		cfg.Root = g.root
	}
	if cfg.Root == "" {
		return nil, fmt.Errorf("no data root configured: pass --root or set root in %s", g.configFile)
	}
	return cfg, nil
}

func manufacturersCmd(g *globalFlags) *cobra.Command {
	flags := &manufacturersFlags{}
	cmd := &cobra.Command{
		Use:   "manufacturers",
		Short: "List manufacturers available under the data root",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runManufacturers(g, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print result as JSON")
	return cmd
}

func runManufacturers(g *globalFlags, flags *manufacturersFlags) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	names, err := registry.Resolve(ctx, cfg.RegistryDSN, cfg.Root)
	if err != nil {
		return fmt.Errorf("resolve manufacturers: %w", err)
	}
	sort.Strings(names)

	if flags.json {
		return printJSON(names)
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func articlesCmd(g *globalFlags) *cobra.Command {
	flags := &articlesFlags{}
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "List families (product groups) for a manufacturer",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runArticles(g, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.manufacturer, "manufacturer", "m", "", "Manufacturer name (required)")
	cmd.Flags().StringVarP(&flags.lang, "lang", "l", "", "Language code for descriptions (defaults to the configured default)")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print result as JSON")
	return cmd
}

func runArticles(g *globalFlags, flags *articlesFlags) error {
	if flags.manufacturer == "" {
		return fmt.Errorf("--manufacturer is required")
	}
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	lang := flags.lang
	if lang == "" {
		lang = cfg.DefaultLanguage
	}

	res, err := family.Load(manufacturerRoot(cfg.Root, flags.manufacturer), lang)
	if err != nil {
		return fmt.Errorf("load manufacturer data: %w", err)
	}
	logSkipped(res.Skipped)

	ids := make([]string, 0, len(res.Families))
	for id := range res.Families {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if flags.json {
		type familyPayload struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
			BaseArticle string `json:"base_article"`
			Members     int    `json:"members"`
		}
		out := make([]familyPayload, 0, len(ids))
		for _, id := range ids {
			fam := res.Families[id]
			out = append(out, familyPayload{ID: fam.ID, DisplayName: fam.DisplayName, BaseArticle: fam.BaseArticle, Members: len(fam.Members)})
		}
		return printJSON(out)
	}

	for _, id := range ids {
		fam := res.Families[id]
		fmt.Printf("%s\t%s\t(base article %s, %d members)\n", fam.ID, fam.DisplayName, fam.BaseArticle, len(fam.Members))
	}
	return nil
}

func configureCmd(g *globalFlags) *cobra.Command {
	flags := &configureFlags{}
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure a family and compute its price",
		Long: `Applies property selections to a family's base article and prices the
resulting variant.

Examples:
  ofmlcli configure -m acme -f CHAIR01 --set COLOR=white --set SEAT=1
  ofmlcli configure -m acme -f CHAIR01 --list-properties`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigure(g, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.manufacturer, "manufacturer", "m", "", "Manufacturer name (required)")
	cmd.Flags().StringVarP(&flags.family, "family", "f", "", "Family (series) ID (required)")
	cmd.Flags().StringVarP(&flags.lang, "lang", "l", "", "Language code for descriptions")
	cmd.Flags().StringVar(&flags.priceDate, "price-date", "", "Price query date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringArrayVar(&flags.set, "set", nil, "Property selection as NAME=VALUE (repeatable)")
	cmd.Flags().BoolVar(&flags.listProperties, "list-properties", false, "List the family's configurable properties and exit")
	cmd.Flags().StringVarP(&flags.exportFile, "export", "e", "", "Write the priced configuration as JSON to this file")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print price result as JSON")
	return cmd
}

func runConfigure(g *globalFlags, flags *configureFlags) error {
	if flags.manufacturer == "" {
		return fmt.Errorf("--manufacturer is required")
	}
	if flags.family == "" {
		return fmt.Errorf("--family is required")
	}
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	lang := flags.lang
	if lang == "" {
		lang = cfg.DefaultLanguage
	}

	res, err := family.Load(manufacturerRoot(cfg.Root, flags.manufacturer), lang)
	if err != nil {
		return fmt.Errorf("load manufacturer data: %w", err)
	}
	logSkipped(res.Skipped)

	if _, ok := res.Families[flags.family]; !ok {
		return fmt.Errorf("unknown family %q for manufacturer %q", flags.family, flags.manufacturer)
	}

	if flags.listProperties {
		return printProperties(res, flags.family)
	}

	selections, err := parseSelections(flags.set)
	if err != nil {
		return err
	}
	cfgSel := family.NewConfiguration(flags.family)
	for name, value := range selections {
		cfgSel.Set(name, value)
	}

	date, err := resolveQueryDate(flags.priceDate, cfg.PriceDate)
	if err != nil {
		return err
	}

	price, priceErr := pricing.CalculatePrice(res, flags.family, cfgSel, date)
	if priceErr != nil {
		var pe *pricing.PriceError
		if !asPriceError(priceErr, &pe) {
			return fmt.Errorf("calculate price: %w", priceErr)
		}
		price = nil
	}

	if flags.exportFile != "" {
		doc := export.FromPriceResult(flags.manufacturer, price, cfgSel.Selections(), exportTimestamp())
		data, err := doc.MarshalJSONIndent()
		if err != nil {
			return fmt.Errorf("marshal export document: %w", err)
		}
		if err := os.WriteFile(flags.exportFile, data, 0o644); err != nil {
			return fmt.Errorf("write export file %q: %w", flags.exportFile, err)
		}
	}

	return printPriceResult(price, flags.json, g.verbose)
}

// asPriceError reports whether err is a *pricing.PriceError, assigning it
// to out on success.
func asPriceError(err error, out **pricing.PriceError) bool {
	pe, ok := err.(*pricing.PriceError)
	if ok {
		*out = pe
	}
	return ok
}

func printProperties(res *family.Result, familyID string) error {
	defs := res.PropertiesFor(familyID)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	for _, d := range defs {
		fmt.Printf("%s\t%s\n", d.Name, d.Label)
	}
	return nil
}

func printPriceResult(price *pricing.PriceResult, asJSON, verbose bool) error {
	if price == nil {
		if asJSON {
			return printJSON(map[string]any{"price": nil})
		}
		fmt.Println("no price available for this configuration")
		return nil
	}

	if asJSON {
		return printJSON(price)
	}

	fmt.Printf("article:      %s\n", price.ArticleNo)
	fmt.Printf("variant code: %s\n", price.VariantCode)
	fmt.Printf("base price:   %s %s\n", price.BasePrice.StringFixed(2), price.Currency)
	for _, s := range price.Surcharges {
		kind := "fixed"
		if s.IsPercentage {
			kind = "percent"
		}
		fmt.Printf("surcharge:    %s %s (%s)\n", s.Name, s.Amount.StringFixed(2), kind)
	}
	fmt.Printf("total:        %s %s\n", price.Total.StringFixed(2), price.Currency)
	if verbose {
		for _, w := range price.Warnings() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseSelections(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := splitAssignment(p)
		if !ok {
			return nil, fmt.Errorf("invalid --set value %q, expected NAME=VALUE", p)
		}
		out[name] = value
	}
	return out, nil
}

func splitAssignment(s string) (name, value string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

func resolveQueryDate(flagValue string, configured *time.Time) (time.Time, error) {
	if flagValue != "" {
		t, err := time.Parse("2006-01-02", flagValue)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --price-date %q: %w", flagValue, err)
		}
		return t, nil
	}
	if configured != nil {
		return *configured, nil
	}
	return exportTimestamp(), nil
}

func manufacturerRoot(root, manufacturer string) string {
	return filepath.Join(root, manufacturer)
}

func logSkipped(skipped []string) {
	for _, s := range skipped {
		logging.L().Sugar().Warnf("skipped corrupt data file: %s", s)
	}
}

// exportTimestamp is the "now" used when no explicit price date or export
// timestamp was requested.
func exportTimestamp() time.Time {
	return time.Now().UTC()
}
