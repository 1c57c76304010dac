package app

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	pricedash "github.com/jumpingbeanltd/price-dashboard"
	"github.com/jumpingbeanltd/price-dashboard/pkg/batch"
	"github.com/jumpingbeanltd/price-dashboard/pkg/pricing"
)

// printer formats prices and counts with locale-aware separators.
var printer = message.NewPrinter(language.BritishEnglish)

// refreshedDashboard returns the dashboard with a fresh record set.
func (a *App) refreshedDashboard(ctx context.Context) (*pricedash.Dashboard, error) {
	d, err := a.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	if err := d.Refresh(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// NewPricesCommand lists the reconciled records with their derived prices.
func (a *App) NewPricesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prices",
		Short: "List reconciled records with derived selling prices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.refreshedDashboard(cmd.Context())
			if err != nil {
				return err
			}

			quotes, err := d.Quotes()
			if err != nil {
				return err
			}

			rule := d.Rule()
			rate, date := d.FXRate()
			if rate != nil {
				printer.Fprintf(cmd.OutOrStdout(), "Rule: %s  Rate: %.4f (%s)\n\n", rule, *rate, date)
			} else {
				printer.Fprintf(cmd.OutOrStdout(), "Rule: %s  Rate: unavailable\n\n", rule)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SKU\tNAME\tPRICE\tPROFIT\tMARKUP")
			for _, q := range quotes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					q.SKU, q.DisplayName,
					formatPrice(q.Value, q.Overridden),
					formatMoney(q.Profit),
					formatPercent(q.Diagnostics.MarkupPercent))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			printer.Fprintf(cmd.OutOrStdout(), "\n%d records\n", len(quotes))
			return nil
		},
	}
}

// NewRuleCommand shows or sets the pricing-rule selection.
func (a *App) NewRuleCommand() *cobra.Command {
	ruleCmd := &cobra.Command{
		Use:   "rule",
		Short: "Show or set the pricing rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.Rule())
			return nil
		},
	}

	ruleCmd.AddCommand(&cobra.Command{
		Use:   "set <converted | markup <percent>>",
		Short: "Set the pricing rule",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rule pricing.Rule
			switch args[0] {
			case "converted":
				rule = pricing.SecondaryConverted()
			case "markup":
				if len(args) != 2 {
					return fmt.Errorf("markup requires a percentage argument")
				}
				pct, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("invalid markup percentage %q", args[1])
				}
				rule = pricing.MarkupPercent(pct)
			default:
				return fmt.Errorf("unknown rule %q (want converted or markup)", args[0])
			}

			d, err := a.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			if err := d.SetRule(rule); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule set to %s\n", rule)
			return nil
		},
	})

	return ruleCmd
}

// NewOverrideCommand sets or clears manual price overrides.
func (a *App) NewOverrideCommand() *cobra.Command {
	overrideCmd := &cobra.Command{
		Use:   "override",
		Short: "Manage manual price overrides",
	}

	overrideCmd.AddCommand(&cobra.Command{
		Use:   "set <sku> <price>",
		Short: "Override the derived price for a SKU",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid price %q", args[1])
			}
			d, err := a.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			if err := d.SetOverride(args[0], price); err != nil {
				return err
			}
			printer.Fprintf(cmd.OutOrStdout(), "Override set: %s = %.2f\n", args[0], price)
			return nil
		},
	})

	overrideCmd.AddCommand(&cobra.Command{
		Use:   "clear <sku>",
		Short: "Clear the override for a SKU",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			if err := d.ClearOverride(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Override cleared: %s\n", args[0])
			return nil
		},
	})

	return overrideCmd
}

// NewPushCommand propagates prices or stock levels to the write sinks.
func (a *App) NewPushCommand() *cobra.Command {
	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Propagate data to the write sinks",
	}

	pushCmd.AddCommand(&cobra.Command{
		Use:   "prices [sku...]",
		Short: "Push derived prices to the inventory system",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.refreshedDashboard(cmd.Context())
			if err != nil {
				return err
			}

			skus := args
			if len(skus) == 0 {
				skus = allSKUs(d)
			}

			results, err := d.PushPrices(cmd.Context(), skus)
			if err != nil {
				return err
			}
			return printResults(cmd, results)
		},
	})

	pushCmd.AddCommand(&cobra.Command{
		Use:   "stock [sku...]",
		Short: "Push stock quantities to the storefront",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.refreshedDashboard(cmd.Context())
			if err != nil {
				return err
			}

			skus := args
			if len(skus) == 0 {
				skus = allSKUs(d)
			}

			results, err := d.PushStock(cmd.Context(), skus)
			if err != nil {
				return err
			}
			return printResults(cmd, results)
		},
	})

	return pushCmd
}

// NewRewriteCommand rewrites product copy and pushes it to the storefront.
func (a *App) NewRewriteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rewrite <sku...>",
		Short: "Rewrite product copy and push it to the storefront",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.refreshedDashboard(cmd.Context())
			if err != nil {
				return err
			}

			results, err := d.RewriteCopy(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printResults(cmd, results)
		},
	}
}

// NewDiffCommand reports the key-population difference between sources.
func (a *App) NewDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Report SKUs present in only one source sheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.refreshedDashboard(cmd.Context())
			if err != nil {
				return err
			}

			report := d.Diff()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Only in primary (%d):\n", len(report.OnlyInA))
			for _, sku := range report.OnlyInA {
				fmt.Fprintf(out, "  %s\n", sku)
			}
			fmt.Fprintf(out, "Only in secondary (%d):\n", len(report.OnlyInB))
			for _, sku := range report.OnlyInB {
				fmt.Fprintf(out, "  %s\n", sku)
			}
			printer.Fprintf(out, "In both: %d\n", report.IntersectionCount)
			return nil
		},
	}
}

// NewVersionCommand prints version information.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "pricedash %s (commit %s, built %s)\n", a.version, a.commit, a.date)
			return nil
		},
	}
}

// allSKUs returns every reconciled SKU in record order.
func allSKUs(d *pricedash.Dashboard) []string {
	records := d.Records()
	skus := make([]string, 0, len(records))
	for _, rec := range records {
		skus = append(skus, rec.SKU)
	}
	return skus
}

// printResults renders a batch outcome, one line per item.
func printResults(cmd *cobra.Command, results []batch.Result) error {
	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Success {
			fmt.Fprintf(out, "ok    %s\n", r.Key)
		} else {
			fmt.Fprintf(out, "fail  %s: %s\n", r.Key, r.Error)
		}
	}

	succeeded, failed := batch.Tally(results)
	printer.Fprintf(out, "%d succeeded, %d failed\n", succeeded, failed)
	return nil
}

func formatPrice(v *float64, overridden bool) string {
	s := formatMoney(v)
	if overridden {
		s += "*"
	}
	return s
}

func formatMoney(v *float64) string {
	if v == nil {
		return "-"
	}
	return printer.Sprintf("%.2f", *v)
}

func formatPercent(v *float64) string {
	if v == nil {
		return "-"
	}
	return printer.Sprintf("%.1f%%", *v)
}
