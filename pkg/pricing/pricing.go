// Package pricing derives selling prices from reconciled records. The
// engine is pure and override-unaware: manual override precedence is the
// orchestration layer's job, keeping the numeric core deterministic.
//
// Conversion follows the trade sheet's convention: the rate is expressed as
// source-per-target, so a source amount divided by the rate yields the
// target amount. A missing or zero rate prices to nil, never to Inf.
package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jumpingbeanltd/price-dashboard/pkg/errors"
	"github.com/jumpingbeanltd/price-dashboard/pkg/reconcile"
)

// Kind discriminates the pricing rule variants.
type Kind string

const (
	// KindSecondaryConverted sells at the converted secondary cost.
	KindSecondaryConverted Kind = "secondary_converted"
	// KindMarkupPercent sells at the converted secondary cost plus a
	// percentage markup.
	KindMarkupPercent Kind = "markup_percent"
)

// Rule is a tagged pricing rule variant. Percent is only meaningful for
// KindMarkupPercent.
type Rule struct {
	Kind    Kind
	Percent float64
}

// SecondaryConverted returns the rule selling at the converted secondary cost.
func SecondaryConverted() Rule {
	return Rule{Kind: KindSecondaryConverted}
}

// MarkupPercent returns the rule applying an n percent markup on top of the
// converted secondary cost.
func MarkupPercent(n float64) Rule {
	return Rule{Kind: KindMarkupPercent, Percent: n}
}

// String encodes the rule for persistence in the selection store.
func (r Rule) String() string {
	switch r.Kind {
	case KindMarkupPercent:
		return fmt.Sprintf("%s:%g", KindMarkupPercent, r.Percent)
	default:
		return string(KindSecondaryConverted)
	}
}

// ParseRule decodes a rule previously encoded with String.
func ParseRule(s string) (Rule, error) {
	switch {
	case s == string(KindSecondaryConverted):
		return SecondaryConverted(), nil
	case strings.HasPrefix(s, string(KindMarkupPercent)+":"):
		raw := strings.TrimPrefix(s, string(KindMarkupPercent)+":")
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Rule{}, errors.WrapParse("rule", s, err)
		}
		return MarkupPercent(n), nil
	default:
		return Rule{}, errors.NewParseError("rule", s, "unknown pricing rule", nil)
	}
}

// Convert translates a source-currency amount into the target currency.
// Returns nil when the rate is missing or zero.
func Convert(amount float64, fxRate *float64) *float64 {
	if fxRate == nil || *fxRate == 0 {
		return nil
	}
	v := amount / *fxRate
	return &v
}

// RoundToIncrement rounds v to the nearest multiple of inc, half away from
// zero. An increment of zero or less applies no rounding.
func RoundToIncrement(v, inc float64) float64 {
	if inc <= 0 {
		return v
	}
	return math.Round(v/inc) * inc
}

// Derive computes the selling price for a merged record under the given
// rule. Returns nil when the record cannot be priced (missing or zero
// conversion rate). Same inputs always produce the same output.
func Derive(rec reconcile.Merged, rule Rule, fxRate *float64, roundingIncrement float64) *float64 {
	converted := Convert(rec.SecondaryCost, fxRate)
	if converted == nil {
		return nil
	}

	price := *converted
	if rule.Kind == KindMarkupPercent {
		price *= 1 + rule.Percent/100
	}

	price = RoundToIncrement(price, roundingIncrement)
	return &price
}

// Profit is the margin between a selling price and the converted primary
// cost. Nil when either side cannot be computed.
func Profit(sellingPrice *float64, primaryCost float64, fxRate *float64) *float64 {
	if sellingPrice == nil {
		return nil
	}
	convertedCost := Convert(primaryCost, fxRate)
	if convertedCost == nil {
		return nil
	}
	v := *sellingPrice - *convertedCost
	return &v
}

// Diagnostics holds the informational markup figures for a record,
// independent of the selected rule. Both costs are source-currency, so no
// conversion is involved.
type Diagnostics struct {
	Diff          float64
	MarkupPercent *float64
}

// Diagnose computes the cost difference and markup percentage between the
// secondary and primary costs. MarkupPercent is nil when the primary cost
// is zero.
func Diagnose(rec reconcile.Merged) Diagnostics {
	d := Diagnostics{Diff: rec.SecondaryCost - rec.PrimaryCost}
	if rec.PrimaryCost != 0 {
		pct := d.Diff / rec.PrimaryCost * 100
		d.MarkupPercent = &pct
	}
	return d
}
