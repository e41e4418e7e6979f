package tracker

import (
	"math"
)

// SubstitutionRule describes how one untradeable item id is rewritten into
// priced equivalents before valuation.
//
// A rule carries either replacement stacks with a conversion ratio, or a
// derived unit price computed from other items' prices. Replacement rules
// rewrite the entry during Apply; derived rules leave the entry in place and
// are consulted by the valuer for its unit price.
type SubstitutionRule struct {
	// Replacements are emitted floor(quantity * Ratio) times each per
	// substituted entry. An empty list with a ratio simply removes the item
	// from valuation.
	Replacements []ItemStack `json:"replacements,omitempty" yaml:"replacements,omitempty"`
	Ratio        float64     `json:"ratio,omitempty" yaml:"ratio,omitempty"`

	// Derived prices the item directly instead of rewriting it.
	Derived *DerivedPrice `json:"derived,omitempty" yaml:"derived,omitempty"`
}

// DerivedPrice computes a per-unit value from two other items' prices:
// (price(Minuend) - price(Subtrahend)) / Divisor, truncated toward zero.
// Used for fractional-conversion items whose worth is defined by the gap
// between a refined and an unrefined good.
type DerivedPrice struct {
	MinuendID    int   `json:"minuend_id" yaml:"minuend_id"`
	SubtrahendID int   `json:"subtrahend_id" yaml:"subtrahend_id"`
	Divisor      int64 `json:"divisor" yaml:"divisor"`
}

// SubstitutionTable is the fixed, data-driven untradeable mapping.
type SubstitutionTable struct {
	Rules map[int]*SubstitutionRule `json:"rules" yaml:"rules"`
}

// NewSubstitutionTable builds a table from config rules. A nil rules map
// yields an empty table that substitutes nothing.
func NewSubstitutionTable(rules map[int]*SubstitutionRule) *SubstitutionTable {
	if rules == nil {
		rules = make(map[int]*SubstitutionRule)
	}
	return &SubstitutionTable{Rules: rules}
}

// Rule returns the rule for an item id, or nil when the item is tradeable.
func (t *SubstitutionTable) Rule(itemID int) *SubstitutionRule {
	if t == nil {
		return nil
	}
	return t.Rules[itemID]
}

// Apply rewrites every entry with a replacement rule into its equivalents,
// leaving tradeable and derived-price entries untouched.
//
// Truncation compounds: applying this to many small per-tick deltas loses
// more to flooring than applying it once to a large accumulated snapshot.
// Callers tracking profit must substitute at the snapshot level and treat
// per-delta substitution as an estimate only.
func (t *SubstitutionTable) Apply(items ItemCollection) ItemCollection {
	if t == nil || len(t.Rules) == 0 {
		return items.Clone()
	}
	out := make(ItemCollection, len(items))
	for id, qty := range items {
		rule := t.Rules[id]
		if rule == nil || rule.Derived != nil {
			out[id] += qty
			if out[id] == 0 {
				delete(out, id)
			}
			continue
		}
		converted := truncateRatio(qty, rule.Ratio)
		for _, repl := range rule.Replacements {
			out[repl.ItemID] += converted * repl.Quantity
			if out[repl.ItemID] == 0 {
				delete(out, repl.ItemID)
			}
		}
	}
	return out
}

// truncateRatio floors the magnitude of quantity*ratio so that negative
// delta entries truncate symmetrically with positive snapshot entries.
func truncateRatio(qty int64, ratio float64) int64 {
	scaled := float64(qty) * ratio
	if scaled < 0 {
		return -int64(math.Floor(-scaled))
	}
	return int64(math.Floor(scaled))
}
