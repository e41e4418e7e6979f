package tracker

import (
	"math"
)

// PriceMode selects how the oracle's base price is adjusted before use.
// The percentages mirror the common sell-price tiers of the source economy:
// full exchange price, taxed exchange price, and the shop tiers.
type PriceMode string

const (
	PriceModeExchange      PriceMode = "exchange"       // full exchange price
	PriceModeExchangeTaxed PriceMode = "exchange_taxed" // 98%, rounded up
	PriceModeHighAlch      PriceMode = "high_alch"      // 60%
	PriceModeShopSpecial   PriceMode = "shop_special"   // 55%
	PriceModeLowAlch       PriceMode = "low_alch"       // 40%
	PriceModeShopOverstock PriceMode = "shop_overstock" // 10%
)

var priceModeMultipliers = map[PriceMode]float64{
	PriceModeExchange:      1.0,
	PriceModeExchangeTaxed: 0.98,
	PriceModeHighAlch:      0.60,
	PriceModeShopSpecial:   0.55,
	PriceModeLowAlch:       0.40,
	PriceModeShopOverstock: 0.10,
}

// ValuationConfig is the data definition for the valuation system.
type ValuationConfig struct {
	// Mode selects the price tier used for all valuations.
	Mode PriceMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	// CompositeItems lists container item ids whose constituent entries are
	// resolved through the CompositeSource and expanded before substitution
	// and pricing.
	CompositeItems []int `json:"composite_items,omitempty" yaml:"composite_items,omitempty"`
	// Substitution holds the untradeable replacement rules.
	Substitution map[int]*SubstitutionRule `json:"substitution,omitempty" yaml:"substitution,omitempty"`
}

// Valuer prices item collections against a host price oracle. It owns the
// composite expansion and untradeable substitution steps, which must run in
// that order before any price lookup.
type Valuer struct {
	config     *ValuationConfig
	subs       *SubstitutionTable
	composites map[int]bool
}

// NewValuer builds a valuation system from its config.
func NewValuer(config *ValuationConfig) *Valuer {
	if config == nil {
		config = &ValuationConfig{}
	}
	if config.Mode == "" {
		config.Mode = PriceModeExchange
	}
	composites := make(map[int]bool, len(config.CompositeItems))
	for _, id := range config.CompositeItems {
		composites[id] = true
	}
	return &Valuer{
		config:     config,
		subs:       NewSubstitutionTable(config.Substitution),
		composites: composites,
	}
}

// Substitution exposes the table for snapshot-level application by the
// reconciliation engine.
func (v *Valuer) Substitution() *SubstitutionTable {
	return v.subs
}

// Value prices a collection: composite containers expand to their
// constituents, untradeables substitute to their equivalents, and the
// remainder is summed as quantity times adjusted unit price. Items the
// oracle does not know contribute zero and are logged at debug level.
func (v *Valuer) Value(logger Logger, oracle PriceOracle, comps CompositeSource, items ItemCollection) int64 {
	if len(items) == 0 {
		return 0
	}
	expanded := v.expandComposites(logger, comps, items)
	substituted := v.subs.Apply(expanded)

	var total int64
	for id, qty := range substituted {
		total += qty * v.unitPrice(logger, oracle, id)
	}
	return total
}

// unitPrice resolves the adjusted unit price for one item id.
func (v *Valuer) unitPrice(logger Logger, oracle PriceOracle, itemID int) int64 {
	if itemID < EmptySlotItemID {
		logger.Warn("bad item id %d, valuing as 0", itemID)
		return 0
	}
	if itemID == EmptySlotItemID {
		return 0
	}
	if rule := v.subs.Rule(itemID); rule != nil && rule.Derived != nil {
		return v.derivedUnitPrice(logger, oracle, rule.Derived)
	}
	base := oracle.Price(itemID)
	if base == 0 {
		logger.Debug("no price for item %d, valuing as 0", itemID)
		return 0
	}
	return adjustPrice(base, v.config.Mode)
}

func (v *Valuer) derivedUnitPrice(logger Logger, oracle PriceOracle, d *DerivedPrice) int64 {
	if d.Divisor == 0 {
		logger.Warn("derived price rule has zero divisor, valuing as 0")
		return 0
	}
	minuend := adjustPrice(oracle.Price(d.MinuendID), v.config.Mode)
	subtrahend := adjustPrice(oracle.Price(d.SubtrahendID), v.config.Mode)
	price := (minuend - subtrahend) / d.Divisor
	if price < 0 {
		return 0
	}
	return price
}

// adjustPrice applies the mode multiplier to a base price. The taxed
// exchange tier rounds the proceeds up (the 2% tax truncates); the shop
// tiers truncate.
func adjustPrice(base int64, mode PriceMode) int64 {
	mult, ok := priceModeMultipliers[mode]
	if !ok || mult == 1.0 {
		return base
	}
	if mode == PriceModeExchangeTaxed {
		return int64(math.Ceil(float64(base) * mult))
	}
	return int64(math.Floor(float64(base) * mult))
}

// expandComposites replaces composite container entries with their resolved
// constituents. An unresolvable composite stays in place and prices as an
// ordinary item.
func (v *Valuer) expandComposites(logger Logger, comps CompositeSource, items ItemCollection) ItemCollection {
	if len(v.composites) == 0 || comps == nil {
		return items
	}
	var out ItemCollection
	for id := range items {
		if !v.composites[id] {
			continue
		}
		contents := comps.Contents(id)
		if contents == nil {
			logger.Debug("composite item %d has no resolvable contents", id)
			continue
		}
		if out == nil {
			out = items.Clone()
		}
		// One expansion per container regardless of stack size: these
		// containers do not stack in practice.
		delete(out, id)
		for _, s := range contents {
			if s.ItemID == EmptySlotItemID || s.Quantity == 0 {
				continue
			}
			out[s.ItemID] += s.Quantity
			if out[s.ItemID] == 0 {
				delete(out, s.ItemID)
			}
		}
	}
	if out == nil {
		return items
	}
	return out
}
