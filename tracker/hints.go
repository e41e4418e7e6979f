package tracker

import (
	"strings"
)

// TickHints is the immutable per-tick flag set the reconciliation engine
// consumes. It is constructed fresh each tick by the HintClassifier (or by
// any host that prefers to build it directly) and never mutated by the
// engine.
type TickHints struct {
	InventoryChanged bool
	BankChanged      bool
	MarketChanged    bool
	RunePouchChanged bool

	DepositInProgress      bool
	BankUIOpen             bool
	MarketUIOpen           bool
	UntrackedStorageUIOpen bool

	// SkipThisTick marks a tick whose delta is a known internal transfer
	// with unknown net effect; the engine absorbs the new state without
	// counting profit.
	SkipThisTick bool
}

// Relevant reports whether anything happened this tick that reconciliation
// needs to look at. The steady state is false, and the engine's fast path
// depends on it.
func (h TickHints) Relevant() bool {
	return h.InventoryChanged || h.BankChanged || h.MarketChanged || h.RunePouchChanged
}

// StorageKind labels the storage interface categories the classifier
// understands.
type StorageKind string

const (
	StorageBank       StorageKind = "bank"
	StorageMarket     StorageKind = "market"
	StorageDepositBox StorageKind = "deposit_box"
	StorageUntracked  StorageKind = "untracked"
)

// ContainerKind labels host container-change notifications.
type ContainerKind string

const (
	ContainerInventory ContainerKind = "inventory"
	ContainerEquipment ContainerKind = "equipment"
	ContainerBank      ContainerKind = "bank"
)

// TriggerEffect is what a menu-action trigger rule does when it matches.
type TriggerEffect string

const (
	// EffectDeposit flags a deposit in progress, so this tick's losses are
	// attributed to the bank even though no bank interface refreshed.
	EffectDeposit TriggerEffect = "deposit"
	// EffectDepositUntracked attributes the change to unobservable storage.
	EffectDepositUntracked TriggerEffect = "deposit_untracked"
	// EffectEnsureTracked cancels a pending skip: the interaction moves
	// items through a container whose net effect is visible and must count.
	EffectEnsureTracked TriggerEffect = "ensure_tracked"
)

// TriggerRule matches host menu actions by verb prefix, and optionally by
// the item interacted with or a substring of the action target. Rules are
// data, not code: the dozens of special-cased storage items live in config.
type TriggerRule struct {
	Verbs          []string      `json:"verbs" yaml:"verbs"`
	Items          []int         `json:"items,omitempty" yaml:"items,omitempty"`
	TargetContains string        `json:"target_contains,omitempty" yaml:"target_contains,omitempty"`
	MarketOnly     bool          `json:"market_only,omitempty" yaml:"market_only,omitempty"`
	Effect         TriggerEffect `json:"effect" yaml:"effect"`
}

func (r *TriggerRule) matches(verb, target string, itemID int, marketOpen bool) bool {
	if r.MarketOnly && !marketOpen {
		return false
	}
	if len(r.Items) > 0 {
		found := false
		for _, id := range r.Items {
			if id == itemID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.TargetContains != "" && !strings.Contains(target, r.TargetContains) {
		return false
	}
	verb = strings.ToLower(verb)
	for _, v := range r.Verbs {
		if strings.HasPrefix(verb, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// ClassifierConfig is the data definition for the host event classifier.
type ClassifierConfig struct {
	// StorageInterfaces maps host interface group ids to storage kinds.
	StorageInterfaces map[int]StorageKind `json:"storage_interfaces,omitempty" yaml:"storage_interfaces,omitempty"`
	// Triggers are evaluated in order against every menu action; every
	// matching rule's effect is applied.
	Triggers []*TriggerRule `json:"triggers,omitempty" yaml:"triggers,omitempty"`
}

// HintClassifier turns host-specific signals into the engine's hint flags.
// It accumulates observations between ticks and emits one immutable
// TickHints value per tick; EndTick clears the per-tick state.
//
// Interface close is deferred: items can still move between containers on
// the tick after an interface closes, so a close only takes effect at the
// end of the next tick. Opening any storage interface applies a pending
// close immediately, which keeps rapid interface switches from desyncing.
type HintClassifier struct {
	config *ClassifierConfig

	bankOpen       bool
	marketOpen     bool
	depositBoxOpen bool
	untrackedOpen  bool
	closingKind    StorageKind

	inventoryChanged bool
	bankChanged      bool
	marketChanged    bool
	runePouchChanged bool

	depositing          bool
	depositingUntracked bool
	pendingSkip         bool
}

// NewHintClassifier builds a classifier from config.
func NewHintClassifier(config *ClassifierConfig) *HintClassifier {
	if config == nil {
		config = &ClassifierConfig{}
	}
	return &HintClassifier{config: config}
}

// StorageOpened handles a host interface-open notification.
func (c *HintClassifier) StorageOpened(groupID int) {
	kind, ok := c.config.StorageInterfaces[groupID]
	if !ok {
		return
	}
	// Flipping between storages tick after tick complicates attribution,
	// so a pending close is applied as soon as any storage opens.
	c.applyPendingClose()
	switch kind {
	case StorageBank:
		c.bankOpen = true
	case StorageMarket:
		c.marketOpen = true
		c.marketChanged = true
	case StorageDepositBox:
		c.depositBoxOpen = true
	case StorageUntracked:
		c.untrackedOpen = true
	}
}

// StorageClosed handles a host interface-close notification. The close is
// recorded but only applied at the end of the next tick, because item
// transfers can still land after the interface disappears.
func (c *HintClassifier) StorageClosed(groupID int) {
	kind, ok := c.config.StorageInterfaces[groupID]
	if !ok {
		return
	}
	c.closingKind = kind
}

// ContainerChanged handles a host container-content change notification.
func (c *HintClassifier) ContainerChanged(kind ContainerKind) {
	switch kind {
	case ContainerInventory, ContainerEquipment:
		c.inventoryChanged = true
		// Market collection boxes emit no container event of their own,
		// but inventory movement while the market is open implies the
		// offers changed too.
		if c.marketOpen && c.closingKind != StorageMarket {
			c.marketChanged = true
		}
	case ContainerBank:
		c.bankChanged = true
	}
}

// MarketOfferChanged handles a host market-offer state notification.
func (c *HintClassifier) MarketOfferChanged() {
	if c.marketOpen && c.closingKind != StorageMarket {
		c.marketChanged = true
	}
}

// RunePouchChanged handles a host notification that composite pouch
// contents shifted.
func (c *HintClassifier) RunePouchChanged() {
	c.runePouchChanged = true
}

// RequestSkip marks the next emitted hints as an internal transfer whose
// net effect must not count as profit.
func (c *HintClassifier) RequestSkip() {
	c.pendingSkip = true
}

// MenuAction classifies a host menu click against the trigger table.
func (c *HintClassifier) MenuAction(verb, target string, itemID int) {
	for _, rule := range c.config.Triggers {
		if !rule.matches(verb, target, itemID, c.marketOpen) {
			continue
		}
		switch rule.Effect {
		case EffectDeposit:
			c.depositing = true
		case EffectDepositUntracked:
			c.depositingUntracked = true
		case EffectEnsureTracked:
			c.pendingSkip = false
		}
	}
}

// Hints assembles the immutable hint set for the current tick.
func (c *HintClassifier) Hints() TickHints {
	return TickHints{
		InventoryChanged:       c.inventoryChanged,
		BankChanged:            c.bankChanged,
		MarketChanged:          c.marketChanged,
		RunePouchChanged:       c.runePouchChanged,
		DepositInProgress:      c.depositing || c.depositBoxOpen,
		BankUIOpen:             c.bankOpen,
		MarketUIOpen:           c.marketOpen,
		UntrackedStorageUIOpen: c.untrackedOpen || c.depositingUntracked,
		SkipThisTick:           c.pendingSkip,
	}
}

// EndTick clears per-tick observation state and applies any deferred
// interface close.
//
// The intent flags set by triggers (depositing, depositingUntracked,
// pendingSkip) stay armed across ticks where no container changed: the
// container event for a click often lands one tick after the click itself,
// and clearing the intent early would misclassify that transfer as real
// profit or loss. A tick with container changes consumes them.
func (c *HintClassifier) EndTick() {
	consumed := c.inventoryChanged || c.bankChanged || c.marketChanged || c.runePouchChanged
	c.inventoryChanged = false
	c.bankChanged = false
	c.marketChanged = false
	c.runePouchChanged = false
	if consumed {
		c.depositing = false
		c.depositingUntracked = false
		c.pendingSkip = false
	}
	c.applyPendingClose()
}

func (c *HintClassifier) applyPendingClose() {
	switch c.closingKind {
	case StorageBank:
		c.bankOpen = false
	case StorageMarket:
		c.marketOpen = false
	case StorageDepositBox:
		c.depositBoxOpen = false
	case StorageUntracked:
		c.untrackedOpen = false
	}
	c.closingKind = ""
}
