package tracker

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CurrencyItemID is the item id of the valuation currency, used for the
// synthetic delta pushed by manual profit adjustments.
const CurrencyItemID = 995

// AccountLedger is the durable record for one account-profile identity.
// It is mutated only by the reconciliation engine, once per tick, and
// persisted on session end or profile switch.
type AccountLedger struct {
	PlayerName  string `json:"player_name,omitempty"`
	AccountHash int64  `json:"account_hash"`
	ProfileType string `json:"profile_type"`

	// SessionID is regenerated whenever a tracking session starts or the
	// ledger is reset, so downstream consumers can correlate profit events.
	SessionID string `json:"session_id"`

	StartTimeMs int64 `json:"start_time_ms"`
	TicksOnline int64 `json:"ticks_online"`

	ProfitAccumulated int64 `json:"profit_accumulated"`

	StartingPossessions *Possessions `json:"starting_possessions"`
	CurrentPossessions  *Possessions `json:"current_possessions"`

	// ItemDifferenceAccumulated is the running sum of every net
	// profit-affecting delta ever applied. It is an independently
	// recomputable source of truth for ProfitAccumulated.
	ItemDifferenceAccumulated ItemCollection `json:"item_difference_accumulated"`

	// LastPossessionChange is the most recent nonzero delta, kept so an
	// operator can undo one bad classification.
	LastPossessionChange ItemCollection `json:"last_possession_change,omitempty"`
}

// NewAccountLedger creates a fresh ledger for an account-profile identity
// with empty snapshots and zero profit.
func NewAccountLedger(accountHash int64, profileType string) *AccountLedger {
	return &AccountLedger{
		AccountHash:               accountHash,
		ProfileType:               profileType,
		SessionID:                 uuid.NewString(),
		StartTimeMs:               time.Now().UnixMilli(),
		StartingPossessions:       NewPossessions(),
		CurrentPossessions:        NewPossessions(),
		ItemDifferenceAccumulated: make(ItemCollection),
	}
}

// AccountKey derives the stable storage key for an account-profile
// identity. ok is false when the account hash is unavailable, which means
// nobody is logged in. Profile type distinguishes worlds where the same
// account holds separate possessions, such as seasonal game modes.
func AccountKey(accountHash int64, profileType string) (string, bool) {
	if accountHash == -1 {
		return "", false
	}
	return fmt.Sprintf("record_%d_%s", accountHash, profileType), true
}

// Key returns the ledger's storage key.
func (l *AccountLedger) Key() string {
	key, _ := AccountKey(l.AccountHash, l.ProfileType)
	return key
}

// normalize repairs a ledger deserialized from storage: nil snapshots and
// collections become empty ones so no caller needs nil checks.
func (l *AccountLedger) normalize() {
	if l.StartingPossessions == nil {
		l.StartingPossessions = NewPossessions()
	}
	if l.CurrentPossessions == nil {
		l.CurrentPossessions = NewPossessions()
	}
	if l.ItemDifferenceAccumulated == nil {
		l.ItemDifferenceAccumulated = make(ItemCollection)
	}
	if l.SessionID == "" {
		l.SessionID = uuid.NewString()
	}
}

// Reset clears accumulated profit, time, and the accumulated delta, and
// begins a new tracking session. Current possessions survive a soft reset
// so tracking resumes without re-observing every container; a hard reset
// clears them too, forcing re-observation. Hard resets exist so a player
// cannot disable tracking, acquire items, re-enable it, and bank the
// difference as instant profit.
func (l *AccountLedger) Reset(hard bool) {
	l.SessionID = uuid.NewString()
	l.StartTimeMs = time.Now().UnixMilli()
	l.TicksOnline = 0
	l.ProfitAccumulated = 0
	l.StartingPossessions = NewPossessions()
	l.ItemDifferenceAccumulated = make(ItemCollection)
	l.LastPossessionChange = nil
	if hard {
		l.CurrentPossessions = NewPossessions()
	}
}

// ManualAdjust nudges accumulated profit by the given amount and folds a
// matching synthetic currency delta into the accumulated item difference,
// so later recomputations from the accumulated delta do not revert the
// adjustment.
func (l *AccountLedger) ManualAdjust(amount int64) {
	adjustment := ItemCollection{CurrencyItemID: amount}
	l.ItemDifferenceAccumulated = Sum(l.ItemDifferenceAccumulated, adjustment)
	l.ProfitAccumulated += amount
	l.LastPossessionChange = adjustment
}

// ObserveInventoryAndEquipment records a fresh inventory capture, filling
// the starting snapshot lazily the first time the container becomes known.
func (l *AccountLedger) ObserveInventoryAndEquipment(items ItemCollection) {
	if !l.StartingPossessions.InventoryAndEquipment.Known {
		l.StartingPossessions.InventoryAndEquipment = KnownContainer(items.Clone())
	}
	l.CurrentPossessions.InventoryAndEquipment = KnownContainer(items)
}

// ObserveBank records a fresh bank capture.
func (l *AccountLedger) ObserveBank(items ItemCollection) {
	if !l.StartingPossessions.Bank.Known {
		l.StartingPossessions.Bank = KnownContainer(items.Clone())
	}
	l.CurrentPossessions.Bank = KnownContainer(items)
}

// ObserveMarketOffers records a fresh market-offer capture.
func (l *AccountLedger) ObserveMarketOffers(items ItemCollection) {
	if !l.StartingPossessions.MarketOffers.Known {
		l.StartingPossessions.MarketOffers = KnownContainer(items.Clone())
	}
	l.CurrentPossessions.MarketOffers = KnownContainer(items)
}

// ObserveUnobservableStorage records an inferred unobservable-storage
// state.
func (l *AccountLedger) ObserveUnobservableStorage(items ItemCollection) {
	if !l.StartingPossessions.UnobservableStorage.Known {
		l.StartingPossessions.UnobservableStorage = KnownContainer(items.Clone())
	}
	l.CurrentPossessions.UnobservableStorage = KnownContainer(items)
}
