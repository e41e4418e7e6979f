package tracker

import (
	"context"
	"errors"
)

var (
	ErrBadInput        = errors.New("bad input")
	ErrInternal        = errors.New("internal error occurred")
	ErrNoAccount       = errors.New("no account profile active")
	ErrNotLoggedIn     = errors.New("account hash unavailable, not logged in")
	ErrConfigNotFound  = errors.New("config file not found")
	ErrConfigInvalid   = errors.New("config file is invalid")
	ErrSystemShutdown  = errors.New("tracker has been shut down")
	ErrLedgerNotActive = errors.New("no ledger loaded for reconciliation")
)

// Logger is the minimal printf-style logging contract the tracker codes
// against. The host supplies an implementation; NewZapLogger adapts a zap
// logger for hosts that have no logging infrastructure of their own.
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})

	// WithField returns a logger with the given key/value pair attached to
	// all subsequent messages.
	WithField(key string, v interface{}) Logger
}

// PriceOracle supplies unit prices in the valuation currency. A price of 0
// means the item is unknown to the oracle and contributes no value.
type PriceOracle interface {
	Price(itemID int) int64
}

// CompositeSource resolves the current constituent entries of a composite
// container item, such as a rune pouch whose contents are not part of any
// observable inventory slot. Implementations return nil when the contents
// cannot be resolved.
type CompositeSource interface {
	Contents(itemID int) []ItemStack
}

// SnapshotSource captures container contents from the host environment.
// Each capture returns ok=false when the container is not currently
// observable; the engine treats that as an observation gap, never an error.
type SnapshotSource interface {
	CaptureInventoryAndEquipment() (ItemCollection, bool)
	CaptureBank() (ItemCollection, bool)
	CaptureMarketOffers() (ItemCollection, bool)
}

// PersistenceGateway durably stores one AccountLedger per account key.
//
// Load returns (nil, nil) when no ledger exists for the key, and must also
// do so for unreadable or corrupt records: a torn or malformed record is
// indistinguishable from no record at all. Save failures are non-fatal and
// only logged by callers.
type PersistenceGateway interface {
	Load(ctx context.Context, accountKey string) (*AccountLedger, error)
	Save(ctx context.Context, accountKey string, ledger *AccountLedger) error
}
