package tracker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// EngineState is the reconciliation engine's session state.
type EngineState int

const (
	StateNotStarted EngineState = iota
	StateWarmingUp
	StateTracking
)

// EngineConfig is the data definition for the reconciliation engine.
type EngineConfig struct {
	// ResetSchedule is an optional CRON expression; when it fires the
	// active ledger soft-resets, which turns the tracker into a
	// daily/weekly profit counter.
	ResetSchedule string `json:"reset_schedule,omitempty" yaml:"reset_schedule,omitempty"`
	// RememberProfit keeps accumulated profit across sessions. When false
	// a loaded ledger is hard-reset before tracking resumes.
	RememberProfit bool `json:"remember_profit" yaml:"remember_profit"`
}

// ReconcileResult is what one tick of reconciliation produced.
type ReconcileResult struct {
	// TickProfit is the incremental profit value for this tick, for
	// transient notification. Zero on the dominant idle path.
	TickProfit int64
	// ProfitTotal is the ledger's accumulated profit after this tick.
	ProfitTotal int64
	// SessionReset reports that a scheduled reset rolled the ledger over
	// this tick, so consumers can surface the zeroed total.
	SessionReset bool
	// LedgerChanged reports whether the ledger was mutated at all.
	LedgerChanged bool
}

// Engine is the tick-driven possession-reconciliation state machine. It
// classifies container changes into internal transfers versus real
// profit-affecting activity and keeps the ledger's accumulated profit and
// item delta consistent.
//
// The engine itself performs no I/O: prices, captures and persistence all
// come through the collaborators passed per call. One engine instance
// drives one ledger at a time and is not safe for concurrent use; the
// tracker facade serializes access per account identity.
type Engine struct {
	config *EngineConfig
	valuer *Valuer

	state    EngineState
	skipNext bool

	cronParser cron.Parser
	schedule   cron.Schedule
	nextReset  time.Time
}

// NewEngine builds a reconciliation engine from its config and valuer.
func NewEngine(config *EngineConfig, valuer *Valuer) *Engine {
	if config == nil {
		config = &EngineConfig{RememberProfit: true}
	}
	e := &Engine{
		config:     config,
		valuer:     valuer,
		state:      StateNotStarted,
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
	}
	if config.ResetSchedule != "" {
		if sched, err := e.cronParser.Parse(config.ResetSchedule); err == nil {
			e.schedule = sched
			e.nextReset = sched.Next(time.Now())
		}
	}
	return e
}

// State returns the engine's current session state.
func (e *Engine) State() EngineState {
	return e.state
}

// StartSession begins (or restarts) a tracking session. The first tick
// after a session start never diffs, it only seeds the baseline snapshot.
func (e *Engine) StartSession() {
	e.state = StateWarmingUp
	e.skipNext = true
}

// Reconcile runs one tick of the state machine for the given ledger,
// freshly built hints, and host collaborators. It never returns an error
// for malformed external input; at worst one tick's profit is classified
// imprecisely and corrected by the next full recomputation.
func (e *Engine) Reconcile(ctx context.Context, logger Logger, ledger *AccountLedger, hints TickHints, snaps SnapshotSource, oracle PriceOracle, comps CompositeSource) (*ReconcileResult, error) {
	if ledger == nil {
		// Reconciling before any account has been sighted is a no-op.
		return &ReconcileResult{}, nil
	}
	if e.state == StateNotStarted {
		e.StartSession()
	}

	ledger.TicksOnline++
	result := &ReconcileResult{ProfitTotal: ledger.ProfitAccumulated, LedgerChanged: true}

	if e.scheduledResetDue() {
		logger.Info("scheduled session reset for %s", ledger.Key())
		ledger.Reset(false)
		e.StartSession()
		result.ProfitTotal = 0
		result.SessionReset = true
	}

	// Dominant steady-state case: nothing relevant happened, nothing to
	// capture or diff.
	if !hints.Relevant() {
		return result, nil
	}

	fresh, observed := e.capture(snaps, hints)
	fresh.FillUnknownFrom(ledger.CurrentPossessions)

	if e.skipNext || hints.SkipThisTick || !ledger.CurrentPossessions.Complete() {
		// First tick of a session, or an internal transfer with unknown
		// net effect: absorb the new state without counting profit.
		e.skipNext = false
		e.state = StateTracking
		e.absorb(ledger, fresh)
		result.ProfitTotal = ledger.ProfitAccumulated
		return result, nil
	}

	if !fresh.Complete() {
		// No inventory observation yet; nothing can be diffed safely.
		return result, nil
	}

	previous := ledger.CurrentPossessions
	rawDelta := Diff(previous.AllItems(), fresh.AllItems())
	if rawDelta.IsEmpty() {
		e.absorb(ledger, fresh)
		return result, nil
	}

	tickProfit, discard := e.classify(logger, ledger, fresh, observed, hints, rawDelta, oracle, comps)
	if discard {
		// Unattributable change, conservatively dropped.
		e.absorb(ledger, fresh)
		return result, nil
	}

	// The folds above may have absorbed the entire delta; what remains is
	// the real possession change this tick.
	residual := Diff(previous.AllItems(), fresh.AllItems())
	if residual.IsEmpty() {
		tickProfit = 0
	} else {
		ledger.LastPossessionChange = residual
		ledger.ItemDifferenceAccumulated = Sum(ledger.ItemDifferenceAccumulated, residual)
	}

	e.absorb(ledger, fresh)

	ledger.ProfitAccumulated += tickProfit
	if tickProfit != 0 {
		// Recompute from the accumulated delta at the moments profit
		// actually moves: corrects drift from price changes between ticks
		// without paying for a full revaluation on idle ticks.
		ledger.ProfitAccumulated = e.valuer.Value(logger, oracle, comps, ledger.ItemDifferenceAccumulated)
	}

	result.TickProfit = tickProfit
	result.ProfitTotal = ledger.ProfitAccumulated
	return result, nil
}

// observedContainers records which containers the host actually produced
// this tick, before unknown slots were filled from the previous snapshot.
type observedContainers struct {
	inventory bool
	bank      bool
	market    bool
}

// capture collects this tick's observations. Collections are cloned on the
// way in: hosts commonly reuse a capture buffer across ticks, and the
// ledger keeps what capture returns.
func (e *Engine) capture(snaps SnapshotSource, hints TickHints) (*Possessions, observedContainers) {
	fresh := NewPossessions()
	var obs observedContainers
	if items, ok := snaps.CaptureInventoryAndEquipment(); ok {
		fresh.InventoryAndEquipment = KnownContainer(items.Clone())
		obs.inventory = true
	}
	if items, ok := snaps.CaptureBank(); ok {
		fresh.Bank = KnownContainer(items.Clone())
		obs.bank = true
	}
	if hints.MarketChanged {
		if items, ok := snaps.CaptureMarketOffers(); ok {
			fresh.MarketOffers = KnownContainer(items.Clone())
			obs.market = true
		}
	}
	return fresh, obs
}

// classify applies the hint-flag precedence order to a nonzero delta.
// Exactly one branch runs per tick: bank-without-visibility wins over a
// market interaction, which wins over untracked storage; anything else is
// real profit-affecting activity. discard is true when the delta cannot be
// safely attributed and must be dropped with zero profit impact.
func (e *Engine) classify(logger Logger, ledger *AccountLedger, fresh *Possessions, obs observedContainers, hints TickHints, rawDelta ItemCollection, oracle PriceOracle, comps CompositeSource) (tickProfit int64, discard bool) {
	previous := ledger.CurrentPossessions

	switch {
	case (hints.BankUIOpen || hints.DepositInProgress) && !obs.bank && !hints.UntrackedStorageUIOpen:
		// Items moved while the bank was interactable but its contents
		// were not re-observed: the delta went into or out of the bank.
		if !previous.Bank.Known {
			// The bank has never been observed at all. Attributing the
			// delta would fabricate a bank that held almost nothing, so
			// the change is discarded with zero profit impact.
			logger.Debug("discarding %d-item delta before first bank observation", len(rawDelta))
			return 0, true
		}
		foldInto(&ledger.StartingPossessions.Bank, &previous.Bank, &fresh.Bank, rawDelta)
		return 0, false

	case hints.MarketUIOpen && !obs.market:
		// Market interaction without a refreshed offer view.
		if !previous.MarketOffers.Known {
			logger.Debug("discarding %d-item delta before first market observation", len(rawDelta))
			return 0, true
		}
		foldInto(&ledger.StartingPossessions.MarketOffers, &previous.MarketOffers, &fresh.MarketOffers, rawDelta)
		return 0, false

	case hints.UntrackedStorageUIOpen:
		foldInto(&ledger.StartingPossessions.UnobservableStorage, &previous.UnobservableStorage, &fresh.UnobservableStorage, rawDelta)
		return 0, false

	default:
		// Real profit-affecting activity. Substitution runs against the
		// full before and after snapshots rather than the per-tick delta,
		// because floor truncation compounds across small batches.
		before := e.valuer.Value(logger, oracle, comps, previous.AllItems())
		after := e.valuer.Value(logger, oracle, comps, fresh.AllItems())
		return after - before, false
	}
}

// foldInto attributes a delta to a single container that was not observed
// this tick. If the fold would drive any holding negative, the container
// must have held more than assumed from the start, so the missing quantity
// is backfilled into both the starting and the previous snapshots: a
// snapshot never reports an impossible negative holding, and the backfill
// cancels out of the raw delta so no profit is invented.
func foldInto(start, prev, fresh *Container, rawDelta ItemCollection) {
	folded := Sum(prev.Items, rawDelta.Negate())

	missing := folded.Negate().Gains()
	if !missing.IsEmpty() {
		*start = KnownContainer(Sum(start.Items, missing))
		*prev = KnownContainer(Sum(prev.Items, missing))
		folded = Sum(folded, missing)
	}
	*fresh = KnownContainer(folded)
}

// absorb installs the fresh snapshot as the ledger's current possessions,
// seeding the starting snapshot lazily the first time each container
// becomes known.
func (e *Engine) absorb(ledger *AccountLedger, fresh *Possessions) {
	if fresh.InventoryAndEquipment.Known {
		ledger.ObserveInventoryAndEquipment(fresh.InventoryAndEquipment.Items)
	}
	if fresh.Bank.Known {
		ledger.ObserveBank(fresh.Bank.Items)
	}
	if fresh.MarketOffers.Known {
		ledger.ObserveMarketOffers(fresh.MarketOffers.Items)
	}
	if fresh.UnobservableStorage.Known {
		ledger.ObserveUnobservableStorage(fresh.UnobservableStorage.Items)
	}
}

func (e *Engine) scheduledResetDue() bool {
	if e.schedule == nil {
		return false
	}
	now := time.Now()
	if now.Before(e.nextReset) {
		return false
	}
	e.nextReset = e.schedule.Next(now)
	return true
}
