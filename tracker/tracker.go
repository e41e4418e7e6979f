package tracker

import (
	"context"
	"sync"
)

// Collaborators bundles the host-supplied data sources and sinks the
// tracker consumes. Prices and captures are treated as synchronous and
// fast; persistence failures are logged and never surfaced to the host.
type Collaborators struct {
	Snapshots  SnapshotSource
	Prices     PriceOracle
	Composites CompositeSource
	Storage    PersistenceGateway
}

// Tracker is the embedded profit-tracking engine facade. The host drives
// it with exactly one ProcessTick per world tick; all other operations are
// reactions to host or operator events. All methods are safe for
// concurrent use, with reconciliation for the active ledger strictly
// serialized.
type Tracker interface {
	// Classifier exposes the host event classifier that turns host
	// signals into this tick's hint flags.
	Classifier() *HintClassifier

	// ProcessTick runs one reconciliation step using the hints the
	// classifier accumulated since the previous tick, then clears them.
	ProcessTick(ctx context.Context) (*ReconcileResult, error)

	// SwitchProfile persists the active ledger and activates the ledger
	// for the given account-profile identity, loading or creating it.
	SwitchProfile(ctx context.Context, accountHash int64, profileType string) error

	// ResetSession clears accumulated profit and time. A hard reset also
	// forgets current possessions, forcing re-observation.
	ResetSession(ctx context.Context, hard bool) error

	// ManualAdjust nudges accumulated profit to correct a known-bad
	// automatic classification.
	ManualAdjust(ctx context.Context, amount int64) error

	// SetPlayerName records the display name on the active ledger the
	// first time the host learns it.
	SetPlayerName(name string)

	// Ledger returns the active ledger, or nil before any profile switch.
	Ledger() *AccountLedger

	// AddPublisher registers a profit event sink.
	AddPublisher(pub ProfitPublisher)

	// Shutdown persists the active ledger and stops the tracker.
	Shutdown(ctx context.Context) error
}

type trackerImpl struct {
	mu sync.Mutex

	logger     Logger
	collab     Collaborators
	engine     *Engine
	valuer     *Valuer
	classifier *HintClassifier
	publishers []ProfitPublisher

	ledger   *AccountLedger
	shutdown bool
}

// Init builds a Tracker from its config and host collaborators.
func Init(ctx context.Context, logger Logger, collab Collaborators, config *Config) (Tracker, error) {
	if logger == nil || collab.Snapshots == nil || collab.Prices == nil || collab.Storage == nil {
		return nil, ErrBadInput
	}
	if config == nil {
		config = DefaultConfig()
	}

	valuer := NewValuer(&config.Valuation)
	t := &trackerImpl{
		logger:     logger,
		collab:     collab,
		valuer:     valuer,
		engine:     NewEngine(&config.Engine, valuer),
		classifier: NewHintClassifier(&config.Classifier),
	}
	logger.Info("profit tracker initialized, price mode %s", config.Valuation.Mode)
	return t, nil
}

func (t *trackerImpl) Classifier() *HintClassifier {
	return t.classifier
}

func (t *trackerImpl) ProcessTick(ctx context.Context) (*ReconcileResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.shutdown {
		return nil, ErrSystemShutdown
	}

	hints := t.classifier.Hints()
	result, err := t.engine.Reconcile(ctx, t.logger, t.ledger, hints, t.collab.Snapshots, t.collab.Prices, t.collab.Composites)
	t.classifier.EndTick()
	if err != nil {
		return nil, err
	}

	if t.ledger != nil {
		if result.TickProfit != 0 {
			t.publish(ctx, result.TickProfit, result.ProfitTotal)
		} else if result.SessionReset {
			// A scheduled rollover changes the total without a delta.
			t.publishTotal(ctx, result.ProfitTotal)
		}
	}
	return result, nil
}

func (t *trackerImpl) SwitchProfile(ctx context.Context, accountHash int64, profileType string) error {
	key, ok := AccountKey(accountHash, profileType)
	if !ok {
		return ErrNotLoggedIn
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.shutdown {
		return ErrSystemShutdown
	}
	if t.ledger != nil && t.ledger.Key() == key {
		return nil
	}

	t.saveLocked(ctx)

	ledger, err := t.collab.Storage.Load(ctx, key)
	if err != nil {
		// Treated as ledger-not-found, never fatal.
		t.logger.Warn("load failed for %s, starting fresh: %v", key, err)
		ledger = nil
	}
	if ledger == nil {
		ledger = NewAccountLedger(accountHash, profileType)
		t.logger.Info("created ledger for %s", key)
	} else if !t.engine.config.RememberProfit {
		ledger.Reset(true)
	}

	t.ledger = ledger
	t.engine.StartSession()
	return nil
}

func (t *trackerImpl) ResetSession(ctx context.Context, hard bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ledger == nil {
		return ErrNoAccount
	}

	t.ledger.Reset(hard)
	t.engine.StartSession()
	t.saveLocked(ctx)
	t.publishTotal(ctx, 0)
	return nil
}

func (t *trackerImpl) ManualAdjust(ctx context.Context, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ledger == nil {
		return ErrNoAccount
	}

	t.ledger.ManualAdjust(amount)
	t.publish(ctx, amount, t.ledger.ProfitAccumulated)
	return nil
}

func (t *trackerImpl) SetPlayerName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ledger != nil && t.ledger.PlayerName == "" {
		t.ledger.PlayerName = name
	}
}

func (t *trackerImpl) Ledger() *AccountLedger {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger
}

func (t *trackerImpl) AddPublisher(pub ProfitPublisher) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.publishers = append(t.publishers, pub)
}

func (t *trackerImpl) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.shutdown {
		return nil
	}
	t.saveLocked(ctx)
	t.shutdown = true
	return nil
}

// saveLocked persists the active ledger. Failures are logged only; the
// in-memory ledger remains authoritative until the next save boundary.
func (t *trackerImpl) saveLocked(ctx context.Context) {
	if t.ledger == nil {
		return
	}
	if err := t.collab.Storage.Save(ctx, t.ledger.Key(), t.ledger); err != nil {
		t.logger.Warn("save failed for %s: %v", t.ledger.Key(), err)
	}
}

func (t *trackerImpl) publish(ctx context.Context, delta, total int64) {
	event := newProfitEvent(t.ledger, delta, total)
	for _, pub := range t.publishers {
		pub.ProfitDelta(ctx, t.logger, event)
	}
	t.publishTotal(ctx, total)
}

func (t *trackerImpl) publishTotal(ctx context.Context, total int64) {
	key := ""
	if t.ledger != nil {
		key = t.ledger.Key()
	}
	for _, pub := range t.publishers {
		pub.ProfitTotal(ctx, t.logger, key, total)
	}
}
