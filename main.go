package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"profitforge/tracker"

	"go.uber.org/zap"
)

// Demo host. It wires the tracker to a scripted snapshot source and replays
// a short session: mine some ore, bank it, sell it, drop a coin on the way
// out. Real hosts supply live captures and a live price oracle instead.
func main() {
	var (
		configPath = flag.String("config", "", "path to a tracker YAML config")
		ledgerDir  = flag.String("ledgers", "ledgers", "directory for persisted ledgers")
	)
	flag.Parse()

	zl, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zl.Sync()
	logger := tracker.NewZapLogger(zl)

	if err := run(logger, *configPath, *ledgerDir); err != nil {
		logger.Error("demo failed: %v", err)
		os.Exit(1)
	}
}

func run(logger tracker.Logger, configPath, ledgerDir string) error {
	ctx := context.Background()

	config := demoConfig()
	if configPath != "" {
		loaded, err := tracker.LoadConfig(configPath)
		if err != nil {
			return err
		}
		config = loaded
	}

	storage, err := tracker.NewFileGateway(ledgerDir, logger)
	if err != nil {
		return err
	}

	prices := staticPrices{
		995: 1,    // coins
		440: 103,  // iron ore
		453: 161,  // coal
		562: 2250, // uncut ruby
	}
	snaps := &scriptedSnapshots{}

	t, err := tracker.Init(ctx, logger, tracker.Collaborators{
		Snapshots: snaps,
		Prices:    prices,
		Storage:   storage,
	}, config)
	if err != nil {
		return err
	}
	defer t.Shutdown(ctx)

	t.AddPublisher(consolePublisher{})

	if err := t.SwitchProfile(ctx, 4242, "STANDARD"); err != nil {
		return err
	}
	t.SetPlayerName("Demo Miner")

	classifier := t.Classifier()

	// Tick 1: first sight of the inventory, baseline only.
	snaps.inventory = tracker.ItemCollection{995: 10_000}
	classifier.ContainerChanged(tracker.ContainerInventory)
	tick(ctx, t)

	// Ticks 2-4: mine iron ore and strike an uncut ruby.
	for _, haul := range []tracker.ItemCollection{
		{995: 10_000, 440: 9},
		{995: 10_000, 440: 21},
		{995: 10_000, 440: 27, 562: 1},
	} {
		snaps.inventory = haul
		classifier.ContainerChanged(tracker.ContainerInventory)
		tick(ctx, t)
	}

	// Tick 5: open the bank and deposit the haul. The bank contents are
	// captured, so the transfer nets to zero profit.
	const bankGroupID = 12
	classifier.StorageOpened(bankGroupID)
	snaps.inventory = tracker.ItemCollection{995: 10_000}
	snaps.bank = tracker.ItemCollection{440: 27, 562: 1}
	snaps.bankOK = true
	classifier.ContainerChanged(tracker.ContainerInventory)
	classifier.ContainerChanged(tracker.ContainerBank)
	tick(ctx, t)
	classifier.StorageClosed(bankGroupID)
	snaps.bankOK = false

	// Tick 6: close settles, nothing moved.
	tick(ctx, t)

	// Tick 7: fat-finger a coin drop on the way out of the mine.
	snaps.inventory = tracker.ItemCollection{995: 9_999}
	classifier.ContainerChanged(tracker.ContainerInventory)
	tick(ctx, t)

	ledger := t.Ledger()
	logger.Info("session over: %s earned %d over %d ticks",
		ledger.PlayerName, ledger.ProfitAccumulated, ledger.TicksOnline)
	return nil
}

func tick(ctx context.Context, t tracker.Tracker) {
	// Hosts call this once per world tick, ~600ms apart.
	t.ProcessTick(ctx)
	time.Sleep(50 * time.Millisecond)
}

// demoConfig maps the interface ids the script uses. A real host ships
// these tables as YAML; see config/tracker.yaml.
func demoConfig() *tracker.Config {
	config := tracker.DefaultConfig()
	config.Classifier.StorageInterfaces = map[int]tracker.StorageKind{
		12:  tracker.StorageBank,
		465: tracker.StorageMarket,
		192: tracker.StorageDepositBox,
	}
	config.Classifier.Triggers = []*tracker.TriggerRule{
		{Verbs: []string{"deposit-"}, Effect: tracker.EffectDeposit},
	}
	return config
}

// staticPrices is a fixed price oracle for the demo.
type staticPrices map[int]int64

func (p staticPrices) Price(itemID int) int64 { return p[itemID] }

// scriptedSnapshots exposes whatever the demo script last assigned.
type scriptedSnapshots struct {
	inventory tracker.ItemCollection
	bank      tracker.ItemCollection
	bankOK    bool
}

func (s *scriptedSnapshots) CaptureInventoryAndEquipment() (tracker.ItemCollection, bool) {
	return s.inventory, s.inventory != nil
}

func (s *scriptedSnapshots) CaptureBank() (tracker.ItemCollection, bool) {
	return s.bank, s.bankOK
}

func (s *scriptedSnapshots) CaptureMarketOffers() (tracker.ItemCollection, bool) {
	return nil, false
}

// consolePublisher prints profit events to stdout.
type consolePublisher struct{}

func (consolePublisher) ProfitDelta(ctx context.Context, logger tracker.Logger, event *tracker.ProfitEvent) {
	logger.Info("profit %+d (total %d) for %s", event.Delta, event.Total, event.AccountKey)
}

func (consolePublisher) ProfitTotal(ctx context.Context, logger tracker.Logger, accountKey string, total int64) {
	logger.Info("total now %d for %s", total, accountKey)
}
