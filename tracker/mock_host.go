package tracker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// Test doubles for the host collaborators. The simple fake types cover the
// common cases; the testify mocks exist for tests that assert on call
// counts or want to script failures.

// NewTestLogger returns a development zap logger adapted to the tracker
// Logger contract.
func NewTestLogger(t *testing.T) Logger {
	logger, _ := zap.NewDevelopment()
	return NewZapLogger(logger)
}

// fakePriceOracle serves prices from a static table.
type fakePriceOracle struct {
	prices map[int]int64
}

func newFakePriceOracle(prices map[int]int64) *fakePriceOracle {
	if prices == nil {
		prices = make(map[int]int64)
	}
	return &fakePriceOracle{prices: prices}
}

func (o *fakePriceOracle) Price(itemID int) int64 {
	return o.prices[itemID]
}

// fakeCompositeSource serves composite container contents from a static
// table.
type fakeCompositeSource struct {
	contents map[int][]ItemStack
}

func (s *fakeCompositeSource) Contents(itemID int) []ItemStack {
	if s == nil {
		return nil
	}
	return s.contents[itemID]
}

// fakeSnapshotSource is a scriptable capture source: tests set the fields
// before each tick to model what the host can currently observe.
type fakeSnapshotSource struct {
	inventory   ItemCollection
	inventoryOK bool
	bank        ItemCollection
	bankOK      bool
	market      ItemCollection
	marketOK    bool
}

func (s *fakeSnapshotSource) CaptureInventoryAndEquipment() (ItemCollection, bool) {
	return s.inventory, s.inventoryOK
}

func (s *fakeSnapshotSource) CaptureBank() (ItemCollection, bool) {
	return s.bank, s.bankOK
}

func (s *fakeSnapshotSource) CaptureMarketOffers() (ItemCollection, bool) {
	return s.market, s.marketOK
}

// memoryGateway is an in-memory PersistenceGateway for tests.
type memoryGateway struct {
	records map[string][]byte
	saves   int
}

func newMemoryGateway() *memoryGateway {
	return &memoryGateway{records: make(map[string][]byte)}
}

func (g *memoryGateway) Load(ctx context.Context, accountKey string) (*AccountLedger, error) {
	data, ok := g.records[accountKey]
	if !ok {
		return nil, nil
	}
	ledger := &AccountLedger{}
	if err := json.Unmarshal(data, ledger); err != nil {
		return nil, nil
	}
	ledger.normalize()
	return ledger, nil
}

func (g *memoryGateway) Save(ctx context.Context, accountKey string, ledger *AccountLedger) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return err
	}
	g.records[accountKey] = data
	g.saves++
	return nil
}

// MockPersistenceGateway is a testify mock of the PersistenceGateway
// contract.
type MockPersistenceGateway struct {
	mock.Mock
}

func (m *MockPersistenceGateway) Load(ctx context.Context, accountKey string) (*AccountLedger, error) {
	args := m.Called(ctx, accountKey)
	ledger, _ := args.Get(0).(*AccountLedger)
	return ledger, args.Error(1)
}

func (m *MockPersistenceGateway) Save(ctx context.Context, accountKey string, ledger *AccountLedger) error {
	args := m.Called(ctx, accountKey, ledger)
	return args.Error(0)
}

// MockProfitPublisher is a testify mock of the ProfitPublisher contract.
type MockProfitPublisher struct {
	mock.Mock
}

func (m *MockProfitPublisher) ProfitDelta(ctx context.Context, logger Logger, event *ProfitEvent) {
	m.Called(ctx, logger, event)
}

func (m *MockProfitPublisher) ProfitTotal(ctx context.Context, logger Logger, accountKey string, total int64) {
	m.Called(ctx, logger, accountKey, total)
}

// recordingPublisher collects every notification for assertion.
type recordingPublisher struct {
	deltas []int64
	totals []int64
	events []*ProfitEvent
}

func (p *recordingPublisher) ProfitDelta(ctx context.Context, logger Logger, event *ProfitEvent) {
	p.deltas = append(p.deltas, event.Delta)
	p.events = append(p.events, event)
}

func (p *recordingPublisher) ProfitTotal(ctx context.Context, logger Logger, accountKey string, total int64) {
	p.totals = append(p.totals, total)
}
