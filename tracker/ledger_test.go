package tracker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountKey(t *testing.T) {
	key, ok := AccountKey(12345, "STANDARD")
	require.True(t, ok)
	assert.Equal(t, "record_12345_STANDARD", key)

	// Hash -1 means nobody is logged in.
	_, ok = AccountKey(-1, "STANDARD")
	assert.False(t, ok)
}

func TestNewAccountLedger(t *testing.T) {
	ledger := NewAccountLedger(42, "SEASONAL")

	assert.Equal(t, "record_42_SEASONAL", ledger.Key())
	assert.NotEmpty(t, ledger.SessionID)
	assert.NotZero(t, ledger.StartTimeMs)
	assert.False(t, ledger.CurrentPossessions.Complete())
	assert.True(t, ledger.ItemDifferenceAccumulated.IsEmpty())
}

func TestLedger_SoftResetKeepsPossessions(t *testing.T) {
	ledger := NewAccountLedger(1, "STANDARD")
	ledger.ObserveInventoryAndEquipment(ItemCollection{1: 5})
	ledger.ObserveBank(ItemCollection{2: 7})
	ledger.ProfitAccumulated = 1000
	ledger.TicksOnline = 99
	ledger.ItemDifferenceAccumulated = ItemCollection{1: 5}
	previousSession := ledger.SessionID

	ledger.Reset(false)

	assert.Zero(t, ledger.ProfitAccumulated)
	assert.Zero(t, ledger.TicksOnline)
	assert.True(t, ledger.ItemDifferenceAccumulated.IsEmpty())
	assert.NotEqual(t, previousSession, ledger.SessionID)
	// Current possessions survive so tracking resumes without re-observing.
	assert.True(t, ledger.CurrentPossessions.Bank.Known)
	// Starting possessions are forgotten and reseeded on next observation.
	assert.False(t, ledger.StartingPossessions.Bank.Known)
}

func TestLedger_HardResetForgetsPossessions(t *testing.T) {
	ledger := NewAccountLedger(1, "STANDARD")
	ledger.ObserveBank(ItemCollection{2: 7})

	ledger.Reset(true)

	assert.False(t, ledger.CurrentPossessions.Bank.Known)
}

func TestLedger_ObserveSeedsStartingLazily(t *testing.T) {
	ledger := NewAccountLedger(1, "STANDARD")

	ledger.ObserveBank(ItemCollection{2: 7})
	ledger.ObserveBank(ItemCollection{2: 50})

	// Starting keeps the first observation, current tracks the latest.
	assert.Equal(t, ItemCollection{2: 7}, ledger.StartingPossessions.Bank.Items)
	assert.Equal(t, ItemCollection{2: 50}, ledger.CurrentPossessions.Bank.Items)
}

func TestLedger_ManualAdjust(t *testing.T) {
	ledger := NewAccountLedger(1, "STANDARD")
	ledger.ProfitAccumulated = 100

	ledger.ManualAdjust(-5000)

	assert.Equal(t, int64(-4900), ledger.ProfitAccumulated)
	assert.Equal(t, ItemCollection{CurrencyItemID: -5000}, ledger.ItemDifferenceAccumulated)
	assert.Equal(t, ItemCollection{CurrencyItemID: -5000}, ledger.LastPossessionChange)
}

func TestLedger_JSONRoundTrip(t *testing.T) {
	ledger := NewAccountLedger(7, "STANDARD")
	ledger.PlayerName = "Gatherer"
	ledger.ObserveInventoryAndEquipment(ItemCollection{1: 5, 995: 1000})
	ledger.ObserveBank(ItemCollection{2: 7})
	ledger.ProfitAccumulated = -12345
	ledger.ItemDifferenceAccumulated = ItemCollection{995: -12345}
	ledger.LastPossessionChange = ItemCollection{1: 2}

	data, err := json.Marshal(ledger)
	require.NoError(t, err)

	decoded := &AccountLedger{}
	require.NoError(t, json.Unmarshal(data, decoded))
	decoded.normalize()

	assert.Equal(t, ledger.ProfitAccumulated, decoded.ProfitAccumulated)
	assert.True(t, ledger.CurrentPossessions.AllItems().Equal(decoded.CurrentPossessions.AllItems()))
	assert.True(t, ledger.StartingPossessions.AllItems().Equal(decoded.StartingPossessions.AllItems()))
	assert.Equal(t, ledger.SessionID, decoded.SessionID)
	assert.False(t, decoded.CurrentPossessions.MarketOffers.Known)
}

func TestLedger_NormalizeRepairsNils(t *testing.T) {
	ledger := &AccountLedger{AccountHash: 1, ProfileType: "STANDARD"}
	ledger.normalize()

	assert.NotNil(t, ledger.StartingPossessions)
	assert.NotNil(t, ledger.CurrentPossessions)
	assert.NotNil(t, ledger.ItemDifferenceAccumulated)
	assert.NotEmpty(t, ledger.SessionID)
}
