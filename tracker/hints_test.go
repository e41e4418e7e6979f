package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testBankInterface       = 12
	testMarketInterface     = 465
	testDepositBoxInterface = 192
	testUntrackedInterface  = 602
)

func testClassifierConfig() *ClassifierConfig {
	return &ClassifierConfig{
		StorageInterfaces: map[int]StorageKind{
			testBankInterface:       StorageBank,
			testMarketInterface:     StorageMarket,
			testDepositBoxInterface: StorageDepositBox,
			testUntrackedInterface:  StorageUntracked,
		},
		Triggers: []*TriggerRule{
			{Verbs: []string{"Deposit-"}, Effect: EffectDeposit},
			{Verbs: []string{"Collect to bank", "Bank"}, MarketOnly: true, Effect: EffectDeposit},
			{Verbs: []string{"Use"}, TargetContains: "Imp-in-a-box(", Effect: EffectDeposit},
			{Verbs: []string{"Fill", "Empty", "Use"}, Items: []int{700, 701}, Effect: EffectDepositUntracked},
			{Verbs: []string{"Fill", "Empty", "Use"}, Items: []int{800}, Effect: EffectEnsureTracked},
		},
	}
}

func TestClassifier_IdleTickHasNoRelevantHints(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	hints := c.Hints()
	assert.False(t, hints.Relevant())
	assert.False(t, hints.BankUIOpen)
}

func TestClassifier_ContainerChanges(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	c.ContainerChanged(ContainerInventory)
	c.ContainerChanged(ContainerBank)

	hints := c.Hints()
	assert.True(t, hints.InventoryChanged)
	assert.True(t, hints.BankChanged)
	assert.True(t, hints.Relevant())

	c.EndTick()
	assert.False(t, c.Hints().Relevant())
}

func TestClassifier_BankOpenSurvivesUntilEndOfNextTick(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	c.StorageOpened(testBankInterface)
	assert.True(t, c.Hints().BankUIOpen)

	// Close is deferred: the flag holds through the end of the tick the
	// close was seen on.
	c.StorageClosed(testBankInterface)
	assert.True(t, c.Hints().BankUIOpen)

	c.EndTick()
	assert.False(t, c.Hints().BankUIOpen)
}

func TestClassifier_OpeningStorageAppliesPendingClose(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	c.StorageOpened(testBankInterface)
	c.StorageClosed(testBankInterface)
	// Switching straight into the market applies the bank close now.
	c.StorageOpened(testMarketInterface)

	hints := c.Hints()
	assert.False(t, hints.BankUIOpen)
	assert.True(t, hints.MarketUIOpen)
}

func TestClassifier_DepositBoxCountsAsDepositInProgress(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	c.StorageOpened(testDepositBoxInterface)

	hints := c.Hints()
	assert.True(t, hints.DepositInProgress)
	assert.False(t, hints.BankUIOpen)
}

func TestClassifier_DepositVerbTrigger(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	c.MenuAction("Deposit-10", "Iron ore", 0)
	assert.True(t, c.Hints().DepositInProgress)

	// Consumed by the tick that carries the resulting container change.
	c.ContainerChanged(ContainerInventory)
	c.EndTick()
	assert.False(t, c.Hints().DepositInProgress)
}

func TestClassifier_DepositIntentSurvivesIdleTicks(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	// The container event for a deposit click can land a tick late; the
	// intent stays armed through quiet ticks until a change consumes it.
	c.MenuAction("Deposit-All", "Iron ore", 0)
	c.EndTick()
	c.EndTick()
	assert.True(t, c.Hints().DepositInProgress)

	c.ContainerChanged(ContainerInventory)
	assert.True(t, c.Hints().DepositInProgress)
	c.EndTick()
	assert.False(t, c.Hints().DepositInProgress)
}

func TestClassifier_SkipIntentSurvivesIdleTicks(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	c.RequestSkip()
	c.EndTick()
	assert.True(t, c.Hints().SkipThisTick)

	c.ContainerChanged(ContainerInventory)
	c.EndTick()
	assert.False(t, c.Hints().SkipThisTick)
}

func TestClassifier_MarketOnlyTrigger(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	// "Collect to bank" outside the market does nothing.
	c.MenuAction("Collect to bank", "", 0)
	assert.False(t, c.Hints().DepositInProgress)

	c.StorageOpened(testMarketInterface)
	c.MenuAction("Collect to bank", "", 0)
	assert.True(t, c.Hints().DepositInProgress)
}

func TestClassifier_TargetContainsTrigger(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	c.MenuAction("Use", "Imp-in-a-box(2)", 0)
	assert.True(t, c.Hints().DepositInProgress)
}

func TestClassifier_StorageItemTrigger(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	c.MenuAction("Fill", "Huntsman's kit", 700)
	assert.True(t, c.Hints().UntrackedStorageUIOpen)

	c.ContainerChanged(ContainerInventory)
	c.EndTick()
	assert.False(t, c.Hints().UntrackedStorageUIOpen)
}

func TestClassifier_ItemTriggerRequiresMatchingItem(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	c.MenuAction("Fill", "Bucket", 999)
	assert.False(t, c.Hints().UntrackedStorageUIOpen)
}

func TestClassifier_EnsureTrackedCancelsSkip(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	c.RequestSkip()
	assert.True(t, c.Hints().SkipThisTick)

	c.MenuAction("Empty", "Coal bag", 800)
	assert.False(t, c.Hints().SkipThisTick)
}

func TestClassifier_MarketOfferChangeIgnoredWhileClosing(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	c.StorageOpened(testMarketInterface)
	c.EndTick()

	c.StorageClosed(testMarketInterface)
	c.MarketOfferChanged()
	assert.False(t, c.Hints().MarketChanged)
}

func TestClassifier_MarketOpenImpliesOfferRefresh(t *testing.T) {
	c := NewHintClassifier(testClassifierConfig())

	c.StorageOpened(testMarketInterface)
	c.EndTick()

	// Inventory movement while the market is open implies the offers
	// changed even without an offer notification.
	c.ContainerChanged(ContainerInventory)
	assert.True(t, c.Hints().MarketChanged)
}
