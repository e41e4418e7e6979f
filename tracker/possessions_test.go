package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPossessions_AllItemsTreatsUnknownAsEmpty(t *testing.T) {
	p := NewPossessions()
	p.InventoryAndEquipment = KnownContainer(ItemCollection{1: 5})
	p.Bank = KnownContainer(ItemCollection{1: 10, 2: 3})
	// Market and untracked storage stay unknown.

	assert.Equal(t, ItemCollection{1: 15, 2: 3}, p.AllItems())
}

func TestPossessions_FillUnknownFrom(t *testing.T) {
	known := NewPossessions()
	known.InventoryAndEquipment = KnownContainer(ItemCollection{1: 5})
	known.Bank = KnownContainer(ItemCollection{2: 7})

	p := NewPossessions()
	p.InventoryAndEquipment = KnownContainer(ItemCollection{1: 4})

	p.FillUnknownFrom(known)

	// Known containers are untouched, unknown ones copied.
	assert.Equal(t, ItemCollection{1: 4}, p.InventoryAndEquipment.Items)
	assert.True(t, p.Bank.Known)
	assert.Equal(t, ItemCollection{2: 7}, p.Bank.Items)
	assert.False(t, p.MarketOffers.Known)
}

func TestPossessions_FillUnknownFromIdempotent(t *testing.T) {
	known := NewPossessions()
	known.Bank = KnownContainer(ItemCollection{2: 7})

	p := NewPossessions()
	p.FillUnknownFrom(known)
	once := p.Clone()
	p.FillUnknownFrom(known)

	assert.Equal(t, once, p)
}

func TestPossessions_FillCopiesNotAliases(t *testing.T) {
	known := NewPossessions()
	known.Bank = KnownContainer(ItemCollection{2: 7})

	p := NewPossessions()
	p.FillUnknownFrom(known)
	p.Bank.Items[2] = 99

	assert.Equal(t, int64(7), known.Bank.Items[2])
}

func TestPossessions_Complete(t *testing.T) {
	p := NewPossessions()
	assert.False(t, p.Complete())

	p.Bank = KnownContainer(ItemCollection{})
	assert.False(t, p.Complete())

	p.InventoryAndEquipment = KnownContainer(ItemCollection{})
	assert.True(t, p.Complete())
}
