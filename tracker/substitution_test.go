package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitution_Replacement(t *testing.T) {
	table := NewSubstitutionTable(map[int]*SubstitutionRule{
		100: {Replacements: []ItemStack{{ItemID: 1, Quantity: 2}}, Ratio: 1},
	})

	out := table.Apply(ItemCollection{100: 3, 5: 7})
	assert.Equal(t, ItemCollection{1: 6, 5: 7}, out)
}

func TestSubstitution_RatioTruncates(t *testing.T) {
	table := NewSubstitutionTable(map[int]*SubstitutionRule{
		100: {Replacements: []ItemStack{{ItemID: 1, Quantity: 1}}, Ratio: 0.5},
	})

	assert.Equal(t, ItemCollection{1: 2}, table.Apply(ItemCollection{100: 5}))
	// Negative delta entries truncate symmetrically.
	assert.Equal(t, ItemCollection{1: -2}, table.Apply(ItemCollection{100: -5}))
}

func TestSubstitution_TruncationCompounds(t *testing.T) {
	// Applying the table to many small batches loses more to flooring than
	// applying it once to the accumulated quantity. This is the reason the
	// engine substitutes at the snapshot level.
	table := NewSubstitutionTable(map[int]*SubstitutionRule{
		100: {Replacements: []ItemStack{{ItemID: 1, Quantity: 1}}, Ratio: 0.4},
	})

	var batched int64
	for i := 0; i < 10; i++ {
		batched += table.Apply(ItemCollection{100: 1})[1]
	}
	bulk := table.Apply(ItemCollection{100: 10})[1]

	assert.Equal(t, int64(0), batched)
	assert.Equal(t, int64(4), bulk)
}

func TestSubstitution_EmptyReplacementRemoves(t *testing.T) {
	table := NewSubstitutionTable(map[int]*SubstitutionRule{
		100: {Ratio: 1},
	})

	assert.True(t, table.Apply(ItemCollection{100: 9}).IsEmpty())
}

func TestSubstitution_DerivedLeftInPlace(t *testing.T) {
	table := NewSubstitutionTable(map[int]*SubstitutionRule{
		100: {Derived: &DerivedPrice{MinuendID: 1, SubtrahendID: 2, Divisor: 3}},
	})

	out := table.Apply(ItemCollection{100: 4})
	assert.Equal(t, ItemCollection{100: 4}, out)
}

func TestSubstitution_NilTable(t *testing.T) {
	var table *SubstitutionTable
	c := ItemCollection{1: 2}

	assert.Equal(t, c, table.Apply(c))
	assert.Nil(t, table.Rule(1))
}
