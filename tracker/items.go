package tracker

import (
	"encoding/json"
	"sort"
)

// EmptySlotItemID marks an unoccupied container slot in raw host captures.
// Entries with this id (or a zero quantity) carry no meaning and are dropped
// during normalization.
const EmptySlotItemID = -1

// ItemStack is a single item id paired with a quantity. Quantities are
// signed: negative values are legal only inside delta collections, never
// inside a snapshot.
type ItemStack struct {
	ItemID   int   `json:"item_id" yaml:"item_id"`
	Quantity int64 `json:"quantity" yaml:"quantity"`
}

// ItemCollection is an unordered multiset of items keyed by item id. A
// normalized collection never contains zero quantities or the empty-slot
// marker. Two collections are equal iff their id to quantity maps are equal.
type ItemCollection map[int]int64

// NewItemCollection normalizes raw stacks into a collection: duplicate ids
// are summed, empty slots and zero quantities dropped.
func NewItemCollection(stacks ...ItemStack) ItemCollection {
	c := make(ItemCollection, len(stacks))
	for _, s := range stacks {
		if s.ItemID == EmptySlotItemID || s.Quantity == 0 {
			continue
		}
		c[s.ItemID] += s.Quantity
		if c[s.ItemID] == 0 {
			delete(c, s.ItemID)
		}
	}
	return c
}

// Clone returns an independent copy of the collection.
func (c ItemCollection) Clone() ItemCollection {
	if c == nil {
		return nil
	}
	out := make(ItemCollection, len(c))
	for id, qty := range c {
		out[id] = qty
	}
	return out
}

// IsEmpty reports whether the collection has no entries. A nil collection
// is empty.
func (c ItemCollection) IsEmpty() bool {
	return len(c) == 0
}

// Equal reports whether two normalized collections hold the same entries.
func (c ItemCollection) Equal(other ItemCollection) bool {
	if len(c) != len(other) {
		return false
	}
	for id, qty := range c {
		if other[id] != qty {
			return false
		}
	}
	return true
}

// Stacks returns the collection's entries sorted by item id, for
// deterministic serialization and logging.
func (c ItemCollection) Stacks() []ItemStack {
	out := make([]ItemStack, 0, len(c))
	for id, qty := range c {
		out = append(out, ItemStack{ItemID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// Diff computes the entrywise delta to-minus-from for every item present in
// either input. Entries that net to zero are dropped, so Diff(a, b) and
// Diff(b, a) are additive inverses.
func Diff(from, to ItemCollection) ItemCollection {
	delta := make(ItemCollection)
	for id, qty := range to {
		delta[id] = qty
	}
	for id, qty := range from {
		delta[id] -= qty
		if delta[id] == 0 {
			delete(delta, id)
		}
	}
	return delta
}

// Sum adds two collections entrywise, dropping entries that net to zero.
// Summing with a nil side returns a copy of the other side.
func Sum(a, b ItemCollection) ItemCollection {
	out := make(ItemCollection, len(a)+len(b))
	for id, qty := range a {
		out[id] = qty
	}
	for id, qty := range b {
		out[id] += qty
		if out[id] == 0 {
			delete(out, id)
		}
	}
	return out
}

// Gains returns only the entries with positive quantities. Used when a
// delta's losses and gains must be attributed differently, such as the
// deficit backfill for unobservable storage.
func (c ItemCollection) Gains() ItemCollection {
	out := make(ItemCollection)
	for id, qty := range c {
		if qty > 0 {
			out[id] = qty
		}
	}
	return out
}

// Negate returns the additive inverse of the collection.
func (c ItemCollection) Negate() ItemCollection {
	out := make(ItemCollection, len(c))
	for id, qty := range c {
		out[id] = -qty
	}
	return out
}

// MarshalJSON encodes the collection as a sorted stack list so persisted
// ledgers are stable and human readable.
func (c ItemCollection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Stacks())
}

// UnmarshalJSON decodes a stack list, normalizing as it goes.
func (c *ItemCollection) UnmarshalJSON(data []byte) error {
	var stacks []ItemStack
	if err := json.Unmarshal(data, &stacks); err != nil {
		return err
	}
	*c = NewItemCollection(stacks...)
	return nil
}
