package tracker

// Container is one observable item store, tagged with whether it has ever
// been observed this session. Unknown is distinct from empty: an unknown
// container contributes nothing to sums but also produces no deltas.
type Container struct {
	Known bool           `json:"known"`
	Items ItemCollection `json:"items,omitempty"`
}

// KnownContainer wraps an observed collection.
func KnownContainer(items ItemCollection) Container {
	if items == nil {
		items = make(ItemCollection)
	}
	return Container{Known: true, Items: items}
}

// Clone returns an independent copy of the container.
func (c Container) Clone() Container {
	return Container{Known: c.Known, Items: c.Items.Clone()}
}

// Possessions is a captured, possibly partial view of every container a
// player owns at one instant. Observability is monotone within a session:
// once a container is known it never reverts to unknown, except through a
// hard session reset.
type Possessions struct {
	InventoryAndEquipment Container `json:"inventory_and_equipment"`
	Bank                  Container `json:"bank"`
	MarketOffers          Container `json:"market_offers"`
	UnobservableStorage   Container `json:"unobservable_storage"`
}

// NewPossessions returns a snapshot with every container unknown.
func NewPossessions() *Possessions {
	return &Possessions{}
}

// Clone returns a deep copy of the snapshot.
func (p *Possessions) Clone() *Possessions {
	if p == nil {
		return nil
	}
	return &Possessions{
		InventoryAndEquipment: p.InventoryAndEquipment.Clone(),
		Bank:                  p.Bank.Clone(),
		MarketOffers:          p.MarketOffers.Clone(),
		UnobservableStorage:   p.UnobservableStorage.Clone(),
	}
}

// AllItems sums the four containers, treating unknown as empty.
func (p *Possessions) AllItems() ItemCollection {
	all := Sum(p.InventoryAndEquipment.Items, p.Bank.Items)
	all = Sum(all, p.MarketOffers.Items)
	return Sum(all, p.UnobservableStorage.Items)
}

// FillUnknownFrom copies each still-unknown container from the given
// snapshot. Applying it twice with the same source is a no-op the second
// time. Used every tick so that containers not re-observed do not read as
// suddenly emptied.
func (p *Possessions) FillUnknownFrom(known *Possessions) {
	if known == nil {
		return
	}
	if !p.InventoryAndEquipment.Known && known.InventoryAndEquipment.Known {
		p.InventoryAndEquipment = known.InventoryAndEquipment.Clone()
	}
	if !p.Bank.Known && known.Bank.Known {
		p.Bank = known.Bank.Clone()
	}
	if !p.MarketOffers.Known && known.MarketOffers.Known {
		p.MarketOffers = known.MarketOffers.Clone()
	}
	if !p.UnobservableStorage.Known && known.UnobservableStorage.Known {
		p.UnobservableStorage = known.UnobservableStorage.Clone()
	}
}

// Complete reports whether the snapshot is usable for diffing. Inventory
// and equipment is the one container every capture must include.
func (p *Possessions) Complete() bool {
	return p.InventoryAndEquipment.Known
}
