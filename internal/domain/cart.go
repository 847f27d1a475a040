package domain

import "slices"

// CartID names a cart resource on the remote service and in local persistence.
type CartID string

func (id CartID) String() string {
	return string(id)
}

type CartItem struct {
	CartID    CartID
	ProductID string
	Price     Money
	Quantity  int
}

// Snapshot is the local view of a cart. TotalItems is derived from Items.
type Snapshot struct {
	Items      []CartItem
	TotalItems int
}

// NewSnapshot copies items into a snapshot, merging entries that share a product ID
// and recomputing TotalItems. Lines whose merged quantity is below one are dropped.
func NewSnapshot(items []CartItem) Snapshot {
	merged := make([]CartItem, 0, len(items))

	for _, item := range items {
		if idx := indexOf(merged, item.ProductID); idx >= 0 {
			merged[idx].Quantity += item.Quantity
			continue
		}
		merged = append(merged, item)
	}

	merged = slices.DeleteFunc(merged, func(item CartItem) bool {
		return item.Quantity < 1
	})

	return Snapshot{
		Items:      merged,
		TotalItems: TotalQuantity(merged),
	}
}

// MergeAdd returns a new snapshot with item added: the quantity of an existing line for
// the same product is incremented, otherwise the item is appended.
func (s Snapshot) MergeAdd(item CartItem) Snapshot {
	items := s.cloneItems()

	if idx := indexOf(items, item.ProductID); idx >= 0 {
		items[idx].Quantity += item.Quantity
		items[idx].Price = item.Price
		if item.CartID != "" {
			items[idx].CartID = item.CartID
		}
	} else {
		items = append(items, item)
	}

	return Snapshot{
		Items:      items,
		TotalItems: TotalQuantity(items),
	}
}

// Without returns a new snapshot lacking productID and reports whether it was present.
func (s Snapshot) Without(productID string) (Snapshot, bool) {
	idx := indexOf(s.Items, productID)
	if idx < 0 {
		return s.Clone(), false
	}

	items := make([]CartItem, 0, len(s.Items)-1)
	items = append(items, s.Items[:idx]...)
	items = append(items, s.Items[idx+1:]...)

	return Snapshot{
		Items:      items,
		TotalItems: TotalQuantity(items),
	}, true
}

func (s Snapshot) Find(productID string) (CartItem, bool) {
	idx := indexOf(s.Items, productID)
	if idx < 0 {
		return CartItem{}, false
	}
	return s.Items[idx], true
}

func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Items:      s.cloneItems(),
		TotalItems: s.TotalItems,
	}
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

func (s Snapshot) cloneItems() []CartItem {
	items := make([]CartItem, len(s.Items))
	copy(items, s.Items)
	return items
}

func TotalQuantity(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func indexOf(items []CartItem, productID string) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
