package powerup

type Slot struct {
	Kind  Kind `json:"kind"`
	Count int  `json:"count"`
}

// Inventory stacks powerups per kind and holds at most maxDistinct kinds at once.
// Slots keep first-acquired order.
type Inventory struct {
	maxDistinct int
	slots       []Slot
}

func NewInventory(maxDistinct int) *Inventory {
	if maxDistinct <= 0 {
		maxDistinct = 1
	}
	return &Inventory{maxDistinct: maxDistinct}
}

// Add stacks onto an existing slot or opens a new one. It fails when all slots hold
// other kinds.
func (inv *Inventory) Add(k Kind) bool {
	if i := inv.index(k); i >= 0 {
		inv.slots[i].Count++
		return true
	}
	if len(inv.slots) >= inv.maxDistinct {
		return false
	}
	inv.slots = append(inv.slots, Slot{Kind: k, Count: 1})
	return true
}

func (inv *Inventory) CanAccept(k Kind) bool {
	return inv.index(k) >= 0 || len(inv.slots) < inv.maxDistinct
}

// Consume removes one unit, freeing the slot when it empties.
func (inv *Inventory) Consume(k Kind) bool {
	i := inv.index(k)
	if i < 0 {
		return false
	}
	inv.slots[i].Count--
	if inv.slots[i].Count <= 0 {
		inv.slots = append(inv.slots[:i], inv.slots[i+1:]...)
	}
	return true
}

func (inv *Inventory) Count(k Kind) int {
	if i := inv.index(k); i >= 0 {
		return inv.slots[i].Count
	}
	return 0
}

func (inv *Inventory) Slots() []Slot {
	out := make([]Slot, len(inv.slots))
	copy(out, inv.slots)
	return out
}

func (inv *Inventory) index(k Kind) int {
	for i, s := range inv.slots {
		if s.Kind == k {
			return i
		}
	}
	return -1
}
