package entity

// Slot is one of the two fixed player positions.
type Slot int

const (
	SlotNone Slot = -1
	SlotA    Slot = 0
	SlotB    Slot = 1

	SlotCount = 2
)

func (that Slot) Valid() bool {
	return that == SlotA || that == SlotB
}

func (that Slot) Opponent() Slot {
	return 1 - that
}

// MarkFor - slot 0 plays X, slot 1 plays O.
func MarkFor(slot Slot) Mark {
	if slot == SlotA {
		return MarkX
	}
	return MarkO
}
