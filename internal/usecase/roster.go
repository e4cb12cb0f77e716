package usecase

import "github.com/rocketscienceinc/tictactoe-server/internal/entity"

// Peer is the coordinator's view of a connected session. Send must not block.
type Peer interface {
	ID() string
	Send(line string)
	Close()
}

// roster maps slots to the peers occupying them.
type roster [entity.SlotCount]Peer

func (that *roster) slotOf(peer Peer) entity.Slot {
	for slot, occupant := range that {
		if occupant != nil && occupant == peer {
			return entity.Slot(slot)
		}
	}

	return entity.SlotNone
}

func (that *roster) firstFree() entity.Slot {
	for slot, occupant := range that {
		if occupant == nil {
			return entity.Slot(slot)
		}
	}

	return entity.SlotNone
}

func (that *roster) at(slot entity.Slot) Peer {
	if !slot.Valid() {
		return nil
	}
	return that[slot]
}

func (that *roster) send(slot entity.Slot, line string) {
	if peer := that.at(slot); peer != nil {
		peer.Send(line)
	}
}

// broadcast fans a line out to every connected peer.
func (that *roster) broadcast(line string) {
	for _, peer := range that {
		if peer != nil {
			peer.Send(line)
		}
	}
}
