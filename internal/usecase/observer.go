package usecase

import "github.com/rocketscienceinc/tictactoe-server/internal/entity"

// Observer receives match events. Calls happen while the coordinator holds
// its lock, so implementations must return quickly and never call back.
type Observer interface {
	PlayerJoined(slot entity.Slot)
	PlayerLeft(slot entity.Slot)
	ConnectionRejected()
	RequestRejected(reason error)
	RoundStarted()
	RoundEnded(result entity.RoundResult)
	MatchReset()
}

// NopObserver can be embedded to implement only some of the events.
type NopObserver struct{}

func (NopObserver) PlayerJoined(entity.Slot)      {}
func (NopObserver) PlayerLeft(entity.Slot)        {}
func (NopObserver) ConnectionRejected()           {}
func (NopObserver) RequestRejected(error)         {}
func (NopObserver) RoundStarted()                 {}
func (NopObserver) RoundEnded(entity.RoundResult) {}
func (NopObserver) MatchReset()                   {}

type observers []Observer

func (that observers) each(fn func(Observer)) {
	for _, o := range that {
		fn(o)
	}
}
