package tcp

import (
	"errors"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-server/internal/entity"
	"github.com/rocketscienceinc/tictactoe-server/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-server/internal/usecase"
)

type coordinator interface {
	RegisterSession(peer usecase.Peer) (entity.Slot, error)
	SubmitName(peer usecase.Peer, rawName string) error
	SubmitMove(peer usecase.Peer, row, col int) error
	SubmitRestartVote(peer usecase.Peer, restart bool)
	Disconnect(peer usecase.Peer)
	RejectRequest(peer usecase.Peer, reason error)
}

type messageCounter interface {
	MessageReceived(action entity.Action)
}

// Dispatcher turns decoded lines into coordinator calls. It holds no connection
// state, so it is driven directly in tests.
type Dispatcher struct {
	logger      *slog.Logger
	coordinator coordinator
	counter     messageCounter
}

func NewDispatcher(logger *slog.Logger, coordinator coordinator, counter messageCounter) *Dispatcher {
	return &Dispatcher{
		logger:      logger.With("component", "dispatcher"),
		coordinator: coordinator,
		counter:     counter,
	}
}

// Dispatch handles one line from peer and reports whether the read loop should continue.
// Malformed lines are dropped, except unparsable move coordinates which get INVALID.
func (that *Dispatcher) Dispatch(peer usecase.Peer, line string) bool {
	log := that.logger.With("method", "Dispatch", "session", peer.ID())

	msg := protocol.Parse(line)
	that.counter.MessageReceived(msg.Action)

	switch msg.Action {
	case entity.ActionName:
		name, err := msg.Name()
		if err != nil {
			log.Debug("dropping message", "action", msg.Action, "error", err)
			return true
		}

		_ = that.coordinator.SubmitName(peer, name)

	case entity.ActionMove:
		row, col, err := msg.Move()
		if errors.Is(err, apperror.ErrInvalidCoordinates) {
			that.coordinator.RejectRequest(peer, err)
			return true
		}
		if err != nil {
			log.Debug("dropping message", "action", msg.Action, "error", err)
			return true
		}

		_ = that.coordinator.SubmitMove(peer, row, col)

	case entity.ActionRestart:
		restart, err := msg.RestartVote()
		if err != nil {
			log.Debug("dropping message", "action", msg.Action, "error", err)
			return true
		}

		that.coordinator.SubmitRestartVote(peer, restart)

	case entity.ActionExit:
		log.Info("player exited")
		return false

	default:
		log.Debug("ignoring unsupported message", "action", msg.Action)
	}

	return true
}
