package usecase

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-server/internal/entity"
	"github.com/rocketscienceinc/tictactoe-server/internal/protocol"
)

// Coordinator owns the single match shared by the two slots. Every exported
// method holds mu for its whole body; peers are only ever sent to, never waited on.
type Coordinator struct {
	logger    *slog.Logger
	observers observers

	mu    sync.Mutex
	peers roster
	state *entity.MatchState
}

func NewCoordinator(logger *slog.Logger, obs ...Observer) *Coordinator {
	return &Coordinator{
		logger:    logger.With("component", "coordinator"),
		observers: obs,
		state:     entity.NewMatchState(),
	}
}

// RegisterSession assigns the first free slot to peer, or fails with ErrServerFull
// after telling the peer so. The caller closes a rejected peer.
func (that *Coordinator) RegisterSession(peer Peer) (entity.Slot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "RegisterSession", "session", peer.ID())

	if that.state.Empty() {
		that.resetMatch()
	}

	slot := that.peers.firstFree()
	if slot == entity.SlotNone {
		peer.Send(protocol.Status(apperror.ErrServerFull.Error()))
		that.observers.each(func(o Observer) { o.ConnectionRejected() })
		log.Info("server full, connection rejected")

		return entity.SlotNone, apperror.ErrServerFull
	}

	that.peers[slot] = peer
	that.state.Occupy(slot)
	peer.Send(protocol.Assign(slot))

	other := slot.Opponent()
	if name, ok := that.state.Name(other); ok && that.state.Occupied(other) {
		peer.Send(protocol.NameConfirmed(other, name))
	}
	if name, ok := that.state.Name(slot); ok {
		peer.Send(protocol.NameConfirmed(slot, name))
	}

	that.observers.each(func(o Observer) { o.PlayerJoined(slot) })
	log.Info("player connected", "slot", slot)

	return slot, nil
}

// SubmitName stores the sanitized name for the peer's slot and starts a round
// once both slots are named.
func (that *Coordinator) SubmitName(peer Peer, rawName string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.admit(peer, entity.ActionName); err != nil {
		return err
	}

	slot := that.peers.slotOf(peer)
	if slot == entity.SlotNone {
		return that.reject(peer, apperror.ErrNoSlot)
	}

	name := protocol.SanitizeName(rawName)
	if err := that.state.SetName(slot, name); err != nil {
		return that.reject(peer, err)
	}

	peer.Send(protocol.NameConfirmed(slot, name))

	other := slot.Opponent()
	if that.peers.at(other) != nil {
		that.peers.send(other, protocol.NameConfirmed(slot, name))
		if otherName, ok := that.state.Name(other); ok {
			peer.Send(protocol.NameConfirmed(other, otherName))
		}
	}

	that.logger.Info("name confirmed", "slot", slot, "name", name)

	if that.state.ReadyToStart() {
		that.startRound()
	}

	return nil
}

// SubmitMove places the peer's mark and settles the round when it ends.
func (that *Coordinator) SubmitMove(peer Peer, row, col int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.admit(peer, entity.ActionMove); err != nil {
		return err
	}

	slot := that.peers.slotOf(peer)

	outcome, err := that.state.Place(slot, row, col)
	if err != nil {
		return that.reject(peer, err)
	}

	that.peers.broadcast(protocol.Mark(row, col, entity.MarkFor(slot)))

	switch outcome {
	case entity.OutcomeWin, entity.OutcomeDraw:
		winner := entity.SlotNone
		if outcome == entity.OutcomeWin {
			winner = slot
		}

		result := entity.RoundResult{
			Outcome:    outcome,
			Winner:     winner,
			Scoreboard: that.state.Scoreboard(),
		}

		that.peers.broadcast(protocol.RoundEnd(result))
		that.observers.each(func(o Observer) { o.RoundEnded(result) })
		that.logger.Info("round ended", "outcome", outcome, "winner", winner)
	default:
		that.peers.broadcast(protocol.Turn(that.state.CurrentTurn()))
	}

	return nil
}

// SubmitRestartVote records the peer's vote. A no vote closes only that peer;
// the opponent learns about it through Disconnect.
func (that *Coordinator) SubmitRestartVote(peer Peer, restart bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.admit(peer, entity.ActionRestart); err != nil {
		return
	}

	slot := that.peers.slotOf(peer)
	if slot == entity.SlotNone {
		return
	}

	bothAgreed := that.state.RecordVote(slot, restart)

	if !restart {
		that.logger.Info("player declined restart", "slot", slot)
		peer.Close()
		return
	}

	if bothAgreed {
		that.startRound()
	}
}

// Disconnect frees the peer's slot, aborts any round and tells the opponent.
func (that *Coordinator) Disconnect(peer Peer) {
	that.mu.Lock()
	defer that.mu.Unlock()

	slot := that.peers.slotOf(peer)
	if slot == entity.SlotNone {
		return
	}

	that.peers[slot] = nil
	that.state.Vacate(slot)

	that.peers.send(slot.Opponent(), protocol.OpponentLeft())
	that.observers.each(func(o Observer) { o.PlayerLeft(slot) })
	that.logger.Info("player disconnected", "slot", slot, "session", peer.ID())

	if that.state.Empty() {
		that.resetMatch()
	}
}

// RejectRequest answers a request the transport could not decode.
func (that *Coordinator) RejectRequest(peer Peer, reason error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	_ = that.reject(peer, reason)
}

// Snapshot returns a copy of the current match.
func (that *Coordinator) Snapshot() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state.Snapshot()
}

// admit consults the phase table. A rejected action is answered with INVALID;
// an ignored one returns errIgnored silently.
func (that *Coordinator) admit(peer Peer, action entity.Action) error {
	rule, err := entity.Check(that.state.Phase(), action)

	switch rule {
	case entity.RuleReject:
		return that.reject(peer, err)
	case entity.RuleIgnore:
		return errIgnored
	default:
		return nil
	}
}

func (that *Coordinator) reject(peer Peer, err error) error {
	peer.Send(protocol.Invalid(err.Error()))
	that.observers.each(func(o Observer) { o.RequestRejected(err) })
	that.logger.Debug("request rejected", "session", peer.ID(), "reason", err)

	return err
}

func (that *Coordinator) startRound() {
	that.state.StartRound()
	that.peers.broadcast(protocol.RoundStart(that.state.CurrentTurn()))
	that.observers.each(func(o Observer) { o.RoundStarted() })

	names := that.state.Scoreboard().Names
	that.logger.Info("round started", "player_x", names[entity.SlotA], "player_o", names[entity.SlotB])
}

func (that *Coordinator) resetMatch() {
	that.state.Reset()
	that.observers.each(func(o Observer) { o.MatchReset() })
	that.logger.Info("match reset")
}
