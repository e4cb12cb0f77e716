package entity

import (
	"github.com/rocketscienceinc/tictactoe-server/internal/apperror"
)

// Outcome of an accepted move.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "WIN"
	OutcomeDraw Outcome = "DRAW"
)

type vote int

const (
	voteNone vote = iota
	voteYes
	voteNo
)

// Scoreboard is the cumulative tally of the current match.
type Scoreboard struct {
	Names  [SlotCount]string `json:"names"`
	Wins   [SlotCount]int    `json:"wins"`
	Draws  int               `json:"draws"`
	Rounds int               `json:"rounds"`
}

// RoundResult describes a completed round together with the tally after it.
type RoundResult struct {
	Outcome    Outcome    `json:"outcome"`
	Winner     Slot       `json:"winner"`
	Scoreboard Scoreboard `json:"scoreboard"`
}

// Snapshot is a read-only copy of the match for observers.
type Snapshot struct {
	Phase       string                       `json:"phase"`
	Occupied    [SlotCount]bool              `json:"occupied"`
	CurrentTurn Slot                         `json:"current_turn"`
	Board       [BoardSize][BoardSize]string `json:"board"`
	Scoreboard  Scoreboard                   `json:"scoreboard"`
}

// MatchState holds everything shared between the two slots.
// It is not safe for concurrent use; the owner serializes access.
type MatchState struct {
	board           Board
	occupied        [SlotCount]bool
	names           [SlotCount]string
	wins            [SlotCount]int
	draws           int
	currentTurn     Slot
	roundActive     bool
	awaitingRestart bool
	restartVotes    [SlotCount]vote
}

func NewMatchState() *MatchState {
	return &MatchState{currentTurn: SlotA}
}

// Reset clears names, counters, votes and the board.
func (that *MatchState) Reset() {
	occupied := that.occupied
	*that = MatchState{currentTurn: SlotA, occupied: occupied}
}

func (that *MatchState) Occupy(slot Slot) {
	that.occupied[slot] = true
}

// Vacate frees the slot and aborts any running or pending round.
func (that *MatchState) Vacate(slot Slot) {
	that.occupied[slot] = false
	that.names[slot] = ""
	that.restartVotes[slot] = voteNone
	that.roundActive = false
	that.awaitingRestart = false
}

func (that *MatchState) Occupied(slot Slot) bool {
	return slot.Valid() && that.occupied[slot]
}

func (that *MatchState) OccupiedCount() int {
	count := 0
	for _, occupied := range that.occupied {
		if occupied {
			count++
		}
	}

	return count
}

func (that *MatchState) Empty() bool {
	return that.OccupiedCount() == 0
}

func (that *MatchState) Name(slot Slot) (string, bool) {
	if !slot.Valid() || that.names[slot] == "" {
		return "", false
	}
	return that.names[slot], true
}

// SetName stores a name once per occupancy.
func (that *MatchState) SetName(slot Slot, name string) error {
	if !slot.Valid() {
		return apperror.ErrNoSlot
	}

	if that.names[slot] != "" {
		return apperror.ErrNameAlreadySet
	}

	if name == "" {
		return apperror.ErrEmptyName
	}

	that.names[slot] = name

	return nil
}

func (that *MatchState) BothNamed() bool {
	return that.names[SlotA] != "" && that.names[SlotB] != ""
}

// ReadyToStart - both players present and named, and nothing running or pending.
func (that *MatchState) ReadyToStart() bool {
	return that.occupied[SlotA] && that.occupied[SlotB] &&
		that.BothNamed() && !that.roundActive && !that.awaitingRestart
}

func (that *MatchState) RoundActive() bool     { return that.roundActive }
func (that *MatchState) AwaitingRestart() bool { return that.awaitingRestart }
func (that *MatchState) CurrentTurn() Slot     { return that.currentTurn }
func (that *MatchState) Board() Board          { return that.board }
func (that *MatchState) Wins(slot Slot) int    { return that.wins[slot] }
func (that *MatchState) Draws() int            { return that.draws }

// StartRound is the partial reset: board, turn and votes only.
func (that *MatchState) StartRound() {
	that.board.Reset()
	that.currentTurn = SlotA
	that.roundActive = true
	that.awaitingRestart = false
	that.restartVotes = [SlotCount]vote{}
}

// Place applies a move for slot. Checks run in order: round active, turn,
// bounds, occupancy. On success the returned outcome tells whether the round ended.
func (that *MatchState) Place(slot Slot, row, col int) (Outcome, error) {
	if !that.roundActive {
		return OutcomeNone, apperror.ErrRoundNotActive
	}

	if slot != that.currentTurn {
		return OutcomeNone, apperror.ErrNotYourTurn
	}

	mark := MarkFor(slot)
	if err := that.board.Place(row, col, mark); err != nil {
		return OutcomeNone, err
	}

	if that.board.HasWinner(mark) {
		that.wins[slot]++
		that.endRound()
		return OutcomeWin, nil
	}

	if that.board.IsFull() {
		that.draws++
		that.endRound()
		return OutcomeDraw, nil
	}

	that.currentTurn = that.currentTurn.Opponent()

	return OutcomeNone, nil
}

func (that *MatchState) endRound() {
	that.roundActive = false
	that.awaitingRestart = true
	that.restartVotes = [SlotCount]vote{}
}

// RecordVote stores a restart vote and reports whether both slots voted yes.
// It is a no-op outside of the restart window.
func (that *MatchState) RecordVote(slot Slot, restart bool) bool {
	if !that.awaitingRestart || !slot.Valid() {
		return false
	}

	that.restartVotes[slot] = voteNo
	if restart {
		that.restartVotes[slot] = voteYes
	}

	return that.restartVotes[SlotA] == voteYes && that.restartVotes[SlotB] == voteYes
}

func (that *MatchState) Scoreboard() Scoreboard {
	return Scoreboard{
		Names:  that.names,
		Wins:   that.wins,
		Draws:  that.draws,
		Rounds: that.wins[SlotA] + that.wins[SlotB] + that.draws,
	}
}

func (that *MatchState) Snapshot() Snapshot {
	return Snapshot{
		Phase:       that.Phase().String(),
		Occupied:    that.occupied,
		CurrentTurn: that.currentTurn,
		Board:       that.board.Rows(),
		Scoreboard:  that.Scoreboard(),
	}
}
