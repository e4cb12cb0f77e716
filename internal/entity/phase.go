package entity

import "github.com/rocketscienceinc/tictactoe-server/internal/apperror"

// Phase is the match-level protocol state.
type Phase int

const (
	PhaseNoPlayers Phase = iota
	PhaseWaitingForSecondPlayer
	PhaseWaitingForNames
	PhaseRoundActive
	PhaseAwaitingRestart
)

var phaseNames = map[Phase]string{
	PhaseNoPlayers:              "no_players",
	PhaseWaitingForSecondPlayer: "waiting_for_second_player",
	PhaseWaitingForNames:        "waiting_for_names",
	PhaseRoundActive:            "round_active",
	PhaseAwaitingRestart:        "awaiting_restart",
}

func (that Phase) String() string {
	if name, ok := phaseNames[that]; ok {
		return name
	}
	return "unknown"
}

// Phase derives the protocol state from the match fields.
func (that *MatchState) Phase() Phase {
	switch that.OccupiedCount() {
	case 0:
		return PhaseNoPlayers
	case 1:
		return PhaseWaitingForSecondPlayer
	}

	switch {
	case that.roundActive:
		return PhaseRoundActive
	case that.awaitingRestart:
		return PhaseAwaitingRestart
	default:
		return PhaseWaitingForNames
	}
}

// Action is a client message type.
type Action string

const (
	ActionName    Action = "NAME"
	ActionMove    Action = "MOVE"
	ActionRestart Action = "RESTART"
	ActionExit    Action = "EXIT"
)

// Rule tells what to do with an action in a phase.
type Rule int

const (
	RuleAllow Rule = iota
	RuleReject
	RuleIgnore
)

type transition struct {
	rule Rule
	err  error
}

var (
	allow         = transition{rule: RuleAllow}
	ignore        = transition{rule: RuleIgnore}
	rejectNoRound = transition{rule: RuleReject, err: apperror.ErrRoundNotActive}
)

var transitions = map[Phase]map[Action]transition{
	PhaseNoPlayers: {
		ActionName: allow, ActionMove: rejectNoRound, ActionRestart: ignore, ActionExit: allow,
	},
	PhaseWaitingForSecondPlayer: {
		ActionName: allow, ActionMove: rejectNoRound, ActionRestart: ignore, ActionExit: allow,
	},
	PhaseWaitingForNames: {
		ActionName: allow, ActionMove: rejectNoRound, ActionRestart: ignore, ActionExit: allow,
	},
	PhaseRoundActive: {
		ActionName: allow, ActionMove: allow, ActionRestart: ignore, ActionExit: allow,
	},
	PhaseAwaitingRestart: {
		ActionName: allow, ActionMove: rejectNoRound, ActionRestart: allow, ActionExit: allow,
	},
}

// Check looks up the rule for action in phase. Unknown actions are ignored.
func Check(phase Phase, action Action) (Rule, error) {
	t, ok := transitions[phase][action]
	if !ok {
		return RuleIgnore, nil
	}

	return t.rule, t.err
}
