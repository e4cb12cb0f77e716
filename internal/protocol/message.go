// Package protocol encodes and decodes the pipe-delimited line protocol
// spoken between players and the server.
package protocol

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-server/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-server/internal/entity"
)

const Separator = "|"

// Server message types.
const (
	TypeAssign        = "ASSIGN"
	TypeNameConfirmed = "NAME_CONFIRMED"
	TypeRoundStart    = "ROUND_START"
	TypeMark          = "MARK"
	TypeTurn          = "TURN"
	TypeRoundEnd      = "ROUND_END"
	TypeInvalid       = "INVALID"
	TypeOpponentLeft  = "OPPONENT_LEFT"
	TypeStatus        = "STATUS"
)

const voteYes = "YES"

var ErrMissingFields = errors.New("missing required fields")

// Message is one decoded client line.
type Message struct {
	Action entity.Action
	Fields []string
}

// Parse splits a line on the separator. Trailing empty fields are kept.
func Parse(line string) Message {
	parts := strings.Split(line, Separator)

	return Message{
		Action: entity.Action(parts[0]),
		Fields: parts[1:],
	}
}

// Name returns the raw NAME field.
func (that Message) Name() (string, error) {
	if len(that.Fields) < 1 {
		return "", ErrMissingFields
	}

	return that.Fields[0], nil
}

// Move returns the MOVE coordinates.
func (that Message) Move() (int, int, error) {
	if len(that.Fields) < 2 {
		return 0, 0, ErrMissingFields
	}

	row, err := strconv.Atoi(that.Fields[0])
	if err != nil {
		return 0, 0, apperror.ErrInvalidCoordinates
	}

	col, err := strconv.Atoi(that.Fields[1])
	if err != nil {
		return 0, 0, apperror.ErrInvalidCoordinates
	}

	return row, col, nil
}

// RestartVote - anything other than YES (case-insensitive) is a no.
func (that Message) RestartVote() (bool, error) {
	if len(that.Fields) < 1 {
		return false, ErrMissingFields
	}

	return strings.EqualFold(that.Fields[0], voteYes), nil
}

// SanitizeName trims the name and replaces separators so it cannot break framing.
func SanitizeName(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), Separator, " ")
}

func Encode(messageType string, fields ...string) string {
	if len(fields) == 0 {
		return messageType
	}

	return messageType + Separator + strings.Join(fields, Separator)
}

func slot(s entity.Slot) string {
	return strconv.Itoa(int(s))
}

func Assign(s entity.Slot) string {
	return Encode(TypeAssign, slot(s))
}

func NameConfirmed(s entity.Slot, name string) string {
	return Encode(TypeNameConfirmed, slot(s), name)
}

func RoundStart(starting entity.Slot) string {
	return Encode(TypeRoundStart, slot(starting))
}

func Mark(row, col int, mark entity.Mark) string {
	return Encode(TypeMark, strconv.Itoa(row), strconv.Itoa(col), mark.String())
}

func Turn(next entity.Slot) string {
	return Encode(TypeTurn, slot(next))
}

// RoundEnd encodes either a WIN with the winner slot or a DRAW, followed by the tallies.
func RoundEnd(result entity.RoundResult) string {
	board := result.Scoreboard
	tallies := []string{
		strconv.Itoa(board.Wins[entity.SlotA]),
		strconv.Itoa(board.Wins[entity.SlotB]),
		strconv.Itoa(board.Draws),
	}

	if result.Outcome == entity.OutcomeWin {
		return Encode(TypeRoundEnd, append([]string{string(entity.OutcomeWin), slot(result.Winner)}, tallies...)...)
	}

	return Encode(TypeRoundEnd, append([]string{string(entity.OutcomeDraw)}, tallies...)...)
}

func Invalid(reason string) string {
	return Encode(TypeInvalid, reason)
}

func OpponentLeft() string {
	return TypeOpponentLeft
}

func Status(text string) string {
	return Encode(TypeStatus, text)
}
