package apperror

import "errors"

// The error text is sent to the client verbatim as the INVALID/STATUS reason.
//nolint: stylecheck,revive // reasons are shown to players as-is
var (
	ErrNoSlot             = errors.New("Server has not assigned you a slot yet.")
	ErrNameAlreadySet     = errors.New("Name already submitted.")
	ErrEmptyName          = errors.New("Name cannot be empty.")
	ErrRoundNotActive     = errors.New("Round not active.")
	ErrNotYourTurn        = errors.New("Not your turn.")
	ErrOutsideBoard       = errors.New("Move outside the board.")
	ErrCellOccupied       = errors.New("Cell already occupied.")
	ErrInvalidCoordinates = errors.New("Invalid move coordinates.")
	ErrServerFull         = errors.New("Server is currently full.")
)
