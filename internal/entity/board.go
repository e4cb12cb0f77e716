package entity

import "github.com/rocketscienceinc/tictactoe-server/internal/apperror"

const BoardSize = 3

// Mark is the symbol a slot places on the board.
type Mark byte

const (
	EmptyCell Mark = 0
	MarkX     Mark = 'X'
	MarkO     Mark = 'O'
)

func (that Mark) String() string {
	if that == EmptyCell {
		return ""
	}
	return string(rune(that))
}

// WinLines lists every row, then every column, then both diagonals.
var WinLines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

type Board [BoardSize][BoardSize]Mark

func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

func (that *Board) Reset() {
	*that = Board{}
}

// Place puts mark on an empty cell.
func (that *Board) Place(row, col int, mark Mark) error {
	if !InBounds(row, col) {
		return apperror.ErrOutsideBoard
	}

	if that[row][col] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that[row][col] = mark

	return nil
}

// HasWinner reports whether mark fills any line. The first complete line short-circuits.
func (that *Board) HasWinner(mark Mark) bool {
	for _, line := range WinLines {
		if that[line[0][0]][line[0][1]] == mark &&
			that[line[1][0]][line[1][1]] == mark &&
			that[line[2][0]][line[2][1]] == mark {
			return true
		}
	}

	return false
}

func (that *Board) IsFull() bool {
	for _, row := range that {
		for _, cell := range row {
			if cell == EmptyCell {
				return false
			}
		}
	}

	return true
}

// Rows renders the board as strings, empty cells as "".
func (that *Board) Rows() [BoardSize][BoardSize]string {
	var rows [BoardSize][BoardSize]string
	for r, row := range that {
		for c, cell := range row {
			rows[r][c] = cell.String()
		}
	}

	return rows
}
