package main

import "fmt"

// Cell values double as the wire codes {0,1,2} used by board dumps
// and persisted fixtures.
type Cell int

const (
	CellEmpty Cell = iota
	CellPlayer
	CellComputer
)

const (
	BoardSize  = 5
	BoardCells = BoardSize * BoardSize
)

type Board struct {
	cells []Cell
}

func NewBoard() Board {
	b := Board{}
	b.Reset()
	return b
}

func (b *Board) Reset() {
	b.cells = make([]Cell, BoardCells)
}

func (b Board) At(r, c int) Cell {
	return b.cells[b.index(r, c)]
}

func (b *Board) Set(r, c int, value Cell) {
	b.cells[b.index(r, c)] = value
}

func (b *Board) Remove(r, c int) {
	b.cells[b.index(r, c)] = CellEmpty
}

func (b Board) InBounds(r, c int) bool {
	return r >= 0 && c >= 0 && r < BoardSize && c < BoardSize
}

func (b Board) IsEmpty(r, c int) bool {
	return b.InBounds(r, c) && b.At(r, c) == CellEmpty
}

func IsCenter(r, c int) bool {
	return r == BoardSize/2 && c == BoardSize/2
}

func (b Board) CountEmpty() int {
	count := 0
	for _, cell := range b.cells {
		if cell == CellEmpty {
			count++
		}
	}
	return count
}

func (b Board) EmptyCells() []Position {
	positions := make([]Position, 0, b.CountEmpty())
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if b.At(r, c) == CellEmpty {
				positions = append(positions, Position{Row: r, Col: c})
			}
		}
	}
	return positions
}

func (b Board) Clone() Board {
	clone := Board{}
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

// Hash renders the board as a 25-character row-major string of cell
// codes. Equal boards hash equal; any differing cell changes the string.
// Scorer cache keys are built from it.
func (b Board) Hash() string {
	buf := make([]byte, len(b.cells))
	for i, cell := range b.cells {
		buf[i] = byte('0' + cell)
	}
	return string(buf)
}

func (b Board) index(r, c int) int {
	return r*BoardSize + c
}

// Grid dumps the board as row-major integer codes, the external format
// for fixtures and API payloads. BoardFromGrid is the inverse; the
// round trip is identity.
func (b Board) Grid() [][]int {
	grid := make([][]int, BoardSize)
	for r := 0; r < BoardSize; r++ {
		grid[r] = make([]int, BoardSize)
		for c := 0; c < BoardSize; c++ {
			grid[r][c] = int(b.At(r, c))
		}
	}
	return grid
}

func BoardFromGrid(grid [][]int) (Board, error) {
	if len(grid) != BoardSize {
		return Board{}, fmt.Errorf("%w: expected %d rows, got %d", ErrMalformedBoard, BoardSize, len(grid))
	}
	b := NewBoard()
	for r, row := range grid {
		if len(row) != BoardSize {
			return Board{}, fmt.Errorf("%w: row %d has %d cells", ErrMalformedBoard, r, len(row))
		}
		for c, code := range row {
			if code < int(CellEmpty) || code > int(CellComputer) {
				return Board{}, fmt.Errorf("%w: cell (%d,%d) has code %d", ErrMalformedBoard, r, c, code)
			}
			b.Set(r, c, Cell(code))
		}
	}
	return b, nil
}

func (c Cell) String() string {
	switch c {
	case CellPlayer:
		return "Player"
	case CellComputer:
		return "Computer"
	default:
		return "Empty"
	}
}
