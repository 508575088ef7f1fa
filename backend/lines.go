package main

type LineKind int

const (
	LineHorizontal LineKind = iota
	LineVertical
	LineDiagonalMain
	LineDiagonalAnti
)

func (k LineKind) String() string {
	switch k {
	case LineHorizontal:
		return "horizontal"
	case LineVertical:
		return "vertical"
	case LineDiagonalMain:
		return "diagonal-main"
	default:
		return "diagonal-anti"
	}
}

// Line is one of the 12 canonical 5-cell sequences: 5 rows, 5 columns,
// the two diagonals. Index is meaningful for rows and columns only.
type Line struct {
	Kind  LineKind
	Index int
	Cells [BoardSize]Position
}

func (l Line) Contains(r, c int) bool {
	for _, p := range l.Cells {
		if p.Row == r && p.Col == c {
			return true
		}
	}
	return false
}

var canonicalLines = buildLines()

// buildLines enumerates the canonical lines in their fixed order: rows
// 0..4, columns 0..4, main diagonal, anti diagonal.
func buildLines() []Line {
	lines := make([]Line, 0, 2*BoardSize+2)
	// Rows.
	for r := 0; r < BoardSize; r++ {
		line := Line{Kind: LineHorizontal, Index: r}
		for c := 0; c < BoardSize; c++ {
			line.Cells[c] = Position{Row: r, Col: c}
		}
		lines = append(lines, line)
	}
	// Cols.
	for c := 0; c < BoardSize; c++ {
		line := Line{Kind: LineVertical, Index: c}
		for r := 0; r < BoardSize; r++ {
			line.Cells[r] = Position{Row: r, Col: c}
		}
		lines = append(lines, line)
	}
	// Diagonal (\).
	main := Line{Kind: LineDiagonalMain}
	for i := 0; i < BoardSize; i++ {
		main.Cells[i] = Position{Row: i, Col: i}
	}
	lines = append(lines, main)
	// Anti-diagonal (/).
	anti := Line{Kind: LineDiagonalAnti}
	for i := 0; i < BoardSize; i++ {
		anti.Cells[i] = Position{Row: i, Col: BoardSize - 1 - i}
	}
	return append(lines, anti)
}

func AllLines() []Line {
	return canonicalLines
}

// LinesThrough returns the canonical lines containing (r, c): its row
// and column, plus a diagonal when the cell sits on one. Between 2 and
// 4 lines for any in-bounds cell.
func LinesThrough(r, c int) []Line {
	if r < 0 || c < 0 || r >= BoardSize || c >= BoardSize {
		return nil
	}
	lines := make([]Line, 0, 4)
	lines = append(lines, canonicalLines[r], canonicalLines[BoardSize+c])
	if r == c {
		lines = append(lines, canonicalLines[2*BoardSize])
	}
	if r+c == BoardSize-1 {
		lines = append(lines, canonicalLines[2*BoardSize+1])
	}
	return lines
}

func IsLineComplete(board Board, line Line) bool {
	for _, p := range line.Cells {
		if board.At(p.Row, p.Col) == CellEmpty {
			return false
		}
	}
	return true
}

func CountFilled(board Board, line Line) int {
	filled := 0
	for _, p := range line.Cells {
		if board.At(p.Row, p.Col) != CellEmpty {
			filled++
		}
	}
	return filled
}

func CountEmptyInLine(board Board, line Line) int {
	return BoardSize - CountFilled(board, line)
}

func CompletedLines(board Board) []Line {
	completed := []Line{}
	for _, line := range canonicalLines {
		if IsLineComplete(board, line) {
			completed = append(completed, line)
		}
	}
	return completed
}

func CountCompletedLines(board Board) int {
	count := 0
	for _, line := range canonicalLines {
		if IsLineComplete(board, line) {
			count++
		}
	}
	return count
}
