package main

import "testing"

func TestCanonicalLineOrder(t *testing.T) {
	lines := AllLines()
	if len(lines) != 2*BoardSize+2 {
		t.Fatalf("expected %d canonical lines, got %d", 2*BoardSize+2, len(lines))
	}
	for i := 0; i < BoardSize; i++ {
		if lines[i].Kind != LineHorizontal || lines[i].Index != i {
			t.Fatalf("line %d: expected horizontal index %d, got %v/%d", i, i, lines[i].Kind, lines[i].Index)
		}
		if lines[BoardSize+i].Kind != LineVertical || lines[BoardSize+i].Index != i {
			t.Fatalf("line %d: expected vertical index %d, got %v/%d", BoardSize+i, i, lines[BoardSize+i].Kind, lines[BoardSize+i].Index)
		}
	}
	if lines[2*BoardSize].Kind != LineDiagonalMain {
		t.Fatalf("line %d must be the main diagonal", 2*BoardSize)
	}
	if lines[2*BoardSize+1].Kind != LineDiagonalAnti {
		t.Fatalf("line %d must be the anti diagonal", 2*BoardSize+1)
	}
	for i := 0; i < BoardSize; i++ {
		if lines[2*BoardSize].Cells[i] != (Position{Row: i, Col: i}) {
			t.Fatalf("main diagonal cell %d wrong: %+v", i, lines[2*BoardSize].Cells[i])
		}
		if lines[2*BoardSize+1].Cells[i] != (Position{Row: i, Col: BoardSize - 1 - i}) {
			t.Fatalf("anti diagonal cell %d wrong: %+v", i, lines[2*BoardSize+1].Cells[i])
		}
	}
}

func TestLinesThroughContainment(t *testing.T) {
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			through := LinesThrough(r, c)
			want := 2
			if r == c {
				want++
			}
			if r+c == BoardSize-1 {
				want++
			}
			if len(through) != want {
				t.Fatalf("(%d,%d): expected %d lines, got %d", r, c, want, len(through))
			}
			for _, line := range through {
				if !line.Contains(r, c) {
					t.Fatalf("(%d,%d): returned line %v/%d does not contain the cell", r, c, line.Kind, line.Index)
				}
			}
			// The complement: every canonical line not returned must not
			// contain the cell.
			for _, line := range AllLines() {
				contains := line.Contains(r, c)
				returned := false
				for _, got := range through {
					if got.Kind == line.Kind && got.Index == line.Index {
						returned = true
					}
				}
				if contains != returned {
					t.Fatalf("(%d,%d): line %v/%d containment %v but returned %v", r, c, line.Kind, line.Index, contains, returned)
				}
			}
		}
	}
}

func TestCenterSitsOnFourLines(t *testing.T) {
	if got := len(LinesThrough(2, 2)); got != 4 {
		t.Fatalf("center must sit on 4 lines, got %d", got)
	}
	if got := len(LinesThrough(0, 1)); got != 2 {
		t.Fatalf("edge cell (0,1) must sit on 2 lines, got %d", got)
	}
	if LinesThrough(-1, 0) != nil || LinesThrough(0, 5) != nil {
		t.Fatalf("out-of-bounds cells must yield no lines")
	}
}

func TestLineCountsAndCompletion(t *testing.T) {
	b := NewBoard()
	row0 := AllLines()[0]
	if CountFilled(b, row0) != 0 || CountEmptyInLine(b, row0) != BoardSize {
		t.Fatalf("fresh board row 0 should be all empty")
	}
	b.Set(0, 0, CellPlayer)
	b.Set(0, 1, CellComputer)
	if got := CountFilled(b, row0); got != 2 {
		t.Fatalf("expected 2 filled in row 0, got %d", got)
	}
	if IsLineComplete(b, row0) {
		t.Fatalf("row 0 must not be complete with empties left")
	}
	b.Set(0, 2, CellPlayer)
	b.Set(0, 3, CellComputer)
	b.Set(0, 4, CellPlayer)
	if !IsLineComplete(b, row0) {
		t.Fatalf("row 0 must be complete once all five cells are marked")
	}
}

func TestCompletedLinesMixedMarks(t *testing.T) {
	b := NewBoard()
	// Column 2 filled by alternating actors, main diagonal by the player.
	for r := 0; r < BoardSize; r++ {
		mark := CellPlayer
		if r%2 == 1 {
			mark = CellComputer
		}
		b.Set(r, 2, mark)
	}
	for i := 0; i < BoardSize; i++ {
		b.Set(i, i, CellPlayer)
	}
	completed := CompletedLines(b)
	if len(completed) != 2 {
		t.Fatalf("expected 2 completed lines, got %d", len(completed))
	}
	// Canonical order: the column before the diagonal.
	if completed[0].Kind != LineVertical || completed[0].Index != 2 {
		t.Fatalf("first completed line should be column 2, got %v/%d", completed[0].Kind, completed[0].Index)
	}
	if completed[1].Kind != LineDiagonalMain {
		t.Fatalf("second completed line should be the main diagonal, got %v", completed[1].Kind)
	}
	if got := CountCompletedLines(b); got != 2 {
		t.Fatalf("CountCompletedLines mismatch: %d", got)
	}
}
