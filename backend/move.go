package main

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewPosition(r, c int) Position {
	return Position{Row: r, Col: c}
}

func (p Position) IsValid() bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < BoardSize && p.Col < BoardSize
}

func (p Position) Equals(other Position) bool {
	return p.Row == other.Row && p.Col == other.Col
}

type Actor int

const (
	ActorPlayer Actor = iota
	ActorComputer
)

func (a Actor) String() string {
	if a == ActorComputer {
		return "computer"
	}
	return "player"
}

func (a Actor) cell() Cell {
	if a == ActorComputer {
		return CellComputer
	}
	return CellPlayer
}
