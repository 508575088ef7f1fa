package main

// MoveRecord is one entry of the external move-log format: which actor
// marked which cell in which round.
type MoveRecord struct {
	Round int    `json:"round"`
	Actor string `json:"actor"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
}

type MoveHistory struct {
	entries []MoveRecord
}

func (h *MoveHistory) Clear() {
	h.entries = nil
}

func (h *MoveHistory) Push(entry MoveRecord) {
	h.entries = append(h.entries, entry)
}

func (h MoveHistory) Size() int {
	return len(h.entries)
}

func (h MoveHistory) All() []MoveRecord {
	return append([]MoveRecord(nil), h.entries...)
}
