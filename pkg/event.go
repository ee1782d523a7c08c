package reco

import (
	"math"

	"golang.org/x/exp/slices"
)

// ChipsPerBoard is the stride of the per-board event counter array.
const ChipsPerBoard = 8

// EventHits groups the readings of one event by board.
type EventHits struct {
	EventID  int
	boards   []BoardHits
	time     float64
	eventNum []int
}

func NewEventHits(eventID int) *EventHits {
	return &EventHits{EventID: eventID, time: -1}
}

// AddHit files hit under its board, opening a new board collection if needed.
func (e *EventHits) AddHit(hit Hit) bool {
	return e.AddChain(NewHitChain(hit))
}

func (e *EventHits) AddChain(chain HitChain) bool {
	for i := range e.boards {
		if e.boards[i].AddChain(chain) {
			return true
		}
	}
	var b BoardHits
	if !b.AddChain(chain) {
		return false
	}
	e.boards = append(e.boards, b)
	return true
}

func (e *EventHits) AddHits(hits BoardHits) bool {
	if hits.Len() == 0 {
		return true
	}
	for i := range e.boards {
		if e.boards[i].Board() == hits.Board() {
			return e.boards[i].AddHits(hits)
		}
	}
	e.boards = append(e.boards, hits.Copy())
	return true
}

func (e *EventHits) NBoards() int {
	return len(e.boards)
}

// Board returns the board id of the i-th collection, -1 when out of range.
func (e *EventHits) Board(i int) int {
	if i < 0 || i >= len(e.boards) {
		return -1
	}
	return e.boards[i].Board()
}

func (e *EventHits) Get(i int) *BoardHits {
	return &e.boards[i]
}

// Find returns the collection bound to board, or nil.
func (e *EventHits) Find(board int) *BoardHits {
	for i := range e.boards {
		if e.boards[i].Board() == board {
			return &e.boards[i]
		}
	}
	return nil
}

func (e *EventHits) NHits() int {
	n := 0
	for i := range e.boards {
		n += e.boards[i].Len()
	}
	return n
}

func (e *EventHits) NDuplicates() int {
	n := 0
	for i := range e.boards {
		n += e.boards[i].NDuplicates()
	}
	return n
}

func (e *EventHits) Duplicates() *EventHits {
	dups := NewEventHits(e.EventID)
	for i := range e.boards {
		dups.AddHits(e.boards[i].Duplicates())
	}
	return dups
}

func (e *EventHits) SetTime(sec, nsec int) {
	e.time = float64(sec) + float64(nsec)/math.Pow(10, 9)
}

func (e *EventHits) Time() float64 {
	return e.time
}

func (e *EventHits) SetEventNum(evt []int) {
	e.eventNum = slices.Clone(evt)
}

// EventNum returns the trigger counter of a chip, -1 when not recorded.
func (e *EventHits) EventNum(board, chip int) int {
	i := board*ChipsPerBoard + chip
	if i < 0 || i >= len(e.eventNum) {
		return -1
	}
	return e.eventNum[i]
}

func (e *EventHits) Apply(fn func(*Hit)) {
	for i := range e.boards {
		e.boards[i].Apply(fn)
	}
}

func (e *EventHits) Copy() *EventHits {
	c := &EventHits{
		EventID:  e.EventID,
		boards:   make([]BoardHits, len(e.boards)),
		time:     e.time,
		eventNum: slices.Clone(e.eventNum),
	}
	for i := range e.boards {
		c.boards[i] = e.boards[i].Copy()
	}
	return c
}

func (e *EventHits) Reset() {
	e.boards = nil
	e.eventNum = nil
	e.time = -1
}
