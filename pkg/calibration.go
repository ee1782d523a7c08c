package reco

import "fmt"

// Lookup results that are not a physical value. Every sentinel is negative so
// callers can treat any negative result as uncalibrated.
const (
	NoChip      = -5.
	NoChannel   = -4.
	BadPedestal = -3.
	BadGain     = -2.

	// returned by the gain and pedestal readback when there is no entry
	NoConstant = -999.
)

type chipKey struct {
	board int
	chip  int
}

// calibTable maps (board, chip) to a dense per-chip index and then channel to
// a row of fit parameters. It is read-only once built.
type calibTable[T any] struct {
	chipIndex    map[chipKey]int
	channelIndex []map[int]int
	params       []T
}

func newCalibTable[T any]() calibTable[T] {
	return calibTable[T]{chipIndex: make(map[chipKey]int)}
}

// insert stores p, overwriting an earlier row for the same channel.
func (t *calibTable[T]) insert(board, chip, channel int, p T) {
	key := chipKey{board, chip}
	index, ok := t.chipIndex[key]
	if !ok {
		index = len(t.channelIndex)
		t.chipIndex[key] = index
		t.channelIndex = append(t.channelIndex, make(map[int]int))
	}
	if c, ok := t.channelIndex[index][channel]; ok {
		t.params[c] = p
		return
	}
	t.channelIndex[index][channel] = len(t.params)
	t.params = append(t.params, p)
}

// lookup returns the row for a channel, or the NoChip/NoChannel sentinel.
func (t *calibTable[T]) lookup(board, chip, channel int) (T, float64) {
	var zero T
	index, ok := t.chipIndex[chipKey{board, chip}]
	if !ok {
		return zero, NoChip
	}
	c, ok := t.channelIndex[index][channel]
	if !ok {
		return zero, NoChannel
	}
	return t.params[c], 0
}

func (t *calibTable[T]) size() int {
	return len(t.params)
}

func logMissingConstants(module string, board, chip, channel int) {
	message := fmt.Sprintf("no parameters for board %d, chip %d, channel %d", board, chip, channel)
	logger.Error(fmt.Sprintf("%s: %s", module, message))
}
