package reco

import "math"

// The time table flags a bad offset before a bad slope, with codes swapped
// relative to the charge table. Valid times can be negative too, so Time
// results are matched against the sentinels by exact value, never by sign.
// Calibrated hits carry the shifted value; a failed lookup there shows up as
// NoConstant in TDOGain.
const (
	BadTimeOffset = -2.
	BadTimeSlope  = -3.
)

const (
	defaultTimeOffset = 12.
	defaultTimeSlope  = 1.3

	// fixed shift applied to every calibrated time
	timeShift = 10.
)

// TimeCalibRow is one channel of the TDO to time calibration.
type TimeCalibRow struct {
	Board   int     `db:"Board"`
	Chip    int     `db:"Chip"`
	Channel int     `db:"Channel"`
	S       float64 `db:"S"`
	C       float64 `db:"C"`
	Chi2    float64 `db:"chi2"`
	Prob    float64 `db:"prob"`
}

type timeParams struct {
	c, s       float64
	chi2, prob float64
}

// TimeCalibrator converts TDO counts to ns with a per-channel affine map.
type TimeCalibrator struct {
	table calibTable[timeParams]
}

func NewTimeCalibrator(rows []TimeCalibRow) *TimeCalibrator {
	t := &TimeCalibrator{table: newCalibTable[timeParams]()}
	for _, r := range rows {
		t.table.insert(r.Board, r.Chip, r.Channel, timeParams{
			c: r.C, s: r.S, chi2: r.Chi2, prob: r.Prob,
		})
	}
	return t
}

func (t *TimeCalibrator) Entries() int {
	return t.table.size()
}

// Time returns (tdo - C)/S for the channel, or a negative sentinel.
func (t *TimeCalibrator) Time(tdo float64, board, chip, channel int) float64 {
	p, status := t.table.lookup(board, chip, channel)
	if status < 0 {
		return status
	}
	if math.Abs(p.c) > 40 {
		return BadTimeOffset
	}
	if p.s < 1 || p.s > 2 {
		return BadTimeSlope
	}
	return (tdo - p.c) / p.s
}

// DefaultTime applies the nominal constants shared by all channels.
func (t *TimeCalibrator) DefaultTime(tdo float64) float64 {
	return (tdo - defaultTimeOffset) / defaultTimeSlope
}

func (t *TimeCalibrator) Gain(board, chip, channel int) float64 {
	p, status := t.table.lookup(board, chip, channel)
	if status < 0 {
		return NoConstant
	}
	return p.s
}

func (t *TimeCalibrator) Pedestal(board, chip, channel int) float64 {
	p, status := t.table.lookup(board, chip, channel)
	if status < 0 {
		return NoConstant
	}
	return p.c
}

func (t *TimeCalibrator) FitChi2(board, chip, channel int) float64 {
	p, status := t.table.lookup(board, chip, channel)
	if status < 0 {
		logMissingConstants("tdo calibration", board, chip, channel)
		return 0
	}
	return p.chi2
}

func (t *TimeCalibrator) FitProb(board, chip, channel int) float64 {
	p, status := t.table.lookup(board, chip, channel)
	if status < 0 {
		logMissingConstants("tdo calibration", board, chip, channel)
		return 0
	}
	return p.prob
}

// CalibrateHit stores the shifted time. Without any table loaded the nominal
// constants are used for every channel.
func (t *TimeCalibrator) CalibrateHit(hit *Hit) {
	board, chip, ch := hit.Board(), hit.Chip(), hit.ChipChannel()
	tdo := float64(hit.TDO())
	if t.table.size() == 0 {
		hit.SetTime(t.DefaultTime(tdo) - timeShift)
	} else {
		hit.SetTime(t.Time(tdo, board, chip, ch) - timeShift)
	}
	hit.SetTDOGain(t.Gain(board, chip, ch))
	hit.SetTDOPed(t.Pedestal(board, chip, ch))
}

func (t *TimeCalibrator) CalibrateBoard(hits *BoardHits) {
	hits.Apply(t.CalibrateHit)
}

func (t *TimeCalibrator) Calibrate(event *EventHits) {
	event.Apply(t.CalibrateHit)
}
