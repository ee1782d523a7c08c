package reco

import "math"

// ChargeCalibRow is one channel of the PDO to charge calibration.
type ChargeCalibRow struct {
	Board   int     `db:"Board"`
	Chip    int     `db:"Chip"`
	Channel int     `db:"Channel"`
	C0      float64 `db:"c0"`
	A2      float64 `db:"A2"`
	T02     float64 `db:"t02"`
	D21     float64 `db:"d21"`
	Chi2    float64 `db:"chi2"`
	Prob    float64 `db:"prob"`
}

type chargeParams struct {
	c0, a2, t02, d21 float64
	chi2, prob       float64
}

// pedestal is the PDO value extrapolated to zero charge.
func (p chargeParams) pedestal() float64 {
	return math.Abs(p.c0 - p.a2*p.d21*(p.d21+2*p.t02))
}

func (p chargeParams) gain() float64 {
	return 2 * p.a2 * p.d21
}

// ChargeCalibrator converts PDO counts to charge in fC. The PDO response is
// linear at low charge, quadratic up to the turn point t02 and flat above it.
type ChargeCalibrator struct {
	table calibTable[chargeParams]
}

func NewChargeCalibrator(rows []ChargeCalibRow) *ChargeCalibrator {
	c := &ChargeCalibrator{table: newCalibTable[chargeParams]()}
	for _, r := range rows {
		c.table.insert(r.Board, r.Chip, r.Channel, chargeParams{
			c0: r.C0, a2: r.A2, t02: r.T02, d21: r.D21, chi2: r.Chi2, prob: r.Prob,
		})
	}
	return c
}

// Entries is the number of calibrated channels.
func (c *ChargeCalibrator) Entries() int {
	return c.table.size()
}

// Charge returns the charge for a PDO value, or a negative sentinel when the
// channel has no usable calibration.
func (c *ChargeCalibrator) Charge(pdo float64, board, chip, channel int) float64 {
	p, status := c.table.lookup(board, chip, channel)
	if status < 0 {
		return status
	}
	if p.pedestal() > 200 {
		return BadPedestal
	}
	if gain := p.gain(); gain > 20 || gain < 5 {
		return BadGain
	}

	// above fit saturation
	if pdo >= p.c0 {
		return p.t02
	}
	// quadratic part
	if pdo > p.c0+p.a2*p.d21*p.d21 {
		return p.t02 - math.Sqrt(math.Max(0, (pdo-p.c0)/p.a2))
	}
	// linear part
	return 0.5 * ((pdo-p.c0)/p.a2/p.d21 + p.d21 + 2*p.t02)
}

func (c *ChargeCalibrator) Gain(board, chip, channel int) float64 {
	p, status := c.table.lookup(board, chip, channel)
	if status < 0 {
		return NoConstant
	}
	return p.gain()
}

func (c *ChargeCalibrator) Pedestal(board, chip, channel int) float64 {
	p, status := c.table.lookup(board, chip, channel)
	if status < 0 {
		return NoConstant
	}
	return p.pedestal()
}

func (c *ChargeCalibrator) FitChi2(board, chip, channel int) float64 {
	p, status := c.table.lookup(board, chip, channel)
	if status < 0 {
		logMissingConstants("pdo calibration", board, chip, channel)
		return 0
	}
	return p.chi2
}

func (c *ChargeCalibrator) FitProb(board, chip, channel int) float64 {
	p, status := c.table.lookup(board, chip, channel)
	if status < 0 {
		logMissingConstants("pdo calibration", board, chip, channel)
		return 0
	}
	return p.prob
}

func (c *ChargeCalibrator) CalibrateHit(hit *Hit) {
	board, chip, ch := hit.Board(), hit.Chip(), hit.ChipChannel()
	hit.SetCharge(c.Charge(float64(hit.PDO()), board, chip, ch))
	hit.SetPDOGain(c.Gain(board, chip, ch))
	hit.SetPDOPed(c.Pedestal(board, chip, ch))
}

func (c *ChargeCalibrator) CalibrateBoard(hits *BoardHits) {
	hits.Apply(c.CalibrateHit)
}

// Calibrate sets the charge of every reading in the event, duplicates included.
func (c *ChargeCalibrator) Calibrate(event *EventHits) {
	event.Apply(c.CalibrateHit)
}
