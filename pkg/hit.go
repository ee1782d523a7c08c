package reco

// ChannelsPerChip is the number of strips read out by one front-end chip.
const ChannelsPerChip = 64

// TriggerChannel is reserved for the trigger signal and never clustered.
const TriggerChannel = 63

// Board id -> plane slot. Boards missing from the map get index -1.
var boardIndices = map[int]int{2: 0, 3: 1}

func SetBoardIndices(indices map[int]int) {
	m := make(map[int]int, len(indices))
	for board, index := range indices {
		m[board] = index
	}
	boardIndices = m
}

func BoardIndex(board int) int {
	if index, ok := boardIndices[board]; ok {
		return index
	}
	return -1
}

// Hit is one digitized reading on a single strip. Raw codes are kept next to
// the calibrated values; setting a raw code invalidates its calibrated value.
type Hit struct {
	board      int
	boardIndex int
	chip       int
	channel    int
	pdo        int
	tdo        int
	bcid       int
	trigBCID   int
	trigTDO    float64
	fifoCount  int
	runNumber  int

	charge      float64
	time        float64
	pdoGain     float64
	pdoPed      float64
	tdoGain     float64
	tdoPed      float64
	trigTDOGain float64
	trigTDOPed  float64

	chargeCalib bool
	timeCalib   bool
	trigCalib   bool
}

func NewHit(board, chip, channel, runNumber int) Hit {
	return Hit{
		board:       board,
		boardIndex:  BoardIndex(board),
		chip:        chip,
		channel:     channel,
		pdo:         -1,
		tdo:         -1,
		bcid:        -1,
		trigBCID:    -1,
		trigTDO:     -1,
		fifoCount:   -1,
		runNumber:   runNumber,
		charge:      -1,
		time:        -1,
		pdoGain:     -1,
		pdoPed:      -1,
		tdoGain:     -1,
		tdoPed:      -1,
		trigTDOGain: -1,
		trigTDOPed:  -1,
	}
}

func (h Hit) Board() int { return h.board }
func (h Hit) BoardIndex() int { return h.boardIndex }
func (h Hit) Chip() int { return h.chip }
func (h Hit) ChipChannel() int {
	return h.channel
}

// Channel is the strip number on the board, chip*64 + in-chip channel.
func (h Hit) Channel() int {
	return max(-1, ChannelsPerChip*h.chip+h.channel)
}

func (h Hit) PDO() int { return h.pdo }
func (h Hit) TDO() int { return h.tdo }
func (h Hit) BCID() int { return h.bcid }
func (h Hit) TrigBCID() int { return h.trigBCID }
func (h Hit) TrigTDO() float64 { return h.trigTDO }
func (h Hit) FIFOCount() int { return h.fifoCount }
func (h Hit) RunNumber() int { return h.runNumber }
func (h Hit) Charge() float64 { return h.charge }
func (h Hit) Time() float64 { return h.time }
func (h Hit) PDOGain() float64 { return h.pdoGain }
func (h Hit) PDOPed() float64 { return h.pdoPed }
func (h Hit) TDOGain() float64 { return h.tdoGain }
func (h Hit) TDOPed() float64 { return h.tdoPed }
func (h Hit) IsChargeCalib() bool { return h.chargeCalib }
func (h Hit) IsTimeCalib() bool { return h.timeCalib }
func (h Hit) IsTrigCalib() bool { return h.trigCalib }

// SuspiciousBCID flags readings latched on the first quarter of a 4-BC cycle.
func (h Hit) SuspiciousBCID() bool {
	return h.bcid%4 == 1
}

func (h Hit) TrigTime() float64 {
	return (h.trigTDO - h.trigTDOGain) / h.trigTDOPed
}

// DeltaBC is the distance in bunch crossings between the trigger and the hit.
func (h Hit) DeltaBC() float64 {
	return float64(h.trigBCID) - h.TrigTime()/25.0 - float64(h.bcid)
}

// DriftTime returns the electron drift time in ns for a trigger latency t.
// Recipe 2 corrects suspicious BCIDs by half a bunch crossing.
func (h Hit) DriftTime(t float64, recipe int) float64 {
	if !h.SuspiciousBCID() || recipe != 2 {
		return t - 25*h.DeltaBC() - h.Time()
	}
	return t - 25*(h.DeltaBC()+0.5) - h.Time()
}

func (h *Hit) SetBoard(board int) {
	h.board = board
	h.boardIndex = BoardIndex(board)
}

func (h *Hit) SetChip(chip int) { h.chip = chip }
func (h *Hit) SetChipChannel(ch int) { h.channel = ch }
func (h *Hit) SetBCID(bcid int) { h.bcid = bcid }
func (h *Hit) SetTrigBCID(bcid int) { h.trigBCID = bcid }
func (h *Hit) SetTrigTDO(tdo float64) { h.trigTDO = tdo }
func (h *Hit) SetFIFOCount(fifo int) { h.fifoCount = fifo }
func (h *Hit) SetRunNumber(run int) { h.runNumber = run }
func (h *Hit) SetPDOGain(g float64) { h.pdoGain = g }
func (h *Hit) SetPDOPed(p float64) { h.pdoPed = p }
func (h *Hit) SetTDOGain(g float64) { h.tdoGain = g }
func (h *Hit) SetTDOPed(p float64) { h.tdoPed = p }

func (h *Hit) SetPDO(pdo int) {
	h.pdo = pdo
	h.charge = -1
	h.chargeCalib = false
}

func (h *Hit) SetTDO(tdo int) {
	h.tdo = tdo
	h.time = -1
	h.timeCalib = false
}

// SetCharge stores the calibrated charge. The flag is raised even when q is a
// negative lookup sentinel; callers check the value.
func (h *Hit) SetCharge(q float64) {
	h.charge = q
	h.chargeCalib = true
}

func (h *Hit) SetTime(t float64) {
	h.time = t
	h.timeCalib = true
}

func (h *Hit) SetTrigTDOGain(g float64) {
	h.trigTDOGain = g
	h.trigCalib = true
}

func (h *Hit) SetTrigTDOPed(p float64) {
	h.trigTDOPed = p
	h.trigCalib = true
}
