package reco

import (
	"errors"
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
)

const (
	EventTreeName = "vmm"
	RunTreeName   = "run_properties"
	PDOTreeName   = "PDO_calib"
	TDOTreeName   = "TDO_calib"
)

// ErrStopReading can be returned by a read callback to end the loop early
// without reporting an error.
var ErrStopReading = errors.New("stop reading")

// vmmEntry is one entry of the raw readout tree. Index i of the outer slices
// is one readout chip, j the readings of that chip.
type vmmEntry struct {
	BoardID        []int32
	Chip           []int32
	TriggerCounter []int32
	Channel        [][]int32
	PDO            [][]int32
	TDO            [][]int32
	BCID           [][]int32
}

func (e *vmmEntry) readVars() []rtree.ReadVar {
	return []rtree.ReadVar{
		{Name: "boardId", Value: &e.BoardID},
		{Name: "chip", Value: &e.Chip},
		{Name: "triggerCounter", Value: &e.TriggerCounter},
		{Name: "channel", Value: &e.Channel},
		{Name: "pdo", Value: &e.PDO},
		{Name: "tdo", Value: &e.TDO},
		{Name: "bcid", Value: &e.BCID},
	}
}

// buildEvent files every reading of an entry into a new EventHits. Readings
// whose board cannot be accepted are counted in the second return value.
func buildEvent(entry *vmmEntry, eventID, runNumber int) (*EventHits, int) {
	event := NewEventHits(eventID)
	counters := make([]int, len(entry.TriggerCounter))
	for i, c := range entry.TriggerCounter {
		counters[i] = int(c)
	}
	event.SetEventNum(counters)

	rejected := 0
	nChips := min(len(entry.Chip), len(entry.BoardID), len(entry.Channel))
	for i := 0; i < nChips; i++ {
		for j, ch := range entry.Channel[i] {
			hit := NewHit(int(entry.BoardID[i]), int(entry.Chip[i]), int(ch), runNumber)
			hit.SetPDO(valueAt(entry.PDO, i, j))
			hit.SetTDO(valueAt(entry.TDO, i, j))
			hit.SetBCID(valueAt(entry.BCID, i, j))
			if !event.AddHit(hit) {
				rejected++
			}
		}
	}
	return event, rejected
}

func valueAt(values [][]int32, i, j int) int {
	if i >= len(values) || j >= len(values[i]) {
		return -1
	}
	return int(values[i][j])
}

// EventReader iterates over the raw readout tree of a test beam file.
type EventReader struct {
	File      *riofs.File
	Filename  string
	RunNumber int
	tree      rtree.Tree
}

func OpenEventReader(filename string) (*EventReader, error) {
	f, err := groot.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	tree, err := getTree(f, EventTreeName)
	if err != nil {
		f.Close()
		return nil, err
	}
	reader := &EventReader{File: f, Filename: filename, tree: tree, RunNumber: -1}

	run, err := readRunNumber(f)
	if err != nil {
		errMessage := fmt.Errorf("%s: no run number found: %w", filename, err)
		logger.Error(errMessage.Error())
	} else {
		reader.RunNumber = run
	}
	return reader, nil
}

func (r *EventReader) Entries() int64 {
	return r.tree.Entries()
}

// Read calls fn for every entry from skip on, at most maxEvents times when
// maxEvents is positive. Entries are numbered from zero in file order.
func (r *EventReader) Read(skip, maxEvents int, fn func(event *EventHits) error) error {
	first := int64(max(skip, 0))
	last := r.tree.Entries()
	if maxEvents > 0 {
		last = min(last, first+int64(maxEvents))
	}
	if first >= last {
		return nil
	}

	var entry vmmEntry
	reader, err := rtree.NewReader(r.tree, entry.readVars(), rtree.WithRange(first, last))
	if err != nil {
		return &ErrReadTree{TreeName: EventTreeName, Err: err}
	}
	defer reader.Close()

	err = reader.Read(func(ctx rtree.RCtx) error {
		event, rejected := buildEvent(&entry, int(ctx.Entry), r.RunNumber)
		if rejected > 0 && configuration.Verbosity > 1 {
			message := fmt.Sprintf("event %d: %d readings with an invalid board", ctx.Entry, rejected)
			logger.Info(message, "reader")
		}
		return fn(event)
	})
	if errors.Is(err, ErrStopReading) {
		return nil
	}
	return err
}

func (r *EventReader) Close() error {
	return r.File.Close()
}

func getTree(f *riofs.File, name string) (rtree.Tree, error) {
	obj, err := f.Get(name)
	if err != nil {
		return nil, &ErrReadTree{TreeName: name, Err: err}
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		return nil, &ErrReadTree{TreeName: name, Err: fmt.Errorf("object is a %T", obj)}
	}
	return tree, nil
}

func readRunNumber(f *riofs.File) (int, error) {
	tree, err := getTree(f, RunTreeName)
	if err != nil {
		return -1, err
	}
	var run int32
	reader, err := rtree.NewReader(tree, []rtree.ReadVar{{Name: "runNumber", Value: &run}}, rtree.WithRange(0, 1))
	if err != nil {
		return -1, &ErrReadTree{TreeName: RunTreeName, Err: err}
	}
	defer reader.Close()

	found := false
	err = reader.Read(func(rtree.RCtx) error {
		found = true
		return nil
	})
	if err != nil {
		return -1, &ErrReadTree{TreeName: RunTreeName, Err: err}
	}
	if !found {
		return -1, &ErrReadTree{TreeName: RunTreeName, Err: errors.New("empty tree")}
	}
	return int(run), nil
}

// readTreeRows reads every entry of a flat calibration tree.
func readTreeRows[T any](filename, treeName string, vars func(*T) []rtree.ReadVar) ([]T, error) {
	f, err := groot.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer f.Close()

	tree, err := getTree(f, treeName)
	if err != nil {
		return nil, err
	}

	var row T
	reader, err := rtree.NewReader(tree, vars(&row))
	if err != nil {
		return nil, &ErrReadTree{TreeName: treeName, Err: err}
	}
	defer reader.Close()

	rows := make([]T, 0, tree.Entries())
	err = reader.Read(func(rtree.RCtx) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, &ErrReadTree{TreeName: treeName, Err: err}
	}
	return rows, nil
}

type pdoCalibEntry struct {
	MMFE8, VMM, CH               int32
	C0, A2, T02, D21, Chi2, Prob float64
}

type tdoCalibEntry struct {
	MMFE8, VMM, CH   int32
	S, C, Chi2, Prob float64
}

// ReadChargeCalibrationFile loads the PDO_calib tree of a ROOT file.
func ReadChargeCalibrationFile(filename string) (*ChargeCalibrator, error) {
	entries, err := readTreeRows(filename, PDOTreeName, func(e *pdoCalibEntry) []rtree.ReadVar {
		return []rtree.ReadVar{
			{Name: "MMFE8", Value: &e.MMFE8},
			{Name: "VMM", Value: &e.VMM},
			{Name: "CH", Value: &e.CH},
			{Name: "c0", Value: &e.C0},
			{Name: "A2", Value: &e.A2},
			{Name: "t02", Value: &e.T02},
			{Name: "d21", Value: &e.D21},
			{Name: "chi2", Value: &e.Chi2},
			{Name: "prob", Value: &e.Prob},
		}
	})
	if err != nil {
		return nil, err
	}
	rows := make([]ChargeCalibRow, len(entries))
	for i, e := range entries {
		rows[i] = ChargeCalibRow{
			Board: int(e.MMFE8), Chip: int(e.VMM), Channel: int(e.CH),
			C0: e.C0, A2: e.A2, T02: e.T02, D21: e.D21, Chi2: e.Chi2, Prob: e.Prob,
		}
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Read %d PDO calibration rows from %s", len(rows), filename)
		logger.Info(message, "reader")
	}
	return NewChargeCalibrator(rows), nil
}

// ReadTimeCalibrationFile loads the TDO_calib tree of a ROOT file.
func ReadTimeCalibrationFile(filename string) (*TimeCalibrator, error) {
	entries, err := readTreeRows(filename, TDOTreeName, func(e *tdoCalibEntry) []rtree.ReadVar {
		return []rtree.ReadVar{
			{Name: "MMFE8", Value: &e.MMFE8},
			{Name: "VMM", Value: &e.VMM},
			{Name: "CH", Value: &e.CH},
			{Name: "S", Value: &e.S},
			{Name: "C", Value: &e.C},
			{Name: "chi2", Value: &e.Chi2},
			{Name: "prob", Value: &e.Prob},
		}
	})
	if err != nil {
		return nil, err
	}
	rows := make([]TimeCalibRow, len(entries))
	for i, e := range entries {
		rows[i] = TimeCalibRow{
			Board: int(e.MMFE8), Chip: int(e.VMM), Channel: int(e.CH),
			S: e.S, C: e.C, Chi2: e.Chi2, Prob: e.Prob,
		}
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Read %d TDO calibration rows from %s", len(rows), filename)
		logger.Info(message, "reader")
	}
	return NewTimeCalibrator(rows), nil
}
