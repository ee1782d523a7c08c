package reco

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

type Writer struct {
	File         *hdf5.File
	Filename     string
	RunGroup     *hdf5.Group
	RecoGroup    *hdf5.Group
	RunInfoTable *hdf5.Dataset
	EventTable   *hdf5.Dataset
	ClusterTable *hdf5.Dataset
	TrackTable   *hdf5.Dataset
	EvtCounter   int
	ClusCounter  int
	TrackCounter int
	runWritten   bool
}

func NewWriter(filename string) (*Writer, error) {
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Creating file: %s", filename)
		logger.Info(message, "writer")
	}

	var err error
	writer := &Writer{Filename: filename}
	if writer.File, err = openFile(filename); err != nil {
		return nil, err
	}
	// From here on a failure closes whatever was already created.
	fail := func(err error) (*Writer, error) {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.RunGroup, err = createGroup(writer.File, "Run"); err != nil {
		return fail(err)
	}
	if writer.RecoGroup, err = createGroup(writer.File, "Reco"); err != nil {
		return fail(err)
	}
	if writer.RunInfoTable, err = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{}); err != nil {
		return fail(err)
	}
	if writer.EventTable, err = createTable(writer.RecoGroup, "events", EventDataHDF5{}); err != nil {
		return fail(err)
	}
	if writer.ClusterTable, err = createTable(writer.RecoGroup, "clusters", ClusterHDF5{}); err != nil {
		return fail(err)
	}
	if writer.TrackTable, err = createTable(writer.RecoGroup, "tracks", TrackHDF5{}); err != nil {
		return fail(err)
	}
	return writer, nil
}

// WriteRunInfo stores the run number. Only the first call has an effect.
func (w *Writer) WriteRunInfo(runNumber int) error {
	if w.runWritten {
		return nil
	}
	if err := writeEntryToTable(w.RunInfoTable, RunInfoHDF5{run_number: int32(runNumber)}, 0); err != nil {
		return fmt.Errorf("error writing run info: %w", err)
	}
	w.runWritten = true
	return nil
}

func (w *Writer) WriteEvent(result *EventResult) error {
	fitted := int32(0)
	if result.Track.IsFit {
		fitted = 1
	}
	evt := EventDataHDF5{
		evt_number:   int32(result.EventID),
		timestamp:    result.Time,
		nhits:        int32(result.NHits),
		nduplicates:  int32(result.NDuplicates),
		ngood:        int32(result.GoodHits),
		nclusters:    int32(result.Clusters.Len()),
		track_fitted: fitted,
	}
	if err := writeEntryToTable(w.EventTable, evt, w.EvtCounter); err != nil {
		return fmt.Errorf("error writing event %d: %w", result.EventID, err)
	}
	w.EvtCounter++

	// The array MUST be allocated at creation, if not, HDF5 will panic
	clusters := make([]ClusterHDF5, result.Clusters.Len())
	for i := range clusters {
		c := result.Clusters.Get(i)
		clusters[i] = ClusterHDF5{
			evt_number:  int32(result.EventID),
			board:       int32(c.Board()),
			board_index: int32(c.BoardIndex()),
			charge:      c.Charge(),
			channel:     c.Channel(),
			nstrips:     int32(c.Len()),
			nholes:      int32(c.NHoles()),
			chip:        int32(c.Chip()),
			nduplicates: int32(c.NDuplicates()),
		}
	}
	if err := writeArrayToTable(w.ClusterTable, &clusters, w.ClusCounter); err != nil {
		return fmt.Errorf("error writing clusters of event %d: %w", result.EventID, err)
	}
	w.ClusCounter += len(clusters)

	if !result.Track.IsFit {
		return nil
	}
	t := result.Track
	track := TrackHDF5{
		evt_number: int32(result.EventID),
		const_x:    t.ConstX,
		slope_x:    t.SlopeX,
		const_y:    t.ConstY,
		slope_y:    t.SlopeY,
		cov_cxcx:   t.CovCXCX,
		cov_cxsx:   t.CovCXSX,
		cov_sxsx:   t.CovSXSX,
		cov_cycy:   t.CovCYCY,
		cov_cysy:   t.CovCYSY,
		cov_sysy:   t.CovSYSY,
		res2:       t.Res2,
		nx:         int32(t.NX),
		nu:         int32(t.NU),
		nv:         int32(t.NV),
	}
	if err := writeEntryToTable(w.TrackTable, track, w.TrackCounter); err != nil {
		return fmt.Errorf("error writing track of event %d: %w", result.EventID, err)
	}
	w.TrackCounter++
	return nil
}

func (w *Writer) Close() error {
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Closing file %s", w.Filename)
		logger.Info(message, "writer")
	}
	var errs []error

	if w.RunInfoTable != nil {
		if err := w.RunInfoTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing run info table: %w", err))
		}
	}
	if w.EventTable != nil {
		if err := w.EventTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing event table: %w", err))
		}
	}
	if w.ClusterTable != nil {
		if err := w.ClusterTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing cluster table: %w", err))
		}
	}
	if w.TrackTable != nil {
		if err := w.TrackTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing track table: %w", err))
		}
	}
	if w.RunGroup != nil {
		if err := w.RunGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing run group: %w", err))
		}
	}
	if w.RecoGroup != nil {
		if err := w.RecoGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing reco group: %w", err))
		}
	}
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
