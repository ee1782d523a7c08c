package reco

import "fmt"

// EventResult is the reconstruction output of a single event.
type EventResult struct {
	EventID     int
	Time        float64
	NHits       int
	NDuplicates int
	GoodHits    int
	// clusters of all boards, ordered by decreasing charge
	Clusters ClusterList
	Track    Track
	Error    bool
}

// Reconstructor runs the full chain on one event at a time. Calibrators and
// geometry may be shared between reconstructors; the clustering algorithm
// and the fitter may not.
type Reconstructor struct {
	charge   *ChargeCalibrator
	time     *TimeCalibrator
	algo     ClusterAlgo
	fitter   *TrackFitter
	geometry Geometry
}

// NewReconstructor builds a reconstructor. A nil fitter or geometry disables
// track fitting.
func NewReconstructor(charge *ChargeCalibrator, time *TimeCalibrator, algo ClusterAlgo,
	fitter *TrackFitter, geometry Geometry) *Reconstructor {
	return &Reconstructor{
		charge:   charge,
		time:     time,
		algo:     algo,
		fitter:   fitter,
		geometry: geometry,
	}
}

// Process calibrates event in place, clusters every board and fits a track
// through the clusters.
func (r *Reconstructor) Process(event *EventHits) EventResult {
	result := EventResult{
		EventID:     event.EventID,
		Time:        event.Time(),
		NHits:       event.NHits(),
		NDuplicates: event.NDuplicates(),
	}

	r.charge.Calibrate(event)
	r.time.Calibrate(event)

	for i := 0; i < event.NBoards(); i++ {
		hits := event.Get(i)
		if hits.Len() == 0 {
			continue
		}
		clusters := r.algo.Cluster(hits)
		if counter, ok := r.algo.(interface{ GoodHits() int }); ok {
			result.GoodHits += counter.GoodHits()
		}
		result.Clusters.Merge(clusters)
	}

	if r.fitter != nil && r.geometry != nil {
		result.Track = r.fitter.Fit(result.Clusters, r.geometry, event.EventID)
	}

	if configuration.Verbosity > 1 {
		message := fmt.Sprintf("event %d: %d hits, %d clusters, track fitted %v",
			event.EventID, result.NHits, result.Clusters.Len(), result.Track.IsFit)
		logger.Info(message, "reco")
	}
	return result
}
