package reco

import "fmt"

// FitLimits bounds the work done by the minimizer for a single track.
type FitLimits struct {
	MaxFunctionCalls int
	MaxIterations    int
	Tolerance        float64
}

func DefaultFitLimits() FitLimits {
	return FitLimits{
		MaxFunctionCalls: 10000000,
		MaxIterations:    100000,
		Tolerance:        0.001,
	}
}

// fitParams are the track parameters in minimizer order.
var fitParams = []struct {
	name string
	step float64
}{
	{"c_x", 0.01},
	{"s_x", 0.001},
	{"c_y", 0.01},
	{"s_y", 0.001},
}

// TrackFitter fits a straight line through the clusters of an event by
// minimising the squared distance between predicted and measured local X
// on every plane. A TrackFitter is not safe for concurrent use.
type TrackFitter struct {
	minimizer Minimizer

	clusters []*Cluster
	planes   []Plane
}

func NewTrackFitter(minimizer Minimizer, limits FitLimits) *TrackFitter {
	f := &TrackFitter{minimizer: minimizer}
	minimizer.SetFunction(f.metric, len(fitParams))
	minimizer.SetLimits(limits.MaxFunctionCalls, limits.MaxIterations, limits.Tolerance)
	return f
}

// Fit needs at least two X clusters and two stereo clusters among boards that
// the geometry knows about. Otherwise the returned track only carries the hit
// counts and IsFit is false. evt is used for logging, -1 disables it.
func (f *TrackFitter) Fit(clusters ClusterList, geometry Geometry, evt int) Track {
	var track Track

	f.clusters = f.clusters[:0]
	f.planes = f.planes[:0]
	defer func() {
		f.clusters = f.clusters[:0]
		f.planes = f.planes[:0]
	}()

	for i := 0; i < clusters.Len(); i++ {
		c := clusters.Get(i)
		plane, ok := geometry.Plane(c.Board())
		if !ok {
			continue
		}
		f.clusters = append(f.clusters, c)
		f.planes = append(f.planes, plane)
		track.CountHit(plane.Category)
	}

	if track.NX < 2 || track.NU+track.NV < 2 {
		return track
	}

	for i, p := range fitParams {
		f.minimizer.SetVariable(i, p.name, 0, p.step)
	}
	err := f.minimizer.Minimize()
	if err != nil && evt != -1 {
		message := fmt.Sprintf("fit failed on event %d | N(clus) = %d | N(X) = %d | N(U) = %d | N(V) = %d: %v",
			evt, len(f.clusters), track.NX, track.NU, track.NV, err)
		logger.Error(message)
	}

	x := f.minimizer.X()
	track.Res2 = f.minimizer.MinValue()
	track.ConstX = x[0]
	track.SlopeX = x[1]
	track.ConstY = x[2]
	track.SlopeY = x[3]
	track.CovCXCX = f.minimizer.CovMatrix(0, 0)
	track.CovCXSX = f.minimizer.CovMatrix(0, 1)
	track.CovSXSX = f.minimizer.CovMatrix(1, 1)
	track.CovCYCY = f.minimizer.CovMatrix(2, 2)
	track.CovCYSY = f.minimizer.CovMatrix(2, 3)
	track.CovSYSY = f.minimizer.CovMatrix(3, 3)
	track.IsFit = true
	return track
}

func (f *TrackFitter) metric(param []float64) float64 {
	track := Track{
		ConstX: param[0],
		SlopeX: param[1],
		ConstY: param[2],
		SlopeY: param[3],
	}
	chi2 := 0.0
	for i, c := range f.clusters {
		diff := f.planes[i].PredictedX(track) - f.planes[i].MeasuredX(c.Channel())
		chi2 += diff * diff
	}
	return chi2
}
