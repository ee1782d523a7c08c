package reco

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawHit(board, ch, pdo, tdo int) Hit {
	h := NewHit(board, ch/ChannelsPerChip, ch%ChannelsPerChip, 1)
	h.SetPDO(pdo)
	h.SetTDO(tdo)
	return h
}

func TestProcessWithoutFit(t *testing.T) {
	charge := NewChargeCalibrator([]ChargeCalibRow{
		testChargeRow(2, 0, 1), testChargeRow(2, 0, 2), testChargeRow(3, 0, 5),
	})
	r := NewReconstructor(charge, NewTimeCalibrator(nil), NewPacmanAlgo(2, 10, 2), nil, nil)

	event := NewEventHits(17)
	event.SetTime(3, 0)
	event.AddHit(rawHit(2, 1, 100, 38))
	event.AddHit(rawHit(2, 2, 91, 38))
	event.AddHit(rawHit(2, 1, 50, 38))
	event.AddHit(rawHit(3, 5, 100, 38))
	event.AddHit(rawHit(3, 9, 100, 38))

	result := r.Process(event)

	assert.Equal(t, 17, result.EventID)
	assert.Equal(t, 3., result.Time)
	assert.Equal(t, 4, result.NHits)
	assert.Equal(t, 1, result.NDuplicates)
	assert.Equal(t, 3, result.GoodHits)
	assert.False(t, result.Error)
	assert.False(t, result.Track.IsFit)

	require.Equal(t, 2, result.Clusters.Len())
	assert.InDelta(t, 17., result.Clusters.Get(0).Charge(), 1e-12)
	assert.Equal(t, 2, result.Clusters.Get(0).Board())
	assert.Equal(t, 10., result.Clusters.Get(1).Charge())
	assert.Equal(t, 3, result.Clusters.Get(1).Board())

	// the event is calibrated in place
	head := event.Find(2).Get(0).Head()
	assert.Equal(t, 10., head.Charge())
	assert.InDelta(t, 10., head.Time(), 1e-12)
	assert.Equal(t, NoChannel, event.Find(3).Get(1).Head().Charge())
}

func TestProcessFitsTrack(t *testing.T) {
	SetBoardIndices(map[int]int{1: 0, 2: 1, 3: 2, 4: 3})
	defer SetBoardIndices(map[int]int{2: 0, 3: 1})

	var rows []ChargeCalibRow
	for board := 1; board <= 4; board++ {
		rows = append(rows, testChargeRow(board, 0, 1))
	}
	g, err := NewPlaneGeometry([]PlaneConfig{
		{Board: 1, Category: "primary", Z: 0, Pitch: 0.4},
		{Board: 2, Category: "primary", Z: 10, Pitch: 0.4},
		{Board: 3, Category: "stereo", Z: 20, Angle: 0.1, Pitch: 0.4},
		{Board: 4, Category: "stereo", Z: 30, Angle: -0.1, Pitch: 0.4},
	})
	require.NoError(t, err)
	stub := &stubMinimizer{x: []float64{1, 0.1, 2, 0.2}}
	fitter := NewTrackFitter(stub, DefaultFitLimits())
	r := NewReconstructor(NewChargeCalibrator(rows), NewTimeCalibrator(nil), NewPacmanAlgo(5, 10, 2), fitter, g)

	event := NewEventHits(4)
	for board := 1; board <= 4; board++ {
		event.AddHit(rawHit(board, 1, 100, 38))
	}

	result := r.Process(event)

	assert.Equal(t, 4, result.Clusters.Len())
	assert.Equal(t, 4, result.GoodHits)
	assert.Equal(t, 1, stub.calls)
	assert.True(t, result.Track.IsFit)
	assert.Equal(t, 2, result.Track.NX)
	assert.Equal(t, 1, result.Track.NU)
	assert.Equal(t, 1, result.Track.NV)
	assert.Equal(t, 0.1, result.Track.SlopeX)
	assert.Equal(t, 0.25, result.Track.Res2)
}

func TestProcessEmptyEvent(t *testing.T) {
	r := NewReconstructor(NewChargeCalibrator(nil), NewTimeCalibrator(nil), NewPacmanAlgo(5, 10, 2), nil, nil)

	result := r.Process(NewEventHits(0))

	assert.Equal(t, 0, result.NHits)
	assert.Equal(t, 0, result.Clusters.Len())
	assert.Equal(t, -1., result.Time)
}
