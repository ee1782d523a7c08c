package reco

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsGoodHit(t *testing.T) {
	assert.True(t, IsGoodHit(goodHit(2, 10, 5)))
	assert.True(t, IsGoodHit(goodHit(2, 10, 0)))

	assert.False(t, IsGoodHit(goodHit(2, TriggerChannel, 5)))
	assert.True(t, IsGoodHit(goodHit(2, ChannelsPerChip+TriggerChannel, 5)))
	assert.False(t, IsGoodHit(goodHit(9, 10, 5)))
	assert.False(t, IsGoodHit(goodHit(2, 10, BadGain)))

	uncalibrated := NewHit(2, 0, 10, 1)
	uncalibrated.SetPDO(100)
	uncalibrated.SetTDO(50)
	assert.False(t, IsGoodHit(uncalibrated))

	uncalibrated.SetCharge(5)
	assert.False(t, IsGoodHit(uncalibrated))

	noRaw := NewHit(2, 0, 10, 1)
	noRaw.SetCharge(5)
	noRaw.SetTime(5)
	assert.False(t, IsGoodHit(noRaw))
}

func TestPacmanDefaults(t *testing.T) {
	p := NewPacmanAlgo(0, 8, 1)
	assert.Equal(t, DefaultClusterSize, p.ClusterSize())
	assert.Equal(t, 8., p.SeedThreshold())
	assert.Equal(t, 1., p.HitThreshold())

	p.SetClusterSize(3)
	p.SetSeedThreshold(DefaultSeedThreshold)
	p.SetHitThreshold(DefaultHitThreshold)
	assert.Equal(t, 3, p.ClusterSize())
	assert.Equal(t, 10., p.SeedThreshold())
	assert.Equal(t, 2., p.HitThreshold())
}

func TestPacmanSingleCluster(t *testing.T) {
	hits := stripCharges(2, 10, 12, 11, 3, 14, 1)
	p := NewPacmanAlgo(2, 10, 2)

	clusters := p.Cluster(hits)

	require.Equal(t, 1, clusters.Len())
	assert.Equal(t, []int{10, 11}, clusterStrips(clusters.Get(0)))
	assert.Equal(t, 15., clusters.Get(0).Charge())
	assert.Equal(t, 3, p.GoodHits())
}

func TestPacmanSeedThresholdTooHigh(t *testing.T) {
	hits := stripCharges(2, 10, 12, 11, 3, 14, 1)
	p := NewPacmanAlgo(2, 13, 2)

	clusters := p.Cluster(hits)

	assert.Equal(t, 0, clusters.Len())
	assert.Equal(t, 3, p.GoodHits())
}

func TestPacmanEmpty(t *testing.T) {
	p := NewPacmanAlgo(2, 10, 2)

	empty := p.Cluster(&BoardHits{})
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 0, p.GoodHits())

	bad := NewBoardHits(goodHit(2, TriggerChannel, 50), goodHit(2, 20, BadPedestal))
	clusters := p.Cluster(&bad)
	assert.Equal(t, 0, clusters.Len())
	assert.Equal(t, 0, p.GoodHits())
}

func TestPacmanWindowSkipsHoles(t *testing.T) {
	// strip 12 is below threshold, so strip 14 is measured from strip 11
	hits := stripCharges(2, 10, 20, 11, 4, 12, 1, 14, 5, 16, 6)
	p := NewPacmanAlgo(3, 10, 2)

	clusters := p.Cluster(hits)

	require.Equal(t, 1, clusters.Len())
	assert.Equal(t, []int{10, 11, 14, 16}, clusterStrips(clusters.Get(0)))
	assert.Equal(t, 35., clusters.Get(0).Charge())
	assert.Equal(t, 3, clusters.Get(0).NHoles())
}

func TestPacmanBackwardExtension(t *testing.T) {
	hits := stripCharges(2, 5, 3, 7, 4, 8, 15, 9, 3)
	p := NewPacmanAlgo(2, 10, 2)

	clusters := p.Cluster(hits)

	require.Equal(t, 1, clusters.Len())
	assert.Equal(t, []int{5, 7, 8, 9}, clusterStrips(clusters.Get(0)))
	assert.Equal(t, 25., clusters.Get(0).Charge())
	assert.Equal(t, 4, p.GoodHits())
}

func TestPacmanBackwardStopsAtClaimedStrip(t *testing.T) {
	hits := stripCharges(2, 1, 12, 2, 3, 4, 4, 5, 11)
	p := NewPacmanAlgo(1, 10, 2)

	clusters := p.Cluster(hits)

	require.Equal(t, 2, clusters.Len())
	assert.Equal(t, []int{1, 2}, clusterStrips(clusters.Get(0)))
	assert.Equal(t, []int{4, 5}, clusterStrips(clusters.Get(1)))
}

func TestPacmanBackwardReordersClusters(t *testing.T) {
	hits := stripCharges(2, 1, 14, 30, 8, 31, 12)
	p := NewPacmanAlgo(2, 10, 2)

	clusters := p.Cluster(hits)

	require.Equal(t, 2, clusters.Len())
	assert.Equal(t, []int{30, 31}, clusterStrips(clusters.Get(0)))
	assert.Equal(t, 20., clusters.Get(0).Charge())
	assert.Equal(t, []int{1}, clusterStrips(clusters.Get(1)))
}

func TestPacmanSeparateClusters(t *testing.T) {
	hits := stripCharges(2, 3, 11, 4, 2, 20, 30, 21, 5, 60, 12)
	p := NewPacmanAlgo(2, 10, 2)

	clusters := p.Cluster(hits)

	require.Equal(t, 3, clusters.Len())
	assert.Equal(t, 35., clusters.Get(0).Charge())
	assert.Equal(t, 13., clusters.Get(1).Charge())
	assert.Equal(t, 12., clusters.Get(2).Charge())
	for i := 0; i < clusters.Len(); i++ {
		assert.Equal(t, 2, clusters.Get(i).Board())
	}
}

func TestPacmanDuplicatesFollowStrip(t *testing.T) {
	hits := stripCharges(2, 10, 12, 11, 3, 11, 30)
	p := NewPacmanAlgo(2, 10, 2)

	clusters := p.Cluster(hits)

	require.Equal(t, 1, clusters.Len())
	assert.Equal(t, 15., clusters.Get(0).Charge())
	assert.Equal(t, 1, clusters.NDuplicates())
}
