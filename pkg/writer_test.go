package reco

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterCounters(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "reco.h5")
	w, err := NewWriter(filename)
	require.NoError(t, err)

	require.NoError(t, w.WriteRunInfo(12))
	require.NoError(t, w.WriteRunInfo(13))

	var clusters ClusterList
	clusters.Add(newTestCluster(2, 10, 12, 11, 3))
	clusters.Add(newTestCluster(3, 40, 20))
	fitted := EventResult{
		EventID:  1,
		NHits:    3,
		Clusters: clusters,
		Track:    Track{ConstX: 1, SlopeX: 0.1, NX: 2, NU: 1, NV: 1, IsFit: true},
	}
	require.NoError(t, w.WriteEvent(&fitted))
	require.NoError(t, w.WriteEvent(&EventResult{EventID: 2}))

	assert.Equal(t, 2, w.EvtCounter)
	assert.Equal(t, 2, w.ClusCounter)
	assert.Equal(t, 1, w.TrackCounter)
	assert.True(t, w.runWritten)

	require.NoError(t, w.Close())
	info, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriterBadPath(t *testing.T) {
	_, err := NewWriter(filepath.Join(t.TempDir(), "missing", "reco.h5"))
	var openErr *ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
}
