package reco

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"
)

func TestBuildEvent(t *testing.T) {
	entry := vmmEntry{
		BoardID:        []int32{2, 2, 3, 7},
		Chip:           []int32{0, 1, 0, 0},
		TriggerCounter: []int32{11, 12, 13},
		Channel:        [][]int32{{5, 4, 5}, {2}, {9}, {1}},
		PDO:            [][]int32{{100, 200, 300}, {400}, {500}, {600}},
		TDO:            [][]int32{{10, 20, 30}, {40}, {50}},
		BCID:           [][]int32{{1, 2}, {3}, {4}, {5}},
	}

	event, rejected := buildEvent(&entry, 8, 321)

	assert.Equal(t, 0, rejected)
	assert.Equal(t, 8, event.EventID)
	assert.Equal(t, 3, event.NBoards())
	assert.Equal(t, 12, event.EventNum(0, 1))

	b := event.Find(2)
	require.NotNil(t, b)
	require.Equal(t, 3, b.Len())
	assert.Equal(t, 4, b.Get(0).Channel())
	assert.Equal(t, 200, b.Get(0).Head().PDO())
	assert.Equal(t, 2, b.Get(1).Len())
	assert.Equal(t, 100, b.Get(1).Head().PDO())
	assert.Equal(t, 300, b.Get(1).Get(1).PDO())
	assert.Equal(t, -1, b.Get(1).Get(1).BCID())
	assert.Equal(t, 66, b.Get(2).Channel())
	assert.Equal(t, 321, b.Get(2).Head().RunNumber())

	// missing values are left at -1
	orphan := event.Find(7).Get(0).Head()
	assert.Equal(t, 600, orphan.PDO())
	assert.Equal(t, -1, orphan.TDO())
	assert.Equal(t, 5, orphan.BCID())
	assert.Equal(t, -1, orphan.BoardIndex())
}

func TestBuildEventKeepsUnknownBoard(t *testing.T) {
	entry := vmmEntry{
		BoardID: []int32{2, -1},
		Chip:    []int32{0, 0},
		Channel: [][]int32{{1}, {1, 2}},
		PDO:     [][]int32{{1}, {1, 2}},
		TDO:     [][]int32{{1}, {1, 2}},
		BCID:    [][]int32{{1}, {1, 2}},
	}

	event, rejected := buildEvent(&entry, 0, 1)

	assert.Equal(t, 0, rejected)
	assert.Equal(t, 3, event.NHits())
	assert.Equal(t, 2, event.NBoards())
	require.NotNil(t, event.Find(-1))
	assert.Equal(t, 2, event.Find(-1).Len())
	assert.Equal(t, -1, event.Find(-1).BoardIndex())
	assert.Equal(t, -1, event.EventNum(0, 0))
}

func TestBuildEventShortArrays(t *testing.T) {
	entry := vmmEntry{
		BoardID: []int32{2, 3},
		Chip:    []int32{0},
		Channel: [][]int32{{1}, {2}},
	}

	event, rejected := buildEvent(&entry, 0, 1)

	assert.Equal(t, 0, rejected)
	assert.Equal(t, 1, event.NHits())
	assert.Equal(t, -1, event.Get(0).Get(0).Head().PDO())
}

func writeCalibTree(t *testing.T, filename, treeName string, names []string, rows [][]float64) {
	t.Helper()
	f, err := groot.Create(filename)
	require.NoError(t, err)
	defer f.Close()

	ids := make([]int32, 3)
	values := make([]float64, len(names)-3)
	vars := make([]rtree.WriteVar, len(names))
	for i, name := range names {
		if i < 3 {
			vars[i] = rtree.WriteVar{Name: name, Value: &ids[i]}
		} else {
			vars[i] = rtree.WriteVar{Name: name, Value: &values[i-3]}
		}
	}
	tw, err := rtree.NewWriter(f, treeName, vars)
	require.NoError(t, err)

	for _, row := range rows {
		for i, v := range row {
			if i < 3 {
				ids[i] = int32(v)
			} else {
				values[i-3] = v
			}
		}
		_, err := tw.Write()
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
}

func TestReadCalibrationFiles(t *testing.T) {
	dir := t.TempDir()
	pdoFile := filepath.Join(dir, "pdo.root")
	tdoFile := filepath.Join(dir, "tdo.root")

	writeCalibTree(t, pdoFile, PDOTreeName,
		[]string{"MMFE8", "VMM", "CH", "c0", "A2", "t02", "d21", "chi2", "prob"},
		[][]float64{
			{2, 0, 1, 100, -1, 10, -5, 1.5, 0.3},
			{2, 1, 7, 100, -1, 11, -5, 1.5, 0.3},
		})
	writeCalibTree(t, tdoFile, TDOTreeName,
		[]string{"MMFE8", "VMM", "CH", "S", "C", "chi2", "prob"},
		[][]float64{{3, 0, 4, 1.5, 6, 2, 0.9}})

	charge, err := ReadChargeCalibrationFile(pdoFile)
	require.NoError(t, err)
	assert.Equal(t, 2, charge.Entries())
	assert.Equal(t, 10., charge.Charge(100, 2, 0, 1))
	assert.Equal(t, 11., charge.Charge(100, 2, 1, 7))

	tdc, err := ReadTimeCalibrationFile(tdoFile)
	require.NoError(t, err)
	assert.Equal(t, 1, tdc.Entries())
	assert.Equal(t, 20., tdc.Time(36, 3, 0, 4))

	_, err = ReadTimeCalibrationFile(pdoFile)
	var treeErr *ErrReadTree
	require.True(t, errors.As(err, &treeErr))
	assert.Equal(t, TDOTreeName, treeErr.TreeName)

	_, err = OpenEventReader(pdoFile)
	require.True(t, errors.As(err, &treeErr))
	assert.Equal(t, EventTreeName, treeErr.TreeName)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := OpenEventReader(filepath.Join(t.TempDir(), "missing.root"))
	var openErr *ErrOpenFile
	require.True(t, errors.As(err, &openErr))

	_, err = ReadChargeCalibrationFile(filepath.Join(t.TempDir(), "missing.root"))
	assert.True(t, errors.As(err, &openErr))
}
