package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	reco "github.com/mmtb/tbreco/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestLoadConfigurationDefaults(t *testing.T) {
	filename := writeConfig(t, `{"file_in": "run.root", "file_out": "run.h5"}`)

	config, err := LoadConfiguration(filename)
	require.NoError(t, err)

	want := reco.Configuration{
		MaxEvents:        1000000000,
		FileIn:           "run.root",
		FileOut:          "run.h5",
		RunNumber:        -1,
		Host:             "localhost",
		User:             "mmreader",
		Passwd:           "readonly",
		DBName:           "MMTB",
		ClusterSize:      5,
		SeedThreshold:    10,
		HitThreshold:     2,
		BoardIndices:     map[int]int{2: 0, 3: 1},
		FitTracks:        true,
		MaxFunctionCalls: 10000000,
		MaxIterations:    100000,
		Tolerance:        0.001,
		NumWorkers:       1,
		WriteData:        true,
		CompressionLevel: 4,
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("configuration mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigurationOverrides(t *testing.T) {
	filename := writeConfig(t, `{
		"file_in": "run.root",
		"write_data": false,
		"no_db": true,
		"cluster_size": 3,
		"seed_threshold": 12.5,
		"board_indices": {"5": 0, "6": 1},
		"parallel": true,
		"num_workers": 4,
		"planes": [
			{"board": 5, "category": "primary", "z": 0, "pitch": 0.4, "offset": 128},
			{"board": 6, "category": "stereo", "z": 10, "angle": 0.0262, "pitch": 0.4}
		]
	}`)

	config, err := LoadConfiguration(filename)
	require.NoError(t, err)

	assert.False(t, config.WriteData)
	assert.True(t, config.NoDB)
	assert.Equal(t, 3, config.ClusterSize)
	assert.Equal(t, 12.5, config.SeedThreshold)
	assert.Equal(t, 2., config.HitThreshold)
	assert.Equal(t, map[int]int{5: 0, 6: 1}, config.BoardIndices)
	assert.Equal(t, 4, config.NumWorkers)
	require.Len(t, config.Planes, 2)
	assert.Equal(t, reco.PlaneConfig{Board: 5, Category: "primary", Pitch: 0.4, Offset: 128}, config.Planes[0])
	assert.Equal(t, 0.0262, config.Planes[1].Angle)
}

func TestLoadConfigurationErrors(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfiguration(writeConfig(t, `{"file_in": `))
	assert.Error(t, err)

	_, err = LoadConfiguration(writeConfig(t, `{"parallel": true, "num_workers": 0, "compression_level": 12}`))
	require.Error(t, err)
	assert.ErrorContains(t, err, "file_in is required")
	assert.ErrorContains(t, err, "file_out is required")
	assert.ErrorContains(t, err, "num_workers must be positive")
	assert.ErrorContains(t, err, "compression_level must be in [0, 9]")
}

func TestPrintConfiguration(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{
		InfoLog:  slog.New(NewHandler(&buf, nil)),
		ErrorLog: slog.New(NewHandler(&buf, nil)),
	}

	printConfiguration(reco.Configuration{FileIn: "run.root", ClusterSize: 5}, l)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 24)
	assert.Contains(t, lines[0], "[config] File in: run.root")
	assert.Contains(t, buf.String(), "[config] Cluster size: 5\n")
}

func TestHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	log := slog.New(h)

	log.Debug("hidden")
	log.Info("reading", "module", "reader")
	log.With("worker", 3).WithGroup("fit").Warn("slow")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "] [reader] reading"), lines[0])
	assert.NotContains(t, lines[0], "INFO")
	assert.True(t, strings.HasSuffix(lines[1], " [WARN] [3] fit: slow"), lines[1])
}
