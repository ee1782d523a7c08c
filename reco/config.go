package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	reco "github.com/mmtb/tbreco/pkg"
)

func LoadConfiguration(filename string) (reco.Configuration, error) {
	var config reco.Configuration
	limits := reco.DefaultFitLimits()

	// Set default values
	config.MaxEvents = 1000000000
	config.Verbosity = 0
	config.Skip = 0
	config.RunNumber = -1
	config.NoDB = false
	config.Host = "localhost"
	config.User = "mmreader"
	config.Passwd = "readonly"
	config.DBName = "MMTB"
	config.ClusterSize = reco.DefaultClusterSize
	config.SeedThreshold = reco.DefaultSeedThreshold
	config.HitThreshold = reco.DefaultHitThreshold
	config.FitTracks = true
	config.MaxFunctionCalls = limits.MaxFunctionCalls
	config.MaxIterations = limits.MaxIterations
	config.Tolerance = limits.Tolerance
	config.NumWorkers = 1
	config.Parallel = false
	config.WriteData = true
	config.CompressionLevel = 4

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	// a map in the file replaces the default instead of being merged into it
	if config.BoardIndices == nil {
		config.BoardIndices = map[int]int{2: 0, 3: 1}
	}
	return config, checkConfiguration(config)
}

func checkConfiguration(config reco.Configuration) error {
	var errs []error
	if config.FileIn == "" {
		errs = append(errs, errors.New("file_in is required"))
	}
	if config.WriteData && config.FileOut == "" {
		errs = append(errs, errors.New("file_out is required when write_data is set"))
	}
	if config.Parallel && config.NumWorkers < 1 {
		errs = append(errs, fmt.Errorf("num_workers must be positive, got %d", config.NumWorkers))
	}
	if config.CompressionLevel < 0 || config.CompressionLevel > 9 {
		errs = append(errs, fmt.Errorf("compression_level must be in [0, 9], got %d", config.CompressionLevel))
	}
	return errors.Join(errs...)
}

func printConfiguration(config reco.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("File PDO: %s", config.FilePDO), "config")
	logger.Info(fmt.Sprintf("File TDO: %s", config.FileTDO), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Cluster size: %d", config.ClusterSize), "config")
	logger.Info(fmt.Sprintf("Seed threshold: %.2f", config.SeedThreshold), "config")
	logger.Info(fmt.Sprintf("Hit threshold: %.2f", config.HitThreshold), "config")
	logger.Info(fmt.Sprintf("Board indices: %v", config.BoardIndices), "config")
	logger.Info(fmt.Sprintf("Planes in configuration: %d", len(config.Planes)), "config")
	logger.Info(fmt.Sprintf("Fit tracks: %t", config.FitTracks), "config")
	logger.Info(fmt.Sprintf("Max function calls: %d", config.MaxFunctionCalls), "config")
	logger.Info(fmt.Sprintf("Max iterations: %d", config.MaxIterations), "config")
	logger.Info(fmt.Sprintf("Tolerance: %g", config.Tolerance), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Parallel: %t", config.Parallel), "config")
}
