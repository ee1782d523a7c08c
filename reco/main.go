package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	reco "github.com/mmtb/tbreco/pkg"
)

var configuration reco.Configuration

var logger Logger

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	reco.SetConfiguration(configuration)
	reco.SetLogger(logger)

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	if err := run(context.Background()); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	start := time.Now()

	reader, err := reco.OpenEventReader(configuration.FileIn)
	if err != nil {
		return fmt.Errorf("error opening input: %w", err)
	}
	defer reader.Close()

	runNumber := reader.RunNumber
	if configuration.RunNumber >= 0 {
		runNumber = configuration.RunNumber
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Run %d, %d entries in %s", runNumber, reader.Entries(), configuration.FileIn)
		logger.Info(message, "main")
	}

	calib, err := loadCalibration(runNumber)
	if err != nil {
		return err
	}

	var writer *reco.Writer
	if configuration.WriteData {
		writer, err = reco.NewWriter(configuration.FileOut)
		if err != nil {
			return fmt.Errorf("error creating output: %w", err)
		}
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error(err.Error())
			}
		}()
		if err := writer.WriteRunInfo(runNumber); err != nil {
			return err
		}
	}

	var summary Summary
	sink := func(result *reco.EventResult) error {
		summary.add(result)
		if configuration.Verbosity > 0 && summary.Read%10000 == 0 {
			message := fmt.Sprintf("Processed %d events", summary.Read)
			logger.Info(message, "main")
		}
		if writer == nil || result.Error {
			return nil
		}
		return writer.WriteEvent(result)
	}
	newReconstructor := func() *reco.Reconstructor {
		return buildReconstructor(calib, configuration)
	}

	if configuration.Parallel {
		err = runParallel(ctx, reader, configuration.Skip, configuration.MaxEvents,
			configuration.NumWorkers, newReconstructor, sink)
	} else {
		err = runSequential(reader, configuration.Skip, configuration.MaxEvents, newReconstructor(), sink)
	}
	if err != nil {
		return fmt.Errorf("error processing events: %w", err)
	}

	logger.Info(fmt.Sprintf("Events read: %d", summary.Read), "main")
	logger.Info(fmt.Sprintf("Events discarded: %d", summary.Discarded), "main")
	logger.Info(fmt.Sprintf("Events with clusters: %d", summary.WithClusters), "main")
	logger.Info(fmt.Sprintf("Tracks fitted: %d", summary.Fitted), "main")
	logger.Info(fmt.Sprintf("Duplicated strips: %d", summary.Duplicates), "main")
	logger.Info(fmt.Sprintf("Total time: %d ms", time.Since(start).Milliseconds()), "main")
	return nil
}

// loadCalibration reads the tables from the database, or from the ROOT files
// and the configured planes when no_db is set. A missing file leaves the
// corresponding table empty.
func loadCalibration(runNumber int) (reco.Calibration, error) {
	if !configuration.NoDB {
		dbConn, err := reco.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			return reco.Calibration{}, fmt.Errorf("Error connection to database: %w", err)
		}
		defer dbConn.Close()
		return reco.LoadDatabase(dbConn, runNumber)
	}

	var calib reco.Calibration
	var err error
	if configuration.FilePDO != "" {
		if calib.Charge, err = reco.ReadChargeCalibrationFile(configuration.FilePDO); err != nil {
			return calib, err
		}
	} else {
		calib.Charge = reco.NewChargeCalibrator(nil)
	}
	if configuration.FileTDO != "" {
		if calib.Time, err = reco.ReadTimeCalibrationFile(configuration.FileTDO); err != nil {
			return calib, err
		}
	} else {
		calib.Time = reco.NewTimeCalibrator(nil)
	}
	if calib.Geometry, err = reco.NewPlaneGeometry(configuration.Planes); err != nil {
		return calib, fmt.Errorf("error reading planes: %w", err)
	}
	return calib, nil
}

func buildReconstructor(calib reco.Calibration, config reco.Configuration) *reco.Reconstructor {
	algo := reco.NewPacmanAlgo(config.ClusterSize, config.SeedThreshold, config.HitThreshold)
	if !config.FitTracks || calib.Geometry == nil || calib.Geometry.NPlanes() == 0 {
		return reco.NewReconstructor(calib.Charge, calib.Time, algo, nil, nil)
	}
	limits := reco.FitLimits{
		MaxFunctionCalls: config.MaxFunctionCalls,
		MaxIterations:    config.MaxIterations,
		Tolerance:        config.Tolerance,
	}
	fitter := reco.NewTrackFitter(reco.NewGonumMinimizer(), limits)
	return reco.NewReconstructor(calib.Charge, calib.Time, algo, fitter, calib.Geometry)
}
