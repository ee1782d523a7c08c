package reco

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// Calibration holds everything read from the database for one run.
type Calibration struct {
	Charge   *ChargeCalibrator
	Time     *TimeCalibrator
	Geometry *PlaneGeometry
}

func LoadDatabase(dbConn *sqlx.DB, runNumber int) (Calibration, error) {
	var calib Calibration
	var err error
	calib.Charge, err = LoadChargeCalibration(dbConn, runNumber)
	if err != nil {
		errMessage := fmt.Errorf("error getting PDO calibration from database: %w", err)
		logger.Error(errMessage.Error())
		return calib, errMessage
	}
	calib.Time, err = LoadTimeCalibration(dbConn, runNumber)
	if err != nil {
		errMessage := fmt.Errorf("error getting TDO calibration from database: %w", err)
		logger.Error(errMessage.Error())
		return calib, errMessage
	}
	calib.Geometry, err = LoadGeometry(dbConn, runNumber)
	if err != nil {
		errMessage := fmt.Errorf("error getting geometry from database: %w", err)
		logger.Error(errMessage.Error())
		return calib, errMessage
	}
	return calib, nil
}

func LoadChargeCalibration(db *sqlx.DB, runNumber int) (*ChargeCalibrator, error) {
	query := "SELECT Board, Chip, Channel, c0, A2, t02, d21, chi2, prob FROM PDOCalibration " +
		"WHERE MinRun <= %d and MaxRun >= %d ORDER BY Board, Chip, Channel"
	rows, err := queryRunRange[ChargeCalibRow](db, query, runNumber, "PDO calibration")
	if err != nil {
		return nil, err
	}
	return NewChargeCalibrator(rows), nil
}

func LoadTimeCalibration(db *sqlx.DB, runNumber int) (*TimeCalibrator, error) {
	query := "SELECT Board, Chip, Channel, S, C, chi2, prob FROM TDOCalibration " +
		"WHERE MinRun <= %d and MaxRun >= %d ORDER BY Board, Chip, Channel"
	rows, err := queryRunRange[TimeCalibRow](db, query, runNumber, "TDO calibration")
	if err != nil {
		return nil, err
	}
	return NewTimeCalibrator(rows), nil
}

func LoadGeometry(db *sqlx.DB, runNumber int) (*PlaneGeometry, error) {
	query := "SELECT Board, Category, Z, Angle, X0, Y0, Pitch, ChannelOffset FROM Planes " +
		"WHERE MinRun <= %d and MaxRun >= %d ORDER BY Z"
	planes, err := queryRunRange[PlaneConfig](db, query, runNumber, "plane geometry")
	if err != nil {
		return nil, err
	}
	return NewPlaneGeometry(planes)
}

func queryRunRange[T any](db *sqlx.DB, query string, runNumber int, what string) ([]T, error) {
	query = fmt.Sprintf(query, runNumber, runNumber)
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading %s from database", what)
		logger.Info(message, "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		var result T
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading DB rows: %w", err)
	}
	return results, nil
}
