package postgres

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"analytics-service/internal/config"

	"github.com/jmoiron/sqlx"
)

var DBStatus bool

// schemaStatements bootstraps the three survey tables on first run. Wide
// source exports carry more columns than the executor reads; keeping
// them makes imported dumps load without reshaping.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS crop_area_data (
		rec_id SERIAL PRIMARY KEY,
		state_lgd_code TEXT,
		district_lgd_code TEXT,
		sub_district_lgd_code TEXT,
		village_lgd_code TEXT,
		season TEXT,
		season_id INT,
		season_start_date TEXT,
		season_end_date TEXT,
		crop_code TEXT,
		crop_name_eng TEXT,
		irrigation_source TEXT,
		area_unit TEXT,
		year TEXT,
		timestamp TEXT,
		no_of_plots INT,
		no_of_farmers INT,
		crop_area_closed NUMERIC,
		crop_area_approved NUMERIC,
		createdat TIMESTAMP,
		updatedat TIMESTAMP,
		reference_id TEXT,
		record_id TEXT,
		is_view BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS aggregate_summary_data (
		rec_id SERIAL PRIMARY KEY,
		state_lgd_code TEXT,
		district_lgd_code TEXT,
		sub_district_lgd_code TEXT,
		village_lgd_code TEXT,
		season TEXT,
		season_id INT,
		year TEXT,
		total_plots INT,
		total_assigned_plots INT,
		total_no_of_surveyors INT,
		total_plots_surveyed INT,
		total_plots_unable_to_survey INT,
		total_survey_approved INT,
		total_today_survey INT,
		total_survey_under_review INT,
		timestamp TEXT,
		createdat TIMESTAMP,
		updatedat TIMESTAMP,
		reference_id TEXT,
		record_id TEXT,
		is_view BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS cultivated_summary_data (
		rec_id SERIAL PRIMARY KEY,
		state_lgd_code TEXT,
		district_lgd_code TEXT,
		sub_district_lgd_code TEXT,
		village_lgd_code TEXT,
		area_unit TEXT,
		season TEXT,
		season_id TEXT,
		year TEXT,
		timestamp TEXT,
		total_surveyed_plots INT,
		total_surveyable_area NUMERIC,
		total_surveyed_area NUMERIC,
		total_na_area NUMERIC,
		total_fallow_area NUMERIC,
		total_harvested_area NUMERIC,
		total_irrigated_area NUMERIC,
		total_perennial_crop_area NUMERIC,
		total_biennial_crop_area NUMERIC,
		total_seasonal_crop_area NUMERIC,
		total_unirrigated_area NUMERIC,
		createdat TIMESTAMP,
		updatedat TIMESTAMP,
		reference_id TEXT,
		record_id TEXT,
		is_view BOOLEAN
	)`,
	`CREATE INDEX IF NOT EXISTS idx_crop_area_state_year ON crop_area_data (state_lgd_code, year)`,
	`CREATE INDEX IF NOT EXISTS idx_aggregate_state_year ON aggregate_summary_data (state_lgd_code, year)`,
	`CREATE INDEX IF NOT EXISTS idx_cultivated_state_year ON cultivated_summary_data (state_lgd_code, year)`,
}

func ConnectAndCreateDB(cfg config.PostgresConfig) (*sqlx.DB, error) {
	defaultConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.DBname)

	defaultDB, err := sql.Open("postgres", defaultConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres db: %w", err)
	}
	defer defaultDB.Close()

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	err = defaultDB.QueryRow(checkQuery, cfg.DBname).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		createQuery := fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBname)
		_, err = defaultDB.Exec(createQuery)
		if err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
		}
		log.Printf("Database '%s' created successfully", cfg.DBname)
	}

	targetConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBname)

	db, err := sqlx.Connect("postgres", targetConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping target database: %w", err)
	}

	if err := executeSchema(db); err != nil {
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	DBStatus = true
	return db, nil
}

// executeSchema applies the idempotent table and index statements.
func executeSchema(db *sqlx.DB) error {
	for i, statement := range schemaStatements {
		if _, err := db.Exec(statement); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i+1, err)
		}
	}
	log.Printf("Schema bootstrap completed, executed %d statements", len(schemaStatements))
	return nil
}

func RetryConnectOnFailed(wait_amount time.Duration, db **sqlx.DB, cfg config.PostgresConfig) {
	if DBStatus {
		log.Printf("false database lost connnection alert! abort retry")
		return
	}

	if *db != nil {
		cur_db := *db
		err := cur_db.Ping()
		if err == nil {
			log.Printf("database connection is healthy, no retry needed")
			return
		}
		log.Printf("failed to ping target database: %s, retry db connection\n", err)
	} else {
		log.Printf("database connection is nil, attempting to reconnect...")
	}

	newDB, err := ConnectAndCreateDB(cfg)
	if err == nil {
		*db = newDB
		log.Printf("database retry connection successfully\n")
		return
	}
	log.Printf("failed to retry connect database: %s, next retry in %v\n", err, wait_amount)
	time.Sleep(wait_amount)

	RetryConnectOnFailed(wait_amount, db, cfg)
}
