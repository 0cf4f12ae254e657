package database

import (
	"database/sql"
	stdlog "log"

	"github.com/tracerdata/cotracer/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Ensuring report store schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Ensuring report store schema for:", databasePath)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS contributions (
		record_id TEXT PRIMARY KEY,
		report_year INTEGER NOT NULL,
		amount REAL,
		filed_date TEXT,
		document TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS expenditures (
		record_id TEXT PRIMARY KEY,
		report_year INTEGER NOT NULL,
		amount REAL,
		filed_date TEXT,
		document TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS loans (
		record_id TEXT PRIMARY KEY,
		report_year INTEGER NOT NULL,
		amount REAL,
		filed_date TEXT,
		document TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_contributions_year ON contributions(report_year);
	CREATE INDEX IF NOT EXISTS idx_expenditures_year ON expenditures(report_year);
	CREATE INDEX IF NOT EXISTS idx_loans_year ON loans(report_year);
	`

	if _, err := DB.Exec(createTableStatement); err != nil {
		stdlog.Fatalf("failed to create report store tables: %v", err)
	}
}
