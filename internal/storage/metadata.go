package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// MetadataDB is the durable index of finished transcripts. Job records
// themselves are in-memory and lost on restart; these rows are what
// survives.
type MetadataDB struct {
	db *sql.DB
}

// NewMetadataDB opens (and if needed initializes) the sqlite database.
// sqlite cannot create a file in a missing directory, so the parent is
// created first.
func NewMetadataDB(dbPath string) (*MetadataDB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS transcripts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL UNIQUE,
		video_name TEXT NOT NULL,
		line_count INTEGER NOT NULL,
		failed_count INTEGER NOT NULL,
		result_path TEXT NOT NULL,
		drive_url TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transcripts_created_at ON transcripts(created_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create table: %v", err)
	}

	return &MetadataDB{db: db}, nil
}

// SaveTranscript records a finished job.
func (mdb *MetadataDB) SaveTranscript(jobID, videoName string, lineCount, failedCount int, resultPath, driveURL string) error {
	query := `
	INSERT INTO transcripts (job_id, video_name, line_count, failed_count, result_path, drive_url, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := mdb.db.Exec(query, jobID, videoName, lineCount, failedCount, resultPath, driveURL, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save transcript metadata: %v", err)
	}
	return nil
}

// GetTranscript retrieves one row by job id.
func (mdb *MetadataDB) GetTranscript(jobID string) (map[string]interface{}, error) {
	query := `
	SELECT job_id, video_name, line_count, failed_count, result_path, drive_url, created_at
	FROM transcripts WHERE job_id = ?
	`

	row := mdb.db.QueryRow(query, jobID)

	var (
		jid, name, resultPath string
		driveURL              sql.NullString
		lineCount, failed     int
		createdAt             time.Time
	)

	if err := row.Scan(&jid, &name, &lineCount, &failed, &resultPath, &driveURL, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to get transcript: %v", err)
	}

	return map[string]interface{}{
		"job_id":       jid,
		"video_name":   name,
		"line_count":   lineCount,
		"failed_count": failed,
		"result_path":  resultPath,
		"drive_url":    driveURL.String,
		"created_at":   createdAt,
	}, nil
}

// ListTranscripts returns the most recent rows.
func (mdb *MetadataDB) ListTranscripts(limit int) ([]map[string]interface{}, error) {
	query := `
	SELECT job_id, video_name, line_count, failed_count, result_path, drive_url, created_at
	FROM transcripts ORDER BY created_at DESC LIMIT ?
	`

	rows, err := mdb.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %v", err)
	}
	defer rows.Close()

	var transcripts []map[string]interface{}
	for rows.Next() {
		var (
			jid, name, resultPath string
			driveURL              sql.NullString
			lineCount, failed     int
			createdAt             time.Time
		)
		if err := rows.Scan(&jid, &name, &lineCount, &failed, &resultPath, &driveURL, &createdAt); err != nil {
			continue
		}
		transcripts = append(transcripts, map[string]interface{}{
			"job_id":       jid,
			"video_name":   name,
			"line_count":   lineCount,
			"failed_count": failed,
			"result_path":  resultPath,
			"drive_url":    driveURL.String,
			"created_at":   createdAt,
		})
	}

	return transcripts, nil
}

// Close closes the database connection.
func (mdb *MetadataDB) Close() error {
	return mdb.db.Close()
}
