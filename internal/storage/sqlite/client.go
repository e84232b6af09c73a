package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/complaint-desk/backend/internal/storage/models"
	"github.com/complaint-desk/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

// InitSchema creates the complaints table and brings legacy databases up to the
// current column set. Safe to run on every startup.
func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS complaints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		age INTEGER,
		mobile_number TEXT,
		email_id TEXT,
		complaint TEXT,
		department TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_complaints_department ON complaints(department);
	CREATE INDEX IF NOT EXISTS idx_complaints_timestamp ON complaints(timestamp);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := c.migrateLegacyColumns(); err != nil {
		return err
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// migrateLegacyColumns retrofits id and timestamp onto databases created before
// those columns existed. SQLite cannot ADD COLUMN with a non-constant default,
// so the retrofitted timestamp column has none; the insert path stamps rows
// explicitly and reads coalesce id with rowid.
func (c *Client) migrateLegacyColumns() error {
	rows, err := c.db.Query("PRAGMA table_info(complaints)")
	if err != nil {
		return fmt.Errorf("failed to inspect table: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate column info: %w", err)
	}

	if !columns["id"] {
		if _, err := c.db.Exec("ALTER TABLE complaints ADD COLUMN id INTEGER"); err != nil {
			return fmt.Errorf("failed to add id column: %w", err)
		}
		logger.Info("Migrated complaints table", zap.String("added_column", "id"))
	}

	if !columns["timestamp"] {
		if _, err := c.db.Exec("ALTER TABLE complaints ADD COLUMN timestamp DATETIME"); err != nil {
			return fmt.Errorf("failed to add timestamp column: %w", err)
		}
		logger.Info("Migrated complaints table", zap.String("added_column", "timestamp"))
	}

	return nil
}

// Insert appends one complaint row and returns the store-assigned id. There is
// no update or delete path for complaints.
func (c *Client) Insert(record *models.ComplaintRecord) (int64, error) {
	query := `
		INSERT INTO complaints (name, age, mobile_number, email_id, complaint, department, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	result, err := c.db.Exec(
		query,
		record.Name,
		record.Age,
		record.MobileNumber,
		record.EmailID,
		record.Complaint,
		record.Department,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert complaint: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}

	logger.Debug("Complaint inserted",
		zap.Int64("id", id),
		zap.String("department", record.Department),
	)

	return id, nil
}

// FetchAll returns every stored complaint. The id falls back to the implicit
// rowid for rows inserted before the id column was retrofitted.
func (c *Client) FetchAll() ([]models.ComplaintRecord, error) {
	query := `
		SELECT COALESCE(id, rowid), name, age, mobile_number, email_id, complaint, department, timestamp
		FROM complaints
	`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch complaints: %w", err)
	}
	defer rows.Close()

	return scanComplaints(rows)
}

// Search returns complaints whose name or complaint text contains term,
// matched with the store's LIKE operator. An empty term matches all rows.
func (c *Client) Search(term string) ([]models.ComplaintRecord, error) {
	query := `
		SELECT COALESCE(id, rowid), name, age, mobile_number, email_id, complaint, department, timestamp
		FROM complaints
		WHERE name LIKE ? OR complaint LIKE ?
	`

	pattern := "%" + term + "%"
	rows, err := c.db.Query(query, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search complaints: %w", err)
	}
	defer rows.Close()

	return scanComplaints(rows)
}

func scanComplaints(rows *sql.Rows) ([]models.ComplaintRecord, error) {
	var records []models.ComplaintRecord
	for rows.Next() {
		var (
			r  models.ComplaintRecord
			ts sql.NullString
		)

		err := rows.Scan(&r.ID, &r.Name, &r.Age, &r.MobileNumber, &r.EmailID, &r.Complaint, &r.Department, &ts)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if ts.Valid {
			r.Timestamp = parseTimestamp(ts.String)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return records, nil
}

// parseTimestamp handles the CURRENT_TIMESTAMP text format; rows written by
// other tools may carry an RFC 3339 value instead. Unparseable values map to
// the zero time.
func parseTimestamp(value string) time.Time {
	layouts := []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	return time.Time{}
}
