package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mvoronin/jobscout/internal/model"
)

// Ensure SQLiteStore implements model.SettingsStore.
var _ model.SettingsStore = (*SQLiteStore)(nil)

// SQLiteStore persists one settings record per user in a SQLite database.
// Keyword and location lists are stored as JSON arrays.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the user_settings table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS user_settings (
		user_id    INTEGER PRIMARY KEY,
		keywords   TEXT NOT NULL,
		locations  TEXT NOT NULL,
		salary_min INTEGER NOT NULL,
		experience TEXT NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating user_settings table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the stored record for userID, or ok=false when none exists.
// A missing record is not an error and causes no write.
func (s *SQLiteStore) Get(ctx context.Context, userID int64) (model.Settings, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT keywords, locations, salary_min, experience FROM user_settings WHERE user_id = ?", userID)

	var keywordsJSON, locationsJSON, experience string
	var salaryMin int
	err := row.Scan(&keywordsJSON, &locationsJSON, &salaryMin, &experience)
	if err == sql.ErrNoRows {
		return model.Settings{}, false, nil
	}
	if err != nil {
		return model.Settings{}, false, fmt.Errorf("reading settings for user %d: %w", userID, err)
	}

	settings, err := decodeRow(keywordsJSON, locationsJSON, salaryMin, experience)
	if err != nil {
		return model.Settings{}, false, fmt.Errorf("decoding settings for user %d: %w", userID, err)
	}
	return settings, true, nil
}

// Upsert merges patch over the existing record, or over the defaults when no
// record exists, and persists the full result.
func (s *SQLiteStore) Upsert(ctx context.Context, userID int64, patch model.Patch) (model.Settings, error) {
	base, ok, err := s.Get(ctx, userID)
	if err != nil {
		return model.Settings{}, err
	}
	if !ok {
		base = model.DefaultSettings()
	}
	merged := patch.Apply(base)

	keywordsJSON, err := json.Marshal(merged.Keywords)
	if err != nil {
		return model.Settings{}, fmt.Errorf("encoding keywords for user %d: %w", userID, err)
	}
	locationsJSON, err := json.Marshal(merged.Locations)
	if err != nil {
		return model.Settings{}, fmt.Errorf("encoding locations for user %d: %w", userID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, keywords, locations, salary_min, experience)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   keywords = excluded.keywords,
		   locations = excluded.locations,
		   salary_min = excluded.salary_min,
		   experience = excluded.experience`,
		userID, string(keywordsJSON), string(locationsJSON), merged.SalaryMin, string(merged.Experience))
	if err != nil {
		return model.Settings{}, fmt.Errorf("saving settings for user %d: %w", userID, err)
	}

	return merged, nil
}

// Users returns the IDs of all users with a stored record.
func (s *SQLiteStore) Users(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT user_id FROM user_settings ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("listing users: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return ids, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func decodeRow(keywordsJSON, locationsJSON string, salaryMin int, experience string) (model.Settings, error) {
	var keywords, locations []string
	if err := json.Unmarshal([]byte(keywordsJSON), &keywords); err != nil {
		return model.Settings{}, fmt.Errorf("keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(locationsJSON), &locations); err != nil {
		return model.Settings{}, fmt.Errorf("locations: %w", err)
	}
	return model.Settings{
		Keywords:   keywords,
		Locations:  locations,
		SalaryMin:  salaryMin,
		Experience: model.Experience(experience),
	}, nil
}
