// Package cache keeps the markers last extracted for each region in SQLite,
// so repeated runs can skip the network.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/roadside/markers"
)

// Custom errors for cache lookups
var (
	ErrNotCached = errors.New("region not cached")
	ErrStale     = errors.New("cached region is stale")
)

// Store manages cached region snapshots using SQLite.
type Store struct {
	db *sql.DB
}

// Snapshot describes the markers stored for one region.
type Snapshot struct {
	SnapshotID  uuid.UUID `json:"snapshot_id"`
	Region      string    `json:"region"`
	FetchedAt   time.Time `json:"fetched_at"`
	MarkerCount int       `json:"marker_count"`
}

// Open opens (creating if needed) the cache database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the cache tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS region_snapshots (
		snapshot_id TEXT PRIMARY KEY,
		region TEXT NOT NULL UNIQUE,
		fetched_at TEXT NOT NULL,
		marker_count INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS markers (
		snapshot_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		uid TEXT NOT NULL,
		longitude TEXT NOT NULL,
		latitude TEXT NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, position)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRegion stores the markers for a region, replacing any earlier snapshot.
// Marker order is preserved.
func (s *Store) SaveRegion(region string, ms []markers.Marker, fetchedAt time.Time) (*Snapshot, error) {
	snapshot := &Snapshot{
		SnapshotID:  uuid.New(),
		Region:      region,
		FetchedAt:   fetchedAt.UTC(),
		MarkerCount: len(ms),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteRegion(tx, region); err != nil {
		return nil, err
	}

	_, err = tx.Exec(
		"INSERT INTO region_snapshots (snapshot_id, region, fetched_at, marker_count) VALUES (?, ?, ?, ?)",
		snapshot.SnapshotID.String(),
		snapshot.Region,
		formatTime(snapshot.FetchedAt),
		snapshot.MarkerCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO markers (snapshot_id, position, uid, longitude, latitude, name)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare marker insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range ms {
		if _, err := stmt.Exec(snapshot.SnapshotID.String(), i, m.UID, m.Longitude, m.Latitude, m.Name); err != nil {
			return nil, fmt.Errorf("failed to insert marker: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return snapshot, nil
}

// LoadRegion returns the cached markers for a region. It returns
// ErrNotCached when the region has never been saved and ErrStale when the
// snapshot is older than maxAge at time now. A maxAge of zero or less never
// expires.
func (s *Store) LoadRegion(region string, maxAge time.Duration, now time.Time) ([]markers.Marker, *Snapshot, error) {
	snapshot, err := s.getSnapshot(region)
	if err != nil {
		return nil, nil, err
	}

	if maxAge > 0 && now.Sub(snapshot.FetchedAt) > maxAge {
		return nil, snapshot, ErrStale
	}

	rows, err := s.db.Query(`
		SELECT uid, longitude, latitude, name
		FROM markers
		WHERE snapshot_id = ?
		ORDER BY position
	`, snapshot.SnapshotID.String())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query markers: %w", err)
	}
	defer rows.Close()

	ms := make([]markers.Marker, 0, snapshot.MarkerCount)
	for rows.Next() {
		var m markers.Marker
		if err := rows.Scan(&m.UID, &m.Longitude, &m.Latitude, &m.Name); err != nil {
			return nil, nil, fmt.Errorf("failed to scan marker: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read markers: %w", err)
	}

	return ms, snapshot, nil
}

// ListRegions returns every cached snapshot ordered by region.
func (s *Store) ListRegions() ([]Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT snapshot_id, region, fetched_at, marker_count
		FROM region_snapshots
		ORDER BY region
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}

	return snapshots, nil
}

// Clear removes every cached region.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM markers"); err != nil {
		return fmt.Errorf("failed to clear markers: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM region_snapshots"); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}

func (s *Store) getSnapshot(region string) (*Snapshot, error) {
	row := s.db.QueryRow(`
		SELECT snapshot_id, region, fetched_at, marker_count
		FROM region_snapshots
		WHERE region = ?
	`, region)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func deleteRegion(tx *sql.Tx, region string) error {
	_, err := tx.Exec(`
		DELETE FROM markers WHERE snapshot_id IN (
			SELECT snapshot_id FROM region_snapshots WHERE region = ?
		)
	`, region)
	if err != nil {
		return fmt.Errorf("failed to delete old markers: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM region_snapshots WHERE region = ?", region); err != nil {
		return fmt.Errorf("failed to delete old snapshot: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var idStr, region, fetchedAtStr string
	var count int
	if err := row.Scan(&idStr, &region, &fetchedAtStr, &count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot_id: %w", err)
	}
	fetchedAt, err := parseTime(fetchedAtStr)
	if err != nil {
		return nil, fmt.Errorf("invalid fetched_at: %w", err)
	}

	return &Snapshot{
		SnapshotID:  id,
		Region:      region,
		FetchedAt:   fetchedAt,
		MarkerCount: count,
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
