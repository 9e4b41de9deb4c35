// Package persistence stores generated worlds: a SQLite-backed map store
// with compressed JSON blobs, plus plain-file import/export.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"parcelforge/internal/world"
)

// Store wraps a SQLite connection holding saved worlds.
type Store struct {
	conn *sqlx.DB
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

// WorldInfo is the metadata row for one saved world.
type WorldInfo struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Seed      int64   `db:"seed" json:"seed"`
	Width     float64 `db:"width" json:"width"`
	Height    float64 `db:"height" json:"height"`
	Parcels   int     `db:"parcels" json:"parcels"`
	CreatedAt int64   `db:"created_at" json:"created_at"`
	UpdatedAt int64   `db:"updated_at" json:"updated_at"`
}

// Open opens or creates the store at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	s := &Store{conn: conn, enc: enc, dec: dec}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS worlds (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		width REAL NOT NULL,
		height REAL NOT NULL,
		parcels INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		data BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_worlds_created ON worlds(created_at);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveWorld inserts a new world under a fresh id and returns it.
func (s *Store) SaveWorld(name string, seed int64, m *world.WorldMap) (string, error) {
	doc, err := world.Marshal(m)
	if err != nil {
		return "", err
	}
	blob := s.enc.EncodeAll(doc, nil)

	id := uuid.NewString()
	now := time.Now().UnixMilli()
	_, err = s.conn.Exec(`INSERT INTO worlds
		(id, name, seed, width, height, parcels, created_at, updated_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, seed, m.Width, m.Height, len(m.Parcels), now, now, blob)
	if err != nil {
		return "", fmt.Errorf("insert world: %w", err)
	}

	slog.Info("world saved",
		"id", id,
		"name", name,
		"parcels", len(m.Parcels),
		"raw", humanize.Bytes(uint64(len(doc))),
		"compressed", humanize.Bytes(uint64(len(blob))))
	return id, nil
}

// UpdateWorld replaces the blob of an existing world.
func (s *Store) UpdateWorld(id string, m *world.WorldMap) error {
	doc, err := world.Marshal(m)
	if err != nil {
		return err
	}
	blob := s.enc.EncodeAll(doc, nil)

	res, err := s.conn.Exec(
		"UPDATE worlds SET data = ?, updated_at = ? WHERE id = ?",
		blob, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("update world %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update world %s: not found", id)
	}
	return nil
}

// LoadWorld fetches and decodes one saved world.
func (s *Store) LoadWorld(id string) (*world.WorldMap, error) {
	var blob []byte
	if err := s.conn.Get(&blob, "SELECT data FROM worlds WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("load world %s: %w", id, err)
	}
	doc, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress world %s: %w", id, err)
	}
	m, err := world.Unmarshal(doc)
	if err != nil {
		return nil, fmt.Errorf("decode world %s: %w", id, err)
	}
	return m, nil
}

// ListWorlds returns metadata for all saved worlds, newest first.
func (s *Store) ListWorlds() ([]WorldInfo, error) {
	var infos []WorldInfo
	err := s.conn.Select(&infos, `SELECT id, name, seed, width, height, parcels,
		created_at, updated_at FROM worlds ORDER BY created_at DESC`)
	return infos, err
}

// DeleteWorld removes a saved world.
func (s *Store) DeleteWorld(id string) error {
	res, err := s.conn.Exec("DELETE FROM worlds WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete world %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete world %s: not found", id)
	}
	return nil
}
