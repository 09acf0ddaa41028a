package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"photodoc/internal/models"
)

// SQLiteRepository keeps the local metadata cache in an embedded database:
// two keyed tables updated by upsert, one row per photo or gallery. Image
// blobs are excluded by construction; rows hold only the JSON document form
// of the record.
type SQLiteRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewSQLiteRepository(path string, log zerolog.Logger) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS photos (
		id TEXT PRIMARY KEY,
		captured_at TIMESTAMP NOT NULL,
		data TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS galleries (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		data TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteRepository{db: db, log: log}, nil
}

func (r *SQLiteRepository) UpsertPhoto(ctx context.Context, photo models.CameraPhoto) error {
	data, err := json.Marshal(photo)
	if err != nil {
		return fmt.Errorf("encode photo: %w", err)
	}

	const query = `
		INSERT INTO photos (id, captured_at, data) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET captured_at = excluded.captured_at, data = excluded.data
	`
	_, err = r.db.ExecContext(ctx, query, photo.ID, photo.Metadata.CapturedAt, string(data))
	return err
}

func (r *SQLiteRepository) DeletePhoto(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepository) UpsertGallery(ctx context.Context, gallery models.PhotoGallery) error {
	data, err := json.Marshal(gallery)
	if err != nil {
		return fmt.Errorf("encode gallery: %w", err)
	}

	const query = `
		INSERT INTO galleries (id, created_at, data) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`
	_, err = r.db.ExecContext(ctx, query, gallery.ID, gallery.CreatedAt, string(data))
	return err
}

func (r *SQLiteRepository) LoadAll(ctx context.Context) ([]models.CameraPhoto, []models.PhotoGallery, error) {
	photos, err := loadRows[models.CameraPhoto](ctx, r.db, `SELECT data FROM photos ORDER BY captured_at`)
	if err != nil {
		return nil, nil, fmt.Errorf("load photos: %w", err)
	}
	galleries, err := loadRows[models.PhotoGallery](ctx, r.db, `SELECT data FROM galleries ORDER BY created_at`)
	if err != nil {
		return nil, nil, fmt.Errorf("load galleries: %w", err)
	}
	return photos, galleries, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func loadRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var item T
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
