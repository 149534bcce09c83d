package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	agentpages "github.com/agentpages/agentpages"
)

// PostgresStore persists pages in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS pages (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	slug TEXT NOT NULL DEFAULT '',
	property JSONB NOT NULL,
	document JSONB NOT NULL,
	created_at TIMESTAMPTZ DEFAULT now(),
	updated_at TIMESTAMPTZ DEFAULT now()
)`

// NewPostgresStore opens a PostgreSQL page store using the given DSN.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres store: database connection required (set storage.dsn or DATABASE_URL)")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres store: failed to connect: %w", err)
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres store: failed to create schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// CreatePage inserts a new page row.
func (s *PostgresStore) CreatePage(ctx context.Context, page *agentpages.Page) error {
	property, document, err := marshalPage(page)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pages (id, title, slug, property, document) VALUES ($1, $2, $3, $4, $5)`,
		page.ID, page.Title, page.Slug, property, document)
	if err != nil {
		return fmt.Errorf("postgres store: insert page %s: %w", page.ID, err)
	}
	return nil
}

// GetPage loads a page by ID. Returns agentpages.ErrPageNotFound when the
// row does not exist.
func (s *PostgresStore) GetPage(ctx context.Context, id string) (*agentpages.Page, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, slug, property, document FROM pages WHERE id = $1`, id)
	return scanPage(row)
}

// HasPage reports whether a page row exists, without loading the
// document payload.
func (s *PostgresStore) HasPage(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM pages WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("postgres store: check page %s: %w", id, err)
	}
	return true, nil
}

// ListPages returns all page summaries, most recently updated first.
func (s *PostgresStore) ListPages(ctx context.Context) ([]PageSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, slug FROM pages ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list pages: %w", err)
	}
	defer rows.Close()

	var pages []PageSummary
	for rows.Next() {
		var p PageSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// SaveDocument replaces the stored document for a page.
func (s *PostgresStore) SaveDocument(ctx context.Context, id string, doc agentpages.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("postgres store: marshal document: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE pages SET document = $1, updated_at = now() WHERE id = $2`,
		string(data), id)
	if err != nil {
		return fmt.Errorf("postgres store: save document %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return agentpages.ErrPageNotFound
	}
	return nil
}

// DeletePage removes a page row.
func (s *PostgresStore) DeletePage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres store: delete page %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return agentpages.ErrPageNotFound
	}
	return nil
}

// Close releases the database connection.
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
