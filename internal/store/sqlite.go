package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	agentpages "github.com/agentpages/agentpages"
)

// SQLiteStore persists pages in a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pages (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	slug TEXT NOT NULL DEFAULT '',
	property TEXT NOT NULL,
	document TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// NewSQLiteStore opens (and if needed initializes) a SQLite page store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./agentpages.db"
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: failed to connect: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// CreatePage inserts a new page row.
func (s *SQLiteStore) CreatePage(ctx context.Context, page *agentpages.Page) error {
	property, document, err := marshalPage(page)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pages (id, title, slug, property, document) VALUES (?, ?, ?, ?, ?)`,
		page.ID, page.Title, page.Slug, property, document)
	if err != nil {
		return fmt.Errorf("sqlite store: insert page %s: %w", page.ID, err)
	}
	return nil
}

// GetPage loads a page by ID. Returns agentpages.ErrPageNotFound when the
// row does not exist.
func (s *SQLiteStore) GetPage(ctx context.Context, id string) (*agentpages.Page, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, slug, property, document FROM pages WHERE id = ?`, id)
	return scanPage(row)
}

// HasPage reports whether a page row exists, without loading the
// document payload.
func (s *SQLiteStore) HasPage(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM pages WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite store: check page %s: %w", id, err)
	}
	return true, nil
}

// ListPages returns all page summaries, most recently updated first.
func (s *SQLiteStore) ListPages(ctx context.Context) ([]PageSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, slug FROM pages ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: list pages: %w", err)
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
func (s *SQLiteStore) SaveDocument(ctx context.Context, id string, doc agentpages.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("sqlite store: marshal document: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE pages SET document = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(data), id)
	if err != nil {
		return fmt.Errorf("sqlite store: save document %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return agentpages.ErrPageNotFound
	}
	return nil
}

// DeletePage removes a page row.
func (s *SQLiteStore) DeletePage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite store: delete page %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return agentpages.ErrPageNotFound
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func marshalPage(page *agentpages.Page) (property, document string, err error) {
	p, err := json.Marshal(page.Property)
	if err != nil {
		return "", "", fmt.Errorf("marshal property: %w", err)
	}
	d, err := json.Marshal(page.Document)
	if err != nil {
		return "", "", fmt.Errorf("marshal document: %w", err)
	}
	return string(p), string(d), nil
}

func scanPage(row rowScanner) (*agentpages.Page, error) {
	var page agentpages.Page
	var property, document string
	if err := row.Scan(&page.ID, &page.Title, &page.Slug, &property, &document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, agentpages.ErrPageNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(property), &page.Property); err != nil {
		return nil, agentpages.NewDocumentError("store", "corrupt property payload").
			WithHint(err.Error())
	}
	if err := json.Unmarshal([]byte(document), &page.Document); err != nil {
		return nil, agentpages.NewDocumentError("store", "corrupt document payload").
			WithHint(err.Error())
	}
	page.Document.Normalize()
	return &page, nil
}
