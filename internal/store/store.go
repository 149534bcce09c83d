// Package store persists pages and their documents. Round-tripping a
// document through Save and Get preserves section order, ids, types,
// content, style and required flags.
package store

import (
	"context"
	"fmt"

	agentpages "github.com/agentpages/agentpages"
	"github.com/agentpages/agentpages/internal/config"
)

// Store is the persistence collaborator for the page builder.
type Store interface {
	CreatePage(ctx context.Context, page *agentpages.Page) error
	GetPage(ctx context.Context, id string) (*agentpages.Page, error)
	HasPage(ctx context.Context, id string) (bool, error)
	ListPages(ctx context.Context) ([]PageSummary, error)
	SaveDocument(ctx context.Context, id string, doc agentpages.Document) error
	DeletePage(ctx context.Context, id string) error
	Close() error
}

// PageSummary is a page listing row without the document payload.
type PageSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Open creates the store selected by the configuration.
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "postgres":
		return NewPostgresStore(cfg.GetDSN())
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
