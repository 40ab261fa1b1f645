package search

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("search engine is not configured")

// Searchable модель, которая зеркалируется в поисковый индекс
type Searchable interface {
	SearchIndex() string
	SearchID() string
	SearchDocument() map[string]any
}

//go:generate mockgen -destination=mocks/mock_indexer.go -package=mocks github.com/thereayou/microblog/internal/search Indexer

// Indexer абстракция над поисковым движком
type Indexer interface {
	Add(ctx context.Context, index, id string, doc map[string]any) error
	Remove(ctx context.Context, index, id string) error
	Query(ctx context.Context, index, query string, page, perPage int) ([]string, int64, error)
}

// AddModel индексирует модель
func AddModel(ctx context.Context, idx Indexer, m Searchable) error {
	if idx == nil {
		return nil
	}
	return idx.Add(ctx, m.SearchIndex(), m.SearchID(), m.SearchDocument())
}
