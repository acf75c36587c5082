package store

import (
	"context"
)

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	SaveBook(ctx context.Context, in BookInput) (*Book, error)
	GetBook(ctx context.Context, name string) (*Book, error)
	ListBooks(ctx context.Context) ([]BookSummary, error)
	DeleteBook(ctx context.Context, name string) (bool, error)

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
