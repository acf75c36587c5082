package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"worldforge/internal/store"
)

// BookStore is the part of store.Store the tools need.
type BookStore interface {
	SaveBook(ctx context.Context, in store.BookInput) (*store.Book, error)
	GetBook(ctx context.Context, name string) (*store.Book, error)
	ListBooks(ctx context.Context) ([]store.BookSummary, error)
	DeleteBook(ctx context.Context, name string) (bool, error)
}

type Server struct {
	books BookStore
	mcp   *sdk.Server
}

// NewServer registers the conversion tools, plus the book tools when books
// is non-nil.
func NewServer(books BookStore, version string) *Server {
	s := &Server{
		books: books,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "worldforge",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
