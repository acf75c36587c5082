package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elliotchance/pie/v2"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"worldforge/internal/parser"
	"worldforge/internal/store"
	"worldforge/internal/validate"
	"worldforge/internal/worldbook"
)

type ConvertTextInput struct {
	Text       string `json:"text" jsonschema:"world-book text notation, see format_guide"`
	Descending bool   `json:"descending,omitempty" jsonschema:"export entries in reverse order"`
}

type FormatGuideInput struct{}

type FormatGuideOutput struct {
	Guide string `json:"guide"`
}

type SaveBookInput struct {
	Name       string `json:"name" jsonschema:"book name"`
	Text       string `json:"text" jsonschema:"world-book text notation"`
	Descending bool   `json:"descending,omitempty" jsonschema:"save entries in reverse order; later add_entry calls prepend"`
}

type BookNameInput struct {
	Name string `json:"name" jsonschema:"book name"`
}

type ListBooksInput struct{}

type MoveEntryInput struct {
	Name      string `json:"name" jsonschema:"book name"`
	UID       int    `json:"uid" jsonschema:"entry uid"`
	Direction string `json:"direction" jsonschema:"up or down"`
}

type SetPlacementInput struct {
	Name      string `json:"name" jsonschema:"book name"`
	UID       int    `json:"uid" jsonschema:"entry uid"`
	Placement string `json:"placement" jsonschema:"before_char, after_char, before_chat, after_chat, depth_system, depth_user or depth_ai"`
	Depth     *int   `json:"depth,omitempty" jsonschema:"injection depth for depth placements"`
}

type AddEntryInput struct {
	Name    string   `json:"name" jsonschema:"book name"`
	Comment string   `json:"comment" jsonschema:"entry title"`
	Content string   `json:"content,omitempty" jsonschema:"entry content"`
	Keys    []string `json:"keys,omitempty" jsonschema:"primary keywords"`
}

type EntrySummaryOutput struct {
	UID           int      `json:"uid"`
	Comment       string   `json:"comment"`
	Placement     string   `json:"placement"`
	Depth         int      `json:"depth"`
	Constant      bool     `json:"constant"`
	Keys          []string `json:"keys"`
	SecondaryKeys []string `json:"secondary_keys"`
}

type BookOutput struct {
	Name    string               `json:"name,omitempty"`
	Entries []EntrySummaryOutput `json:"entries"`
	JSON    string               `json:"json"`
}

type BookSummaryOutput struct {
	Name       string `json:"name"`
	EntryCount int    `json:"entry_count"`
	UpdatedAt  string `json:"updated_at"`
}

type ListBooksOutput struct {
	Books []BookSummaryOutput `json:"books"`
}

type DeleteBookOutput struct {
	Deleted bool `json:"deleted"`
}

type IssueOutput struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	UID      int    `json:"uid"`
	Entry    string `json:"entry"`
}

type ValidateBookOutput struct {
	Valid  bool          `json:"valid"`
	Issues []IssueOutput `json:"issues"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "convert_text",
		Description: "Convert world-book text notation into importable world-book JSON",
	}, s.handleConvertText)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "format_guide",
		Description: "Describe the text notation accepted by convert_text",
	}, s.handleFormatGuide)

	if s.books == nil {
		return
	}

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "save_book",
		Description: "Convert text notation and save it as a named book",
	}, s.handleSaveBook)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_book",
		Description: "Retrieve a saved book",
	}, s.handleGetBook)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_books",
		Description: "List saved books",
	}, s.handleListBooks)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "delete_book",
		Description: "Delete a saved book",
	}, s.handleDeleteBook)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "validate_book",
		Description: "Check a saved book for invalid or suspicious entries",
	}, s.handleValidateBook)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "move_entry",
		Description: "Move an entry of a saved book one slot up or down",
	}, s.handleMoveEntry)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_placement",
		Description: "Change where an entry of a saved book is injected",
	}, s.handleSetPlacement)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "add_entry",
		Description: "Append a default entry to a saved book",
	}, s.handleAddEntry)
}

func (s *Server) handleConvertText(ctx context.Context, req *sdk.CallToolRequest, input ConvertTextInput) (*sdk.CallToolResult, BookOutput, error) {
	book, err := parseBook(input.Text)
	if err != nil {
		return nil, BookOutput{}, err
	}
	if input.Descending {
		book.Reverse()
	}
	out, err := bookOutput("", book.Export())
	if err != nil {
		return nil, BookOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleFormatGuide(ctx context.Context, req *sdk.CallToolRequest, input FormatGuideInput) (*sdk.CallToolResult, FormatGuideOutput, error) {
	return nil, FormatGuideOutput{Guide: parser.FormatGuide}, nil
}

func (s *Server) handleSaveBook(ctx context.Context, req *sdk.CallToolRequest, input SaveBookInput) (*sdk.CallToolResult, BookOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, BookOutput{}, fmt.Errorf("name is required")
	}
	book, err := parseBook(input.Text)
	if err != nil {
		return nil, BookOutput{}, err
	}
	if input.Descending {
		book.Reverse()
	}
	saved, err := s.books.SaveBook(ctx, store.BookInput{
		Name:       input.Name,
		Source:     input.Text,
		File:       book.Export(),
		Descending: book.Descending(),
	})
	if err != nil {
		return nil, BookOutput{}, err
	}
	slog.Info("saved book", "name", saved.Name, "entries", saved.EntryCount)
	out, err := bookOutput(saved.Name, saved.File)
	if err != nil {
		return nil, BookOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleGetBook(ctx context.Context, req *sdk.CallToolRequest, input BookNameInput) (*sdk.CallToolResult, BookOutput, error) {
	if input.Name == "" {
		return nil, BookOutput{}, fmt.Errorf("name is required")
	}
	book, err := s.books.GetBook(ctx, input.Name)
	if err != nil {
		return nil, BookOutput{}, err
	}
	out, err := bookOutput(book.Name, book.File)
	if err != nil {
		return nil, BookOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleListBooks(ctx context.Context, req *sdk.CallToolRequest, input ListBooksInput) (*sdk.CallToolResult, ListBooksOutput, error) {
	books, err := s.books.ListBooks(ctx)
	if err != nil {
		return nil, ListBooksOutput{}, err
	}
	return nil, ListBooksOutput{Books: pie.Map(books, bookSummaryOutput)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, req *sdk.CallToolRequest, input BookNameInput) (*sdk.CallToolResult, DeleteBookOutput, error) {
	if input.Name == "" {
		return nil, DeleteBookOutput{}, fmt.Errorf("name is required")
	}
	deleted, err := s.books.DeleteBook(ctx, input.Name)
	if err != nil {
		return nil, DeleteBookOutput{}, err
	}
	return nil, DeleteBookOutput{Deleted: deleted}, nil
}

func (s *Server) handleValidateBook(ctx context.Context, req *sdk.CallToolRequest, input BookNameInput) (*sdk.CallToolResult, ValidateBookOutput, error) {
	if input.Name == "" {
		return nil, ValidateBookOutput{}, fmt.Errorf("name is required")
	}
	book, err := s.books.GetBook(ctx, input.Name)
	if err != nil {
		return nil, ValidateBookOutput{}, err
	}
	report := validate.Run(book.File)
	return nil, ValidateBookOutput{
		Valid:  len(report.Errors()) == 0,
		Issues: pie.Map(report.Issues, issueOutput),
	}, nil
}

func (s *Server) handleMoveEntry(ctx context.Context, req *sdk.CallToolRequest, input MoveEntryInput) (*sdk.CallToolResult, BookOutput, error) {
	dir, err := worldbook.ParseDirection(input.Direction)
	if err != nil {
		return nil, BookOutput{}, err
	}
	out, err := s.editBook(ctx, input.Name, func(b *worldbook.Book) error {
		return b.Move(input.UID, dir)
	})
	return nil, out, err
}

func (s *Server) handleSetPlacement(ctx context.Context, req *sdk.CallToolRequest, input SetPlacementInput) (*sdk.CallToolResult, BookOutput, error) {
	if input.Depth != nil && *input.Depth < 0 {
		return nil, BookOutput{}, fmt.Errorf("depth must not be negative")
	}
	out, err := s.editBook(ctx, input.Name, func(b *worldbook.Book) error {
		entry, err := b.Get(input.UID)
		if err != nil {
			return err
		}
		if err := entry.SetPlacement(input.Placement); err != nil {
			return err
		}
		if input.Depth != nil {
			entry.Depth = *input.Depth
		}
		return b.Update(entry)
	})
	return nil, out, err
}

func (s *Server) handleAddEntry(ctx context.Context, req *sdk.CallToolRequest, input AddEntryInput) (*sdk.CallToolResult, BookOutput, error) {
	out, err := s.editBook(ctx, input.Name, func(b *worldbook.Book) error {
		b.Add(input.Comment, input.Content, input.Keys)
		return nil
	})
	return nil, out, err
}

// editBook loads a saved book, applies edit and saves the result.
func (s *Server) editBook(ctx context.Context, name string, edit func(*worldbook.Book) error) (BookOutput, error) {
	if name == "" {
		return BookOutput{}, fmt.Errorf("name is required")
	}
	saved, err := s.books.GetBook(ctx, name)
	if err != nil {
		return BookOutput{}, err
	}
	entries, err := worldbook.Import(saved.File)
	if err != nil {
		return BookOutput{}, err
	}
	book := worldbook.NewBookFromEntries(entries)
	book.SetDescending(saved.Descending)
	if err := edit(book); err != nil {
		return BookOutput{}, err
	}

	updated, err := s.books.SaveBook(ctx, store.BookInput{
		Name:       saved.Name,
		Source:     saved.Source,
		File:       book.Export(),
		Descending: book.Descending(),
	})
	if err != nil {
		return BookOutput{}, err
	}
	return bookOutput(updated.Name, updated.File)
}

func parseBook(text string) (*worldbook.Book, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	entries, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	return worldbook.NewBook(entries), nil
}

func bookOutput(name string, file worldbook.File) (BookOutput, error) {
	entries, err := worldbook.Import(file)
	if err != nil {
		return BookOutput{}, err
	}
	data, err := file.MarshalIndent()
	if err != nil {
		return BookOutput{}, err
	}
	return BookOutput{
		Name:    name,
		Entries: pie.Map(entries, entrySummaryOutput),
		JSON:    string(data),
	}, nil
}

func entrySummaryOutput(entry worldbook.Entry) EntrySummaryOutput {
	return EntrySummaryOutput{
		UID:           entry.UID,
		Comment:       entry.Comment,
		Placement:     entry.Placement(),
		Depth:         entry.Depth,
		Constant:      entry.Constant,
		Keys:          append([]string{}, entry.Key...),
		SecondaryKeys: append([]string{}, entry.KeySecondary...),
	}
}

func issueOutput(issue validate.Issue) IssueOutput {
	return IssueOutput{
		Severity: string(issue.Severity),
		Code:     issue.Code,
		Message:  issue.Message,
		UID:      issue.UID,
		Entry:    issue.Entry,
	}
}

func bookSummaryOutput(book store.BookSummary) BookSummaryOutput {
	return BookSummaryOutput{
		Name:       book.Name,
		EntryCount: book.EntryCount,
		UpdatedAt:  book.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
