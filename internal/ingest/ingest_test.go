package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"worldforge/internal/store"
)

type mockStore struct {
	books    map[string]*store.Book
	saved    []string
	failSave string
}

func newMockStore() *mockStore {
	return &mockStore{books: map[string]*store.Book{}}
}

func (m *mockStore) GetBook(ctx context.Context, name string) (*store.Book, error) {
	book, ok := m.books[store.NormalizeName(name)]
	if !ok {
		return nil, store.ErrBookNotFound
	}
	return book, nil
}

func (m *mockStore) SaveBook(ctx context.Context, in store.BookInput) (*store.Book, error) {
	if in.Name == m.failSave {
		return nil, errors.New("forced error")
	}
	book := &store.Book{Name: in.Name, Source: in.Source, File: in.File, EntryCount: in.File.Len()}
	m.books[store.NormalizeName(in.Name)] = book
	m.saved = append(m.saved, in.Name)
	return book, nil
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func setupSources(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "city.txt"), "#City/c上\nA busy city.\n---\n#Lab/da5\n*lab*\nGuarded.\n")
	writeFile(t, filepath.Join(root, "nested", "campus.wb"), "#Library\n*library*\nBooks.\n")
	writeFile(t, filepath.Join(root, "notes.md"), "# not a source\n")
	writeFile(t, filepath.Join(root, "drafts", "wip.txt"), "#Draft\nLater.\n")
	writeFile(t, filepath.Join(root, "empty.txt"), "   \n")
	return root
}

func TestRun_SavesBooks(t *testing.T) {
	root := setupSources(t)
	db := newMockStore()

	result, err := Run(context.Background(), db, []string{root}, Options{Exclude: []string{filepath.Join(root, "drafts")}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	saved := append([]string{}, db.saved...)
	sort.Strings(saved)
	if !reflect.DeepEqual(saved, []string{"city", "nested/campus"}) {
		t.Fatalf("unexpected saved books: %v", saved)
	}
	if result.BooksSaved != 2 || result.EntriesSaved != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.FilesSkipped != 1 {
		t.Fatalf("expected the blank file to be skipped, got %+v", result)
	}
	if db.books["city"].File.Entries["1"].Position != 4 {
		t.Fatalf("expected depth entry in city book")
	}
}

func TestRun_SkipsUnchanged(t *testing.T) {
	root := setupSources(t)
	db := newMockStore()
	ctx := context.Background()

	if _, err := Run(ctx, db, []string{root}, Options{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	db.saved = nil

	result, err := Run(ctx, db, []string{root}, Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.BooksSaved != 0 || len(db.saved) != 0 {
		t.Fatalf("expected unchanged files to be skipped, got %+v", result)
	}

	writeFile(t, filepath.Join(root, "city.txt"), "#City\nChanged.\n")
	result, err = Run(ctx, db, []string{root}, Options{})
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if !reflect.DeepEqual(db.saved, []string{"city"}) {
		t.Fatalf("expected only the changed file, got %v", db.saved)
	}

	db.saved = nil
	result, err = Run(ctx, db, []string{root}, Options{Full: true})
	if err != nil {
		t.Fatalf("full run: %v", err)
	}
	if result.BooksSaved != 3 {
		t.Fatalf("expected full run to re-save every book, got %+v", result)
	}
}

func TestRun_CollectsErrors(t *testing.T) {
	root := setupSources(t)
	writeFile(t, filepath.Join(root, "broken.txt"), "---\n---\n---\n")
	db := newMockStore()
	db.failSave = "nested/campus"

	result, err := Run(context.Background(), db, []string{root}, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected parse and save errors, got %v", result.Errors)
	}
}

func TestRun_Descending(t *testing.T) {
	root := setupSources(t)
	db := newMockStore()

	if _, err := Run(context.Background(), db, []string{root}, Options{Descending: true}); err != nil {
		t.Fatalf("run: %v", err)
	}
	city := db.books["city"].File
	if city.Entries["1"].Order != 0 || city.Entries["0"].Order != 1 {
		t.Fatalf("expected reversed order, got %+v", city.Entries)
	}
}

func TestRun_MissingRoot(t *testing.T) {
	if _, err := Run(context.Background(), newMockStore(), []string{filepath.Join(t.TempDir(), "missing")}, Options{}); err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestRun_SameFileNameInDifferentFolders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "east", "city.txt"), "#East\nRiverside.\n")
	writeFile(t, filepath.Join(root, "west", "city.txt"), "#West\nHills.\n")
	db := newMockStore()
	ctx := context.Background()

	result, err := Run(ctx, db, []string{root}, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.BooksSaved != 2 || len(db.books) != 2 {
		t.Fatalf("expected two separate books, got %+v with %d stored", result, len(db.books))
	}
	if db.books["east/city"].Source != "#East\nRiverside.\n" || db.books["west/city"].Source != "#West\nHills.\n" {
		t.Fatalf("unexpected stored books: %+v", db.books)
	}

	result, err = Run(ctx, db, []string{root}, Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.BooksSaved != 0 || result.FilesSkipped != 2 {
		t.Fatalf("expected both files skipped as unchanged, got %+v", result)
	}
}

func TestRun_DuplicateNamesAcrossRoots(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(first, "city.txt"), "#First\nOne.\n")
	writeFile(t, filepath.Join(second, "city.txt"), "#Second\nTwo.\n")
	db := newMockStore()

	result, err := Run(context.Background(), db, []string{first, second}, Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.BooksSaved != 1 || len(db.books) != 1 {
		t.Fatalf("expected only the first file saved, got %+v", result)
	}
	if db.books["city"].Source != "#First\nOne.\n" {
		t.Fatalf("expected first root to win, got %q", db.books["city"].Source)
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], ErrDuplicateName) {
		t.Fatalf("expected a duplicate name error, got %v", result.Errors)
	}
}

func TestBookName(t *testing.T) {
	root := "lore"
	tests := []struct {
		file string
		want string
	}{
		{file: filepath.Join(root, "Lin River.txt"), want: "Lin River"},
		{file: filepath.Join(root, "east", "city.wb"), want: "east/city"},
		{file: filepath.Join(root, "a", "b", "c.txt"), want: "a/b/c"},
	}
	for _, tt := range tests {
		if got := BookName(root, tt.file); got != tt.want {
			t.Fatalf("BookName(%q): got %q, want %q", tt.file, got, tt.want)
		}
	}
}
