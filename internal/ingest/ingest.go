package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"worldforge/internal/parser"
	"worldforge/internal/store"
	"worldforge/internal/worldbook"
)

// Extensions are the file suffixes treated as text notation sources.
var Extensions = []string{".txt", ".wb"}

type Store interface {
	GetBook(ctx context.Context, name string) (*store.Book, error)
	SaveBook(ctx context.Context, in store.BookInput) (*store.Book, error)
}

var ErrDuplicateName = errors.New("duplicate book name")

type Result struct {
	BooksSaved   int
	EntriesSaved int
	FilesSkipped int
	Errors       []error
}

type Options struct {
	// Full re-saves books whose stored source matches the file.
	Full       bool
	Descending bool
	Exclude    []string
}

// Run converts every source file under roots and saves it as a book named
// after its path below the root. Two files that map to the same name are
// reported in Result.Errors and only the first one is saved.
func Run(ctx context.Context, db Store, roots []string, options Options) (*Result, error) {
	files, err := walkSourceFiles(roots, options.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking source files: %w", err)
	}

	result := &Result{}
	claimed := make(map[string]string, len(files))
	for _, file := range files {
		path, name := file.path, file.name
		key := store.NormalizeName(name)
		if first, ok := claimed[key]; ok {
			result.Errors = append(result.Errors, fmt.Errorf("%w: %s and %s both map to %q", ErrDuplicateName, first, path, name))
			continue
		}
		claimed[key] = path

		data, err := os.ReadFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", path, err))
			continue
		}
		source := string(data)

		if !options.Full {
			unchanged, err := unchangedSource(ctx, db, name, source)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("checking %s: %w", path, err))
				continue
			}
			if unchanged {
				result.FilesSkipped++
				continue
			}
		}

		entries, err := parser.Parse(source)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}
		if len(entries) == 0 {
			result.FilesSkipped++
			continue
		}

		book := worldbook.NewBook(entries)
		if options.Descending {
			book.Reverse()
		}

		saved, err := db.SaveBook(ctx, store.BookInput{Name: name, Source: source, File: book.Export(), Descending: book.Descending()})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("saving %s: %w", path, err))
			continue
		}
		slog.Debug("ingested source", "path", path, "book", saved.Name, "entries", saved.EntryCount)
		result.BooksSaved++
		result.EntriesSaved += saved.EntryCount
	}

	return result, nil
}

// BookName is the slash-separated path of file below root, without its
// extension: lore/east/city.txt under lore becomes "east/city".
func BookName(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

func unchangedSource(ctx context.Context, db Store, name, source string) (bool, error) {
	existing, err := db.GetBook(ctx, name)
	if errors.Is(err, store.ErrBookNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return computeHash(existing.Source) == computeHash(source), nil
}

type sourceFile struct {
	path string
	name string
}

func walkSourceFiles(roots []string, excludes []string) ([]sourceFile, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []sourceFile
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			if !isSourceFile(d.Name()) {
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, sourceFile{path: path, name: BookName(root, path)})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isSourceFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range Extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func computeHash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
