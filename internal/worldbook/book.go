package worldbook

import (
	"fmt"
	"slices"
	"sort"
)

type Direction int

const (
	Up Direction = iota
	Down
)

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return Up, fmt.Errorf("invalid direction %q: expected up or down", s)
	}
}

// Sequence returns the entries of c ordered by Order, ties broken by uid.
func Sequence(c Collection) []Entry {
	entries := make([]Entry, 0, len(c))
	for _, entry := range c {
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Order != entries[j].Order {
			return entries[i].Order < entries[j].Order
		}
		return entries[i].UID < entries[j].UID
	})
	return entries
}

// Renumber sets Order and DisplayIndex of every entry to its index.
func Renumber(entries []Entry) {
	for i := range entries {
		entries[i].Order = i
		entries[i].DisplayIndex = i
	}
}

// Book is an ordered, editable world-book. Every mutation keeps Order and
// DisplayIndex equal to the entry's index.
type Book struct {
	entries    []Entry
	descending bool
}

func NewBook(c Collection) *Book {
	return NewBookFromEntries(Sequence(c))
}

func NewBookFromEntries(entries []Entry) *Book {
	b := &Book{entries: make([]Entry, 0, len(entries))}
	for _, entry := range entries {
		b.entries = append(b.entries, entry.Clone())
	}
	Renumber(b.entries)
	return b
}

func (b *Book) Len() int {
	return len(b.entries)
}

// Entries returns a copy of the current sequence.
func (b *Book) Entries() []Entry {
	out := make([]Entry, 0, len(b.entries))
	for _, entry := range b.entries {
		out = append(out, entry.Clone())
	}
	return out
}

func (b *Book) Descending() bool {
	return b.descending
}

// SetDescending restores the mode of a book loaded from an export that was
// already reversed. The sequence is left as is.
func (b *Book) SetDescending(descending bool) {
	b.descending = descending
}

func (b *Book) index(uid int) int {
	for i, entry := range b.entries {
		if entry.UID == uid {
			return i
		}
	}
	return -1
}

func (b *Book) Get(uid int) (Entry, error) {
	i := b.index(uid)
	if i == -1 {
		return Entry{}, fmt.Errorf("%w: uid %d", ErrEntryNotFound, uid)
	}
	return b.entries[i].Clone(), nil
}

// Update replaces the entry with the same uid. Its sequence slot is kept.
func (b *Book) Update(entry Entry) error {
	i := b.index(entry.UID)
	if i == -1 {
		return fmt.Errorf("%w: uid %d", ErrEntryNotFound, entry.UID)
	}
	b.entries[i] = entry.Clone()
	Renumber(b.entries)
	return nil
}

func (b *Book) Remove(uid int) error {
	i := b.index(uid)
	if i == -1 {
		return fmt.Errorf("%w: uid %d", ErrEntryNotFound, uid)
	}
	b.entries = append(b.entries[:i], b.entries[i+1:]...)
	Renumber(b.entries)
	return nil
}

// Move shifts an entry one slot. Moving past either end is a no-op.
func (b *Book) Move(uid int, dir Direction) error {
	i := b.index(uid)
	if i == -1 {
		return fmt.Errorf("%w: uid %d", ErrEntryNotFound, uid)
	}
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if j < 0 || j >= len(b.entries) {
		return nil
	}
	b.entries[i], b.entries[j] = b.entries[j], b.entries[i]
	Renumber(b.entries)
	return nil
}

func (b *Book) nextUID() int {
	next := 0
	for _, entry := range b.entries {
		if entry.UID >= next {
			next = entry.UID + 1
		}
	}
	return next
}

// Add creates a default entry with the next free uid. It goes at the end of
// an ascending book and at the front of a descending one.
func (b *Book) Add(comment, content string, keys []string) Entry {
	entry := NewEntry(b.nextUID(), comment, content, keys, false)
	slot := len(b.entries)
	if b.descending {
		slot = 0
	}
	b.entries = slices.Insert(b.entries, slot, entry)
	Renumber(b.entries)
	return b.entries[slot].Clone()
}

// Reverse flips the sequence and the ascending/descending mode.
func (b *Book) Reverse() {
	for i, j := 0, len(b.entries)-1; i < j; i, j = i+1, j-1 {
		b.entries[i], b.entries[j] = b.entries[j], b.entries[i]
	}
	b.descending = !b.descending
	Renumber(b.entries)
}

func (b *Book) Export() File {
	return Export(b.entries)
}
