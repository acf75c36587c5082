package worldbook

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// File is the persisted world-book.
type File struct {
	Entries map[string]PersistedEntry `json:"entries"`
}

// PersistedEntry is an Entry whose position is stored as its integer code.
// The outer Position field shadows Entry.Position when encoding.
type PersistedEntry struct {
	Entry
	Position int `json:"position"`
}

// UnmarshalJSON starts from the factory defaults so fields missing from the
// input keep their documented values.
func (p *PersistedEntry) UnmarshalJSON(data []byte) error {
	type plain PersistedEntry
	out := plain{Entry: NewEntry(0, "", "", nil, false)}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = PersistedEntry(out)
	return nil
}

// Export builds the persisted form of entries in their given order. Order and
// DisplayIndex are rewritten to the index; entries itself is left untouched.
func Export(entries []Entry) File {
	file := File{Entries: make(map[string]PersistedEntry, len(entries))}
	for i, entry := range entries {
		out := entry.Clone()
		out.Order = i
		out.DisplayIndex = i
		file.Entries[strconv.Itoa(out.UID)] = PersistedEntry{
			Entry:    out,
			Position: EncodePosition(out.Position),
		}
	}
	return file
}

// Import decodes a persisted file into entries sorted by order.
func Import(file File) ([]Entry, error) {
	c := make(Collection, len(file.Entries))
	for id, persisted := range file.Entries {
		position, ok := DecodePosition(persisted.Position)
		if !ok {
			return nil, fmt.Errorf("entry %s: %w: %d", id, ErrUnknownPosition, persisted.Position)
		}
		entry := persisted.Entry.Clone()
		entry.Position = position
		c[id] = entry
	}
	return Sequence(c), nil
}

func (f File) Len() int {
	return len(f.Entries)
}

func (f File) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding world-book: %w", err)
	}
	return data, nil
}

func DecodeFile(data []byte) (File, error) {
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("decoding world-book: %w", err)
	}
	if file.Entries == nil {
		file.Entries = map[string]PersistedEntry{}
	}
	return file, nil
}
