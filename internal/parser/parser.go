package parser

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/elliotchance/pie/v2"

	"worldforge/internal/worldbook"
)

const blockDelimiter = "---"

var ErrNoEntries = errors.New("no entries could be parsed")

// ParseError is returned when non-blank input yields no entries.
type ParseError struct {
	Blocks int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed after %d block(s): separate entries with `---`, start each entry with `#title[/flags]`, "+
		"follow it with an optional `*keyword1,keyword2*` line, an optional `**secondary1,secondary2**` line, and the content", e.Blocks)
}

func (e *ParseError) Unwrap() error {
	return ErrNoEntries
}

// Parse converts the text notation into a collection keyed by uid. Blank
// input yields an empty collection.
func Parse(text string) (worldbook.Collection, error) {
	entries := make(worldbook.Collection)
	if strings.TrimSpace(text) == "" {
		return entries, nil
	}

	blocks := pie.Filter(strings.Split(text, blockDelimiter), func(block string) bool {
		return strings.TrimSpace(block) != ""
	})

	next := 0
	for _, block := range blocks {
		entry, ok := decodeBlock(block, next)
		if !ok {
			continue
		}
		entries[strconv.Itoa(entry.UID)] = entry
		next++
	}

	if len(entries) == 0 {
		return nil, &ParseError{Blocks: len(blocks)}
	}
	return entries, nil
}

func decodeBlock(block string, uid int) (worldbook.Entry, bool) {
	lines := splitLines(block)
	if len(lines) == 0 {
		return worldbook.Entry{}, false
	}

	title, flags, ok := parseTitleLine(lines[0])
	if ok {
		lines = lines[1:]
	}
	if title == "" {
		title = fmt.Sprintf("Entry %d", uid)
	}

	var primary, secondary []string
	if len(lines) > 0 {
		if keys, ok := parseKeywordLine(lines[0], "*"); ok {
			primary = keys
			lines = lines[1:]
		}
	}
	if len(lines) > 0 {
		if keys, ok := parseKeywordLine(lines[0], "**"); ok {
			secondary = keys
			lines = lines[1:]
		}
	}

	constant := len(primary) == 0 && len(secondary) == 0
	entry := worldbook.NewEntry(uid, title, parseContent(lines), primary, constant)
	if len(secondary) > 0 {
		entry.KeySecondary = secondary
		entry.SelectiveLogic = worldbook.SelectiveOr
	}
	for _, flag := range flags {
		applyFlag(&entry, flag)
	}
	return entry, true
}

func splitLines(block string) []string {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	lines = pie.Map(lines, func(line string) string {
		return strings.TrimRight(line, "\r")
	})
	return pie.Filter(lines, func(line string) bool {
		return strings.TrimSpace(line) != ""
	})
}

// parseTitleLine reads `#title[/flag,flag...]`. ok is false when line is not
// a title line and must be kept as content. The text after the last `/` is
// only taken as flags when it holds at least one known flag, so `#AC/DC`
// keeps its whole title.
func parseTitleLine(line string) (string, []string, bool) {
	if !strings.HasPrefix(line, "#") {
		return "", nil, false
	}
	rest := strings.TrimPrefix(line, "#")

	var flags []string
	if i := strings.LastIndex(rest, "/"); i != -1 {
		candidates := SplitList(rest[i+1:])
		if slices.ContainsFunc(candidates, knownFlag) {
			flags = candidates
			rest = rest[:i]
		}
	}
	return strings.TrimSpace(rest), flags, true
}

// parseKeywordLine reads a line bracketed by marker on both ends. A single
// `*` marker never matches a line that opens with `**`.
func parseKeywordLine(line, marker string) ([]string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, marker) {
		return nil, false
	}
	if marker == "*" && strings.HasPrefix(trimmed, "**") {
		return nil, false
	}
	if len(trimmed) < 2*len(marker) || !strings.HasSuffix(trimmed, marker) {
		return nil, false
	}
	return SplitList(trimmed[len(marker) : len(trimmed)-len(marker)]), true
}

func parseContent(lines []string) string {
	lines = pie.Map(lines, func(line string) string {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "**") {
			return strings.TrimSpace(trimmed[1:])
		}
		return line
	})
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SplitList splits on half- and full-width commas, dropping blank items.
func SplitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '，'
	})
	parts = pie.Map(parts, strings.TrimSpace)
	return pie.Filter(parts, func(part string) bool {
		return part != ""
	})
}

var fixedFlags = map[string]worldbook.Position{
	"c上":  worldbook.PositionBeforeChar,
	"c下":  worldbook.PositionAfterChar,
	"em上": worldbook.PositionBeforeExamples,
	"em下": worldbook.PositionAfterExamples,
}

var depthFlags = map[string]worldbook.Role{
	"ds": worldbook.RoleSystem,
	"du": worldbook.RoleUser,
	"da": worldbook.RoleAssistant,
}

type flagEffect struct {
	position worldbook.Position
	depth    int
	role     worldbook.Role
	hasDepth bool
}

func decodeFlag(flag string) (flagEffect, bool) {
	if position, ok := fixedFlags[flag]; ok {
		return flagEffect{position: position}, true
	}
	if len(flag) < 3 {
		return flagEffect{}, false
	}
	role, ok := depthFlags[flag[:2]]
	if !ok {
		return flagEffect{}, false
	}
	depth, ok := parseDigits(flag[2:])
	if !ok {
		return flagEffect{}, false
	}
	return flagEffect{position: worldbook.PositionDepth, depth: depth, role: role, hasDepth: true}, true
}

func knownFlag(flag string) bool {
	_, ok := decodeFlag(flag)
	return ok
}

func applyFlag(entry *worldbook.Entry, flag string) {
	effect, ok := decodeFlag(flag)
	if !ok {
		return
	}
	entry.Position = effect.position
	if effect.hasDepth {
		entry.Depth = effect.depth
		entry.Role = effect.role
	}
}

func parseDigits(s string) (int, bool) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
