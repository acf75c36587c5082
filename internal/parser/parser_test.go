package parser

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"worldforge/internal/worldbook"
)

const sampleText = `---
#擎光区/c上
*擎光区,大学城,智造*
*概述：充满朝气与梦想的年轻城区。
---
#临江大学图书馆/da4
*图书馆*
*位置：高校集群。
---
#理工大科创楼/da5
*科创楼*
**实验室,科研团队**
*描述：安保严密。
`

func mustParse(t *testing.T, text string) worldbook.Collection {
	t.Helper()
	entries, err := Parse(text)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return entries
}

func TestParse(t *testing.T) {
	t.Run("constant entry without keywords", func(t *testing.T) {
		entries := mustParse(t, "---\n#临江市/c上\n- 描述：繁华都市。\n---\n")
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		entry := entries["0"]
		if entry.Comment != "临江市" {
			t.Fatalf("expected comment, got %q", entry.Comment)
		}
		if entry.Position != worldbook.PositionBeforeChar {
			t.Fatalf("expected before_char, got %q", entry.Position)
		}
		if len(entry.Key) != 0 {
			t.Fatalf("expected no keys, got %#v", entry.Key)
		}
		if !entry.Constant {
			t.Fatalf("expected constant entry")
		}
		if entry.Content != "- 描述：繁华都市。" {
			t.Fatalf("unexpected content: %q", entry.Content)
		}
	})

	t.Run("sample text", func(t *testing.T) {
		entries := mustParse(t, sampleText)
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}

		first := entries["0"]
		if !reflect.DeepEqual(first.Key, []string{"擎光区", "大学城", "智造"}) {
			t.Fatalf("unexpected keys: %#v", first.Key)
		}
		if first.Constant {
			t.Fatalf("expected keyword-triggered entry")
		}
		if first.Content != "概述：充满朝气与梦想的年轻城区。" {
			t.Fatalf("unexpected content: %q", first.Content)
		}

		second := entries["1"]
		if second.Position != worldbook.PositionDepth || second.Depth != 4 || second.Role != worldbook.RoleAssistant {
			t.Fatalf("unexpected placement: %q depth=%d role=%v", second.Position, second.Depth, second.Role)
		}

		third := entries["2"]
		if !reflect.DeepEqual(third.KeySecondary, []string{"实验室", "科研团队"}) {
			t.Fatalf("unexpected secondary keys: %#v", third.KeySecondary)
		}
		if third.SelectiveLogic != worldbook.SelectiveOr {
			t.Fatalf("expected OR logic, got %v", third.SelectiveLogic)
		}
		if third.Depth != 5 {
			t.Fatalf("expected depth 5, got %d", third.Depth)
		}
	})

	t.Run("depth flag", func(t *testing.T) {
		entry := mustParse(t, "#Foo/da5\n*k*\nbody")["0"]
		if entry.Comment != "Foo" {
			t.Fatalf("expected Foo, got %q", entry.Comment)
		}
		if entry.Position != worldbook.PositionDepth || entry.Depth != 5 || entry.Role != worldbook.RoleAssistant {
			t.Fatalf("unexpected placement: %q depth=%d role=%v", entry.Position, entry.Depth, entry.Role)
		}
	})

	t.Run("flag vocabulary", func(t *testing.T) {
		tests := []struct {
			flag     string
			position worldbook.Position
			role     worldbook.Role
			depth    int
		}{
			{flag: "c上", position: worldbook.PositionBeforeChar, role: worldbook.RoleNone, depth: 4},
			{flag: "c下", position: worldbook.PositionAfterChar, role: worldbook.RoleNone, depth: 4},
			{flag: "em上", position: worldbook.PositionBeforeExamples, role: worldbook.RoleNone, depth: 4},
			{flag: "em下", position: worldbook.PositionAfterExamples, role: worldbook.RoleNone, depth: 4},
			{flag: "ds0", position: worldbook.PositionDepth, role: worldbook.RoleSystem, depth: 0},
			{flag: "du12", position: worldbook.PositionDepth, role: worldbook.RoleUser, depth: 12},
			{flag: "da3", position: worldbook.PositionDepth, role: worldbook.RoleAssistant, depth: 3},
			{flag: "C上", position: worldbook.PositionBeforeChar, role: worldbook.RoleNone, depth: 4},
			{flag: "dx3", position: worldbook.PositionBeforeChar, role: worldbook.RoleNone, depth: 4},
			{flag: "da", position: worldbook.PositionBeforeChar, role: worldbook.RoleNone, depth: 4},
			{flag: "da3x", position: worldbook.PositionBeforeChar, role: worldbook.RoleNone, depth: 4},
		}
		for _, tt := range tests {
			t.Run(tt.flag, func(t *testing.T) {
				entry := mustParse(t, "#T/"+tt.flag+"\nbody")["0"]
				if entry.Position != tt.position || entry.Role != tt.role || entry.Depth != tt.depth {
					t.Fatalf("flag %q: got %q role=%v depth=%d", tt.flag, entry.Position, entry.Role, entry.Depth)
				}
			})
		}
	})

	t.Run("later flags win", func(t *testing.T) {
		entry := mustParse(t, "#T/ds2,c下,du7\nbody")["0"]
		if entry.Position != worldbook.PositionDepth || entry.Depth != 7 || entry.Role != worldbook.RoleUser {
			t.Fatalf("unexpected placement: %q depth=%d role=%v", entry.Position, entry.Depth, entry.Role)
		}

		entry = mustParse(t, "#T/du7,em下\nbody")["0"]
		if entry.Position != worldbook.PositionAfterExamples {
			t.Fatalf("expected after_chat, got %q", entry.Position)
		}
	})

	t.Run("keyword splitting", func(t *testing.T) {
		entry := mustParse(t, "#T\n*a, b，c*\nbody")["0"]
		if !reflect.DeepEqual(entry.Key, []string{"a", "b", "c"}) {
			t.Fatalf("unexpected keys: %#v", entry.Key)
		}

		entry = mustParse(t, "#T\n*a,, ，b*\nbody")["0"]
		if !reflect.DeepEqual(entry.Key, []string{"a", "b"}) {
			t.Fatalf("expected blank segments dropped, got %#v", entry.Key)
		}
	})

	t.Run("secondary keywords without primary", func(t *testing.T) {
		entry := mustParse(t, "#T\n**x,y**\nbody")["0"]
		if len(entry.Key) != 0 {
			t.Fatalf("expected no primary keys, got %#v", entry.Key)
		}
		if !reflect.DeepEqual(entry.KeySecondary, []string{"x", "y"}) {
			t.Fatalf("unexpected secondary keys: %#v", entry.KeySecondary)
		}
		if entry.SelectiveLogic != worldbook.SelectiveOr {
			t.Fatalf("expected OR logic")
		}
		if entry.Constant {
			t.Fatalf("expected keyword-triggered entry")
		}
	})

	t.Run("empty secondary line keeps logic none", func(t *testing.T) {
		entry := mustParse(t, "#T\n*k*\n**，**\nbody")["0"]
		if entry.SelectiveLogic != worldbook.SelectiveNone {
			t.Fatalf("expected logic none, got %v", entry.SelectiveLogic)
		}
		if entry.Content != "body" {
			t.Fatalf("expected secondary line consumed, got %q", entry.Content)
		}
	})

	t.Run("empty keyword line is constant", func(t *testing.T) {
		entry := mustParse(t, "#T\n*,*\nbody")["0"]
		if !entry.Constant {
			t.Fatalf("expected constant entry")
		}
		if entry.Content != "body" {
			t.Fatalf("expected keyword line consumed, got %q", entry.Content)
		}
	})

	t.Run("unbracketed star line is content", func(t *testing.T) {
		entry := mustParse(t, "#T\n*not a keyword line\n**bold start\nend")["0"]
		if len(entry.Key) != 0 || !entry.Constant {
			t.Fatalf("expected no keywords, got %#v", entry.Key)
		}
		if entry.Content != "not a keyword line\n**bold start\nend" {
			t.Fatalf("unexpected content: %q", entry.Content)
		}
	})

	t.Run("title without hash", func(t *testing.T) {
		entries := mustParse(t, "---\nJust a line\n*k*\n---\n#Second\nbody")
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		entry := entries["0"]
		if entry.Comment != "Entry 0" {
			t.Fatalf("expected placeholder comment, got %q", entry.Comment)
		}
		if entry.Content != "Just a line\nk*" {
			t.Fatalf("expected line kept as content, got %q", entry.Content)
		}
		if !entry.Constant {
			t.Fatalf("expected constant entry")
		}
		if entries["1"].Comment != "Second" {
			t.Fatalf("unexpected second comment: %q", entries["1"].Comment)
		}
	})

	t.Run("empty title", func(t *testing.T) {
		entry := mustParse(t, "#  /c下\nbody")["0"]
		if entry.Comment != "Entry 0" {
			t.Fatalf("expected placeholder comment, got %q", entry.Comment)
		}
		if entry.Position != worldbook.PositionAfterChar {
			t.Fatalf("expected flags applied, got %q", entry.Position)
		}
	})

	t.Run("slash without known flags stays in title", func(t *testing.T) {
		entry := mustParse(t, "#AC/DC\n*band*\nbody")["0"]
		if entry.Comment != "AC/DC" {
			t.Fatalf("expected whole title, got %q", entry.Comment)
		}
		if entry.Position != worldbook.PositionBeforeChar {
			t.Fatalf("expected default position, got %q", entry.Position)
		}

		entry = mustParse(t, "#AC/DC/du2\nbody")["0"]
		if entry.Comment != "AC/DC" || entry.Position != worldbook.PositionDepth || entry.Depth != 2 {
			t.Fatalf("expected flags after the last slash, got %+v", entry)
		}

		entry = mustParse(t, "#T/x,c下\nbody")["0"]
		if entry.Comment != "T" || entry.Position != worldbook.PositionAfterChar {
			t.Fatalf("expected the flag list to split off, got %+v", entry)
		}
	})

	t.Run("indentation before the first title", func(t *testing.T) {
		entry := mustParse(t, "---\n   #Indented\n*k*\nbody")["0"]
		if entry.Comment != "Indented" {
			t.Fatalf("expected block trim to expose the title, got %q", entry.Comment)
		}

		entry = mustParse(t, "intro\n  #NotTitle\nbody")["0"]
		if entry.Comment != "Entry 0" || !strings.Contains(entry.Content, "#NotTitle") {
			t.Fatalf("expected later hash line kept as content, got %+v", entry)
		}
	})

	t.Run("title only", func(t *testing.T) {
		entry := mustParse(t, "#Lonely\n*k*")["0"]
		if entry.Content != "" {
			t.Fatalf("expected empty content, got %q", entry.Content)
		}
		if !reflect.DeepEqual(entry.Key, []string{"k"}) {
			t.Fatalf("unexpected keys: %#v", entry.Key)
		}
	})

	t.Run("content lines", func(t *testing.T) {
		entry := mustParse(t, "#T\n*k*\n  * first  \r\n\n  second\n*third\n")["0"]
		if entry.Content != "first\n  second\nthird" {
			t.Fatalf("unexpected content: %q", entry.Content)
		}
	})

	t.Run("crlf input", func(t *testing.T) {
		entry := mustParse(t, "#T/c下\r\n*a,b*\r\nbody\r\n")["0"]
		if entry.Comment != "T" || !reflect.DeepEqual(entry.Key, []string{"a", "b"}) || entry.Content != "body" {
			t.Fatalf("unexpected entry: %+v", entry)
		}
	})

	t.Run("untouched defaults", func(t *testing.T) {
		entry := mustParse(t, "#T\n*k*\nbody")["0"]
		want := worldbook.NewEntry(0, "T", "body", []string{"k"}, false)
		if !reflect.DeepEqual(entry, want) {
			t.Fatalf("expected factory defaults:\n got %+v\nwant %+v", entry, want)
		}
	})
}

func TestParse_DenseIDs(t *testing.T) {
	entries := mustParse(t, "---\n---\n#A\nx\n---\n   \n---\n#B\ny\n---\n#C\nz\n---")
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, title := range []string{"A", "B", "C"} {
		entry, ok := entries[strconv.Itoa(i)]
		if !ok {
			t.Fatalf("expected entry %d", i)
		}
		if entry.UID != i || entry.Order != i || entry.DisplayIndex != i {
			t.Fatalf("entry %d: unexpected ids %d/%d/%d", i, entry.UID, entry.Order, entry.DisplayIndex)
		}
		if entry.Comment != title {
			t.Fatalf("entry %d: expected %q, got %q", i, title, entry.Comment)
		}
	}
}

func TestParse_Deterministic(t *testing.T) {
	a := mustParse(t, sampleText)
	b := mustParse(t, sampleText)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical collections")
	}
}

func TestParse_Blank(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t\n"} {
		entries, err := Parse(input)
		if err != nil {
			t.Fatalf("expected no error for %q, got %v", input, err)
		}
		if len(entries) != 0 {
			t.Fatalf("expected no entries for %q, got %d", input, len(entries))
		}
	}
}

func TestParse_NoEntries(t *testing.T) {
	for _, input := range []string{"---", "------", "---\n  \n---\n"} {
		_, err := Parse(input)
		if !errors.Is(err, ErrNoEntries) {
			t.Fatalf("expected ErrNoEntries for %q, got %v", input, err)
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected *ParseError, got %T", err)
		}
		if parseErr.Error() == "" {
			t.Fatalf("expected guidance message")
		}
	}
}

func TestFormatGuideExampleParses(t *testing.T) {
	i := strings.Index(FormatGuide, "---")
	if i == -1 {
		t.Fatalf("expected example in guide")
	}
	entries := mustParse(t, FormatGuide[i:])
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if !entries["0"].Constant || entries["1"].Position != worldbook.PositionAfterChar {
		t.Fatalf("unexpected example entries: %+v", entries)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a，b, ,c ")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected items: %#v", got)
	}
}
