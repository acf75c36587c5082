package worldbook

import (
	"bytes"
	"encoding/json"
	"errors"
)

var (
	ErrUnknownPosition  = errors.New("unknown position code")
	ErrUnknownPlacement = errors.New("unknown placement")
	ErrEntryNotFound    = errors.New("entry not found")
)

// Entry is one world-book record. Field names match the persisted JSON.
type Entry struct {
	UID                       int             `json:"uid"`
	Key                       []string        `json:"key"`
	KeySecondary              []string        `json:"keysecondary"`
	Comment                   string          `json:"comment"`
	Content                   string          `json:"content"`
	Constant                  bool            `json:"constant"`
	Vectorized                bool            `json:"vectorized"`
	Selective                 bool            `json:"selective"`
	SelectiveLogic            SelectiveLogic  `json:"selectiveLogic"`
	AddMemo                   bool            `json:"addMemo"`
	Order                     int             `json:"order"`
	Position                  Position        `json:"position"`
	Disable                   bool            `json:"disable"`
	ExcludeRecursion          bool            `json:"excludeRecursion"`
	PreventRecursion          bool            `json:"preventRecursion"`
	DelayUntilRecursion       bool            `json:"delayUntilRecursion"`
	Probability               int             `json:"probability"`
	UseProbability            bool            `json:"useProbability"`
	Depth                     int             `json:"depth"`
	Group                     string          `json:"group"`
	GroupOverride             bool            `json:"groupOverride"`
	GroupWeight               int             `json:"groupWeight"`
	ScanDepth                 ScanDepth       `json:"scanDepth"`
	CaseSensitive             Toggle          `json:"caseSensitive"`
	MatchWholeWords           Toggle          `json:"matchWholeWords"`
	UseGroupScoring           Toggle          `json:"useGroupScoring"`
	AutomationID              string          `json:"automationId"`
	Role                      Role            `json:"role"`
	Sticky                    int             `json:"sticky"`
	Cooldown                  int             `json:"cooldown"`
	Delay                     int             `json:"delay"`
	DisplayIndex              int             `json:"displayIndex"`
	IgnoreBudget              bool            `json:"ignoreBudget"`
	MatchPersonaDescription   bool            `json:"matchPersonaDescription"`
	MatchCharacterDescription bool            `json:"matchCharacterDescription"`
	MatchCharacterPersonality bool            `json:"matchCharacterPersonality"`
	MatchCharacterDepthPrompt bool            `json:"matchCharacterDepthPrompt"`
	MatchScenario             bool            `json:"matchScenario"`
	MatchCreatorNotes         bool            `json:"matchCreatorNotes"`
	OutletName                string          `json:"outletName"`
	Triggers                  []Trigger       `json:"triggers"`
	CharacterFilter           CharacterFilter `json:"characterFilter"`
}

type CharacterFilter struct {
	IsExclude bool     `json:"isExclude"`
	Names     []string `json:"names"`
	Tags      []string `json:"tags"`
}

// Trigger is kept as raw JSON. Nothing in this package interprets it.
type Trigger = json.RawMessage

// Collection maps the stringified uid to its entry. Map order carries no
// meaning; Order and DisplayIndex do.
type Collection map[string]Entry

type SelectiveLogic int

const (
	SelectiveNone SelectiveLogic = iota
	SelectiveOr
	SelectiveAnd
	SelectiveNotOr
	SelectiveNotAnd
)

func (l SelectiveLogic) String() string {
	switch l {
	case SelectiveNone:
		return "none"
	case SelectiveOr:
		return "or"
	case SelectiveAnd:
		return "and"
	case SelectiveNotOr:
		return "not-or"
	case SelectiveNotAnd:
		return "not-and"
	default:
		return "unknown"
	}
}

// Triggered reports whether the entry fires on keywords rather than always.
func (e Entry) Triggered() bool {
	return !e.Constant
}

// Clone returns a deep copy so callers can mutate slices freely.
func (e Entry) Clone() Entry {
	out := e
	out.Key = append([]string{}, e.Key...)
	out.KeySecondary = append([]string{}, e.KeySecondary...)
	out.CharacterFilter.Names = append([]string{}, e.CharacterFilter.Names...)
	out.CharacterFilter.Tags = append([]string{}, e.CharacterFilter.Tags...)
	out.Triggers = make([]Trigger, 0, len(e.Triggers))
	for _, trigger := range e.Triggers {
		out.Triggers = append(out.Triggers, Trigger(bytes.Clone(trigger)))
	}
	return out
}
