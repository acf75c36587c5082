package worldbook

const (
	DefaultDepth       = 4
	DefaultProbability = 100
	DefaultGroupWeight = 100
)

// NewEntry builds an entry with every field at its default. It is the only
// place defaults are written, so parsed and hand-added entries match.
func NewEntry(uid int, comment, content string, keys []string, constant bool) Entry {
	return Entry{
		UID:             uid,
		Key:             append([]string{}, keys...),
		KeySecondary:    []string{},
		Comment:         comment,
		Content:         content,
		Constant:        constant,
		Selective:       true,
		SelectiveLogic:  SelectiveNone,
		AddMemo:         true,
		Order:           uid,
		Position:        PositionBeforeChar,
		Probability:     DefaultProbability,
		UseProbability:  true,
		Depth:           DefaultDepth,
		GroupWeight:     DefaultGroupWeight,
		ScanDepth:       ScanDepth{},
		CaseSensitive:   Inherit,
		MatchWholeWords: Inherit,
		UseGroupScoring: Inherit,
		Role:            RoleNone,
		DisplayIndex:    uid,
		Triggers:        []Trigger{},
		CharacterFilter: CharacterFilter{
			Names: []string{},
			Tags:  []string{},
		},
	}
}
