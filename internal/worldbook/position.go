package worldbook

import "fmt"

// Position tags where in the prompt an entry is injected.
type Position string

const (
	PositionBeforeChar     Position = "before_char"
	PositionAfterChar      Position = "after_char"
	PositionBeforeExamples Position = "before_chat"
	PositionAfterExamples  Position = "after_chat"
	PositionDepth          Position = "depth_injection"
)

var positionCodes = map[Position]int{
	PositionBeforeChar:     0,
	PositionAfterChar:      1,
	PositionDepth:          4,
	PositionBeforeExamples: 5,
	PositionAfterExamples:  6,
}

var codePositions = func() map[int]Position {
	out := make(map[int]Position, len(positionCodes))
	for position, code := range positionCodes {
		out[code] = position
	}
	return out
}()

// EncodePosition returns the persisted code for p. Unknown tags encode to 0.
func EncodePosition(p Position) int {
	return positionCodes[p]
}

func DecodePosition(code int) (Position, bool) {
	p, ok := codePositions[code]
	return p, ok
}

func Positions() []Position {
	return []Position{
		PositionBeforeChar,
		PositionAfterChar,
		PositionBeforeExamples,
		PositionAfterExamples,
		PositionDepth,
	}
}

// Placement options merge position and role into the single choice the
// editor offers.
const (
	PlacementDepthSystem    = "depth_system"
	PlacementDepthUser      = "depth_user"
	PlacementDepthAssistant = "depth_ai"
)

func Placements() []string {
	return []string{
		string(PositionBeforeChar),
		string(PositionAfterChar),
		string(PositionBeforeExamples),
		string(PositionAfterExamples),
		PlacementDepthSystem,
		PlacementDepthUser,
		PlacementDepthAssistant,
	}
}

var depthPlacements = map[string]Role{
	PlacementDepthSystem:    RoleSystem,
	PlacementDepthUser:      RoleUser,
	PlacementDepthAssistant: RoleAssistant,
}

// Placement reports the combined option for e. A depth entry whose role is
// unset reports the bare depth position tag.
func (e Entry) Placement() string {
	if e.Position == PositionDepth {
		for option, role := range depthPlacements {
			if e.Role == role {
				return option
			}
		}
	}
	return string(e.Position)
}

// SetPlacement applies a combined option. Non-depth options clear the role.
func (e *Entry) SetPlacement(option string) error {
	if role, ok := depthPlacements[option]; ok {
		e.Position = PositionDepth
		e.Role = role
		return nil
	}
	p := Position(option)
	if _, ok := positionCodes[p]; !ok || p == PositionDepth {
		return fmt.Errorf("%w: %q", ErrUnknownPlacement, option)
	}
	e.Position = p
	e.Role = RoleNone
	return nil
}
