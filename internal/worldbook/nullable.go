package worldbook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

var jsonNull = []byte("null")

// Toggle is a per-entry override of a global boolean setting.
type Toggle uint8

const (
	Inherit Toggle = iota
	On
	Off
)

func ToggleOf(v bool) Toggle {
	if v {
		return On
	}
	return Off
}

// Value returns the override and whether one is set.
func (t Toggle) Value() (bool, bool) {
	switch t {
	case On:
		return true, true
	case Off:
		return false, true
	default:
		return false, false
	}
}

func (t Toggle) String() string {
	switch t {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "global"
	}
}

func (t Toggle) MarshalJSON() ([]byte, error) {
	switch t {
	case On:
		return []byte("true"), nil
	case Off:
		return []byte("false"), nil
	default:
		return jsonNull, nil
	}
}

func (t *Toggle) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*t = Inherit
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("toggle must be true, false or null: %w", err)
	}
	*t = ToggleOf(v)
	return nil
}

// ScanDepth is either inherited from the global setting or an explicit depth.
// The zero value inherits.
type ScanDepth struct {
	depth int
	set   bool
}

func ScanDepthOf(depth int) ScanDepth {
	return ScanDepth{depth: depth, set: true}
}

func (s ScanDepth) Value() (int, bool) {
	return s.depth, s.set
}

func (s ScanDepth) String() string {
	if !s.set {
		return "global"
	}
	return strconv.Itoa(s.depth)
}

func (s ScanDepth) MarshalJSON() ([]byte, error) {
	if !s.set {
		return jsonNull, nil
	}
	return []byte(strconv.Itoa(s.depth)), nil
}

func (s *ScanDepth) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*s = ScanDepth{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("scan depth must be an integer or null: %w", err)
	}
	*s = ScanDepthOf(v)
	return nil
}

// Role is the speaker a depth-injected entry is attributed to. The zero
// value means no role; Code gives the persisted number.
type Role uint8

const (
	RoleNone Role = iota
	RoleSystem
	RoleUser
	RoleAssistant
)

// RoleFromCode maps a persisted role number (0 system, 1 user, 2 assistant).
func RoleFromCode(code int) (Role, bool) {
	if code < 0 || code > 2 {
		return RoleNone, false
	}
	return Role(code + 1), true
}

// Code returns the persisted number and false when no role is set.
func (r Role) Code() (int, bool) {
	if r == RoleNone || r > RoleAssistant {
		return 0, false
	}
	return int(r) - 1, true
}

func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "none"
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	code, ok := r.Code()
	if !ok {
		return jsonNull, nil
	}
	return []byte(strconv.Itoa(code)), nil
}

func (r *Role) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*r = RoleNone
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("role must be an integer or null: %w", err)
	}
	role, ok := RoleFromCode(v)
	if !ok {
		return fmt.Errorf("role %d out of range", v)
	}
	*r = role
	return nil
}
