package validate

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"worldforge/internal/worldbook"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeUnknownPosition  = "unknown_position"
	codeKeyMismatch      = "uid_key_mismatch"
	codeOrderMismatch    = "order_display_mismatch"
	codeDuplicateOrder   = "duplicate_order"
	codeNegativeDepth    = "negative_depth"
	codeProbabilityRange = "probability_out_of_range"
	codeMissingRole      = "depth_without_role"
	codeStrayRole        = "role_without_depth"
	codeNoKeywords       = "no_keywords"
	codeEmptyContent     = "empty_content"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	UID      int
	Entry    string
}

type Report struct {
	Issues []Issue
}

func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarn)
}

func (r *Report) filter(severity Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// Run checks a persisted world-book against the invariants the export
// guarantees plus a few authoring warnings. Issues are ordered by uid.
func Run(file worldbook.File) *Report {
	ids := make([]string, 0, len(file.Entries))
	for id := range file.Entries {
		ids = append(ids, id)
	}
	// keys sharing a uid are ordered by key
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Or(cmp.Compare(file.Entries[a].UID, file.Entries[b].UID), strings.Compare(a, b))
	})

	issues := make([]Issue, 0)
	orders := make(map[int]int, len(ids))
	for _, id := range ids {
		entry := file.Entries[id]
		issues = append(issues, validateIdentity(id, entry)...)
		issues = append(issues, validatePlacement(entry)...)
		issues = append(issues, validateActivation(entry)...)
		orders[entry.Order]++
	}

	for _, id := range ids {
		entry := file.Entries[id]
		if orders[entry.Order] > 1 {
			issues = append(issues, issueFor(entry, SeverityWarn, codeDuplicateOrder,
				fmt.Sprintf("order %d is shared by %d entries", entry.Order, orders[entry.Order])))
		}
	}

	return &Report{Issues: issues}
}

func validateIdentity(id string, entry worldbook.PersistedEntry) []Issue {
	var issues []Issue
	if id != strconv.Itoa(entry.UID) {
		issues = append(issues, issueFor(entry, SeverityError, codeKeyMismatch,
			fmt.Sprintf("stored under key %q but uid is %d", id, entry.UID)))
	}
	if entry.Order != entry.DisplayIndex {
		issues = append(issues, issueFor(entry, SeverityWarn, codeOrderMismatch,
			fmt.Sprintf("order %d differs from displayIndex %d", entry.Order, entry.DisplayIndex)))
	}
	return issues
}

func validatePlacement(entry worldbook.PersistedEntry) []Issue {
	position, ok := worldbook.DecodePosition(entry.Position)
	if !ok {
		return []Issue{issueFor(entry, SeverityError, codeUnknownPosition,
			fmt.Sprintf("unknown position code %d", entry.Position))}
	}

	var issues []Issue
	if entry.Depth < 0 {
		issues = append(issues, issueFor(entry, SeverityError, codeNegativeDepth,
			fmt.Sprintf("depth %d is negative", entry.Depth)))
	}
	if position == worldbook.PositionDepth && entry.Role == worldbook.RoleNone {
		issues = append(issues, issueFor(entry, SeverityWarn, codeMissingRole, "depth injection without a role"))
	}
	if position != worldbook.PositionDepth && entry.Role != worldbook.RoleNone {
		issues = append(issues, issueFor(entry, SeverityWarn, codeStrayRole,
			fmt.Sprintf("role %s is ignored at position %s", entry.Role, position)))
	}
	return issues
}

func validateActivation(entry worldbook.PersistedEntry) []Issue {
	var issues []Issue
	if entry.Probability < 0 || entry.Probability > 100 {
		issues = append(issues, issueFor(entry, SeverityError, codeProbabilityRange,
			fmt.Sprintf("probability %d is outside 0..100", entry.Probability)))
	}
	if !entry.Constant && len(entry.Key) == 0 && len(entry.KeySecondary) == 0 {
		issues = append(issues, issueFor(entry, SeverityWarn, codeNoKeywords, "entry is not constant and has no keywords"))
	}
	if strings.TrimSpace(entry.Content) == "" {
		issues = append(issues, issueFor(entry, SeverityWarn, codeEmptyContent, "entry has no content"))
	}
	return issues
}

func issueFor(entry worldbook.PersistedEntry, severity Severity, code, message string) Issue {
	return Issue{
		Severity: severity,
		Code:     code,
		Message:  message,
		UID:      entry.UID,
		Entry:    entry.Comment,
	}
}
