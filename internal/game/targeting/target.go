package targeting

import (
	"fmt"
	"strings"
)

// Mode describes how many targets a selection takes.
type Mode string

const (
	// ModeSingle selects exactly one target and completes immediately.
	ModeSingle Mode = "single"
	// ModeExactly requires exactly N targets.
	ModeExactly Mode = "exactly"
	// ModeExactlyVariable requires exactly N targets, N computed at prompt time.
	ModeExactlyVariable Mode = "exactlyVariable"
	// ModeUpTo allows between 0 (or 1) and N targets.
	ModeUpTo Mode = "upTo"
	// ModeUpToVariable allows up to N targets, N computed at prompt time.
	ModeUpToVariable Mode = "upToVariable"
	// ModeUnlimited allows any number of targets.
	ModeUnlimited Mode = "unlimited"
	// ModeAutoSingle picks the only legal target without prompting.
	ModeAutoSingle Mode = "autoSingle"
)

// Requirement is the selection rule for one prompt.
type Requirement struct {
	Mode     Mode
	NumCards int
	// Optional allows completing the selection with zero targets.
	Optional bool
}

// String returns a short human-readable description.
func (r Requirement) String() string {
	switch r.Mode {
	case ModeExactly, ModeExactlyVariable:
		return fmt.Sprintf("exactly %d", r.NumCards)
	case ModeUpTo, ModeUpToVariable:
		return fmt.Sprintf("up to %d", r.NumCards)
	case ModeUnlimited:
		return "any number"
	default:
		return "one"
	}
}

// Selection is a player's in-progress choice against a requirement.
type Selection struct {
	Requirement Requirement
	Targets     []string
}

// NewSelection creates an empty selection. An unset mode behaves as single.
func NewSelection(req Requirement) *Selection {
	if req.Mode == "" {
		req.Mode = ModeSingle
	}
	if req.NumCards <= 0 && (req.Mode == ModeSingle || req.Mode == ModeAutoSingle) {
		req.NumCards = 1
	}
	return &Selection{Requirement: req}
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	for _, t := range s.Targets {
		if t == id {
			return true
		}
	}
	return false
}

// Toggle selects or deselects id. It returns false when the selection is
// full and id was not already selected.
func (s *Selection) Toggle(id string) bool {
	for i, t := range s.Targets {
		if t == id {
			s.Targets = append(s.Targets[:i], s.Targets[i+1:]...)
			return true
		}
	}
	if !s.CanSelectMore() {
		return false
	}
	s.Targets = append(s.Targets, id)
	return true
}

// CanSelectMore reports whether another target may be added.
func (s *Selection) CanSelectMore() bool {
	switch s.Requirement.Mode {
	case ModeUnlimited:
		return true
	case ModeSingle, ModeAutoSingle:
		return len(s.Targets) < 1
	default:
		return len(s.Targets) < s.Requirement.NumCards
	}
}

// IsComplete reports whether the selection satisfies its requirement.
func (s *Selection) IsComplete() bool {
	n := len(s.Targets)
	if n == 0 {
		return s.Requirement.Optional
	}
	switch s.Requirement.Mode {
	case ModeExactly, ModeExactlyVariable:
		return n == s.Requirement.NumCards
	case ModeUpTo, ModeUpToVariable:
		return n <= s.Requirement.NumCards
	case ModeUnlimited:
		return true
	default:
		return n == 1
	}
}

// Validate checks a complete list of chosen IDs against the requirement and
// the set of legal IDs.
func Validate(req Requirement, chosen []string, legal func(id string) bool) error {
	sel := NewSelection(req)
	var illegal []string
	for _, id := range chosen {
		if legal != nil && !legal(id) {
			illegal = append(illegal, id)
			continue
		}
		if sel.Has(id) {
			return fmt.Errorf("target %s selected twice", id)
		}
		if !sel.Toggle(id) {
			return fmt.Errorf("too many targets: expected %s", sel.Requirement)
		}
	}
	if len(illegal) > 0 {
		return fmt.Errorf("illegal targets: %s", strings.Join(illegal, ", "))
	}
	if !sel.IsComplete() {
		return fmt.Errorf("incomplete selection: expected %s, got %d", sel.Requirement, len(sel.Targets))
	}
	return nil
}
