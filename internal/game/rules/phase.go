package rules

import (
	"fmt"
	"strings"
)

// Phase represents the phases of a game round.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseDynasty
	PhaseDraw
	PhaseConflict
	PhaseFate
	PhaseRegroup
)

var phaseNames = map[Phase]string{
	PhaseSetup:    "setup",
	PhaseDynasty:  "dynasty",
	PhaseDraw:     "draw",
	PhaseConflict: "conflict",
	PhaseFate:     "fate",
	PhaseRegroup:  "regroup",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase_%d", int(p))
}

// roundSequence is the phase order of every round after setup.
var roundSequence = []Phase{PhaseDynasty, PhaseDraw, PhaseConflict, PhaseFate, PhaseRegroup}

// PhaseTracker tracks the current phase, round number and first player.
type PhaseTracker struct {
	index       int
	round       int
	phase       Phase
	firstPlayer string
}

// NewPhaseTracker creates a tracker in the setup phase of round 0.
func NewPhaseTracker(firstPlayer string) *PhaseTracker {
	return &PhaseTracker{
		index:       -1,
		phase:       PhaseSetup,
		firstPlayer: strings.TrimSpace(firstPlayer),
	}
}

// CurrentPhase returns the phase in progress.
func (pt *PhaseTracker) CurrentPhase() Phase {
	return pt.phase
}

// Round returns the current round number (1-based once play starts).
func (pt *PhaseTracker) Round() int {
	return pt.round
}

// FirstPlayer returns the ID of the current first player.
func (pt *PhaseTracker) FirstPlayer() string {
	return pt.firstPlayer
}

// SetFirstPlayer changes the first player.
func (pt *PhaseTracker) SetFirstPlayer(player string) {
	pt.firstPlayer = strings.TrimSpace(player)
}

// Advance moves to the next phase. It returns the new phase and whether a new
// round started; the first player passes to nextFirstPlayer when a round ends
// (if provided).
func (pt *PhaseTracker) Advance(nextFirstPlayer string) (Phase, bool) {
	pt.index++
	newRound := false
	if pt.index >= len(roundSequence) || pt.round == 0 {
		pt.index = 0
		if pt.round > 0 {
			if next := strings.TrimSpace(nextFirstPlayer); next != "" {
				pt.firstPlayer = next
			}
		}
		pt.round++
		newRound = true
	}
	pt.phase = roundSequence[pt.index]
	return pt.phase, newRound
}
