// Package challenge evaluates the typing challenges that gate story
// progression. Evaluators are pure: callers pass the live input value and the
// time it was observed, so no timers need cleaning up when a phase ends.
package challenge

import (
	"fmt"
	"time"

	"github.com/tatianab/phantom-pursuit/internal/models"
)

// MismatchHold is how long the mismatch indicator stays on after a wrong key.
const MismatchHold = 500 * time.Millisecond

// Progress is the result of feeding one input value to an evaluator.
type Progress struct {
	// Completed is true only for the input that finished the challenge.
	Completed bool
	// Advanced is true when a line of a multi-line challenge was finished.
	Advanced bool
	Mismatch bool
}

// View is what a presentation layer needs to draw the challenge.
type View struct {
	Kind     models.ChallengeType `json:"kind"`
	Target   string               `json:"target"`
	Typed    string               `json:"typed"`
	Line     int                  `json:"line"`
	Lines    int                  `json:"lines"`
	Mismatch bool                 `json:"mismatch"`
	Done     bool                 `json:"done"`
}

// Evaluator tracks the typed-so-far value against a target.
type Evaluator interface {
	Type(value string, now time.Time) Progress
	View(now time.Time) View
	Done() bool
}

// New builds the evaluator for the scene's challenge type.
func New(scene *models.Scene) (Evaluator, error) {
	switch scene.ChallengeType {
	case models.ChallengeWord:
		return NewWord(scene.ChallengeWord), nil
	case models.ChallengeFirewall:
		return NewSequence(scene.FirewallChallenge), nil
	case models.ChallengeDebug:
		if scene.DebugChallenge == nil {
			return nil, fmt.Errorf("debug scene without payload")
		}
		return NewFix(scene.DebugChallenge.CorrectCode), nil
	}
	return nil, fmt.Errorf("unknown challenge type %q", scene.ChallengeType)
}

// matcher is the per-line state shared by every evaluator.
type matcher struct {
	target        []rune
	typed         string
	mismatchUntil time.Time
}

func newMatcher(target string) matcher {
	return matcher{target: []rune(target)}
}

// feed records value and reports whether the newest rune was wrong. Only
// growth is checked; deleting characters never raises the flag.
func (m *matcher) feed(value string, now time.Time) bool {
	prev := []rune(m.typed)
	next := []rune(value)
	m.typed = value

	if len(next) <= len(prev) {
		return false
	}
	i := len(next) - 1
	if i < len(m.target) && next[i] == m.target[i] {
		return false
	}
	m.mismatchUntil = now.Add(MismatchHold)
	return true
}

func (m *matcher) matched() bool {
	return m.typed == string(m.target)
}

func (m *matcher) mismatch(now time.Time) bool {
	return now.Before(m.mismatchUntil)
}
