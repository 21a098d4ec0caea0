package challenge

import (
	"time"

	"github.com/tatianab/phantom-pursuit/internal/models"
)

// Sequence is the firewall minigame: lines typed one after another.
type Sequence struct {
	lines []string
	line  int
	m     matcher
	done  bool
}

func NewSequence(lines []string) *Sequence {
	s := &Sequence{lines: append([]string(nil), lines...)}
	if len(s.lines) > 0 {
		s.m = newMatcher(s.lines[0])
	}
	return s
}

func (s *Sequence) Type(value string, now time.Time) Progress {
	if s.done || len(s.lines) == 0 {
		return Progress{}
	}

	p := Progress{Mismatch: s.m.feed(value, now)}
	if !s.m.matched() {
		return p
	}
	if s.line == len(s.lines)-1 {
		s.done = true
		p.Completed = true
		return p
	}

	s.line++
	hold := s.m.mismatchUntil
	s.m = newMatcher(s.lines[s.line])
	s.m.mismatchUntil = hold
	p.Advanced = true
	return p
}

func (s *Sequence) Done() bool { return s.done }

// Line is the index of the line currently being typed.
func (s *Sequence) Line() int { return s.line }

func (s *Sequence) View(now time.Time) View {
	v := View{
		Kind:     models.ChallengeFirewall,
		Typed:    s.m.typed,
		Line:     s.line,
		Lines:    len(s.lines),
		Mismatch: s.m.mismatch(now),
		Done:     s.done,
	}
	if s.line < len(s.lines) {
		v.Target = s.lines[s.line]
	}
	return v
}
