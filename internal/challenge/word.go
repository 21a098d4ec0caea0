package challenge

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/tatianab/phantom-pursuit/internal/models"
)

// Word is the primary typing challenge: one command typed against the clock.
type Word struct {
	m       matcher
	started time.Time
	done    bool
	stats   models.TypingStats
}

func NewWord(target string) *Word {
	return &Word{m: newMatcher(target)}
}

func (w *Word) Type(value string, now time.Time) Progress {
	if w.done {
		return Progress{}
	}
	if w.started.IsZero() && value != "" {
		w.started = now
	}

	p := Progress{Mismatch: w.m.feed(value, now)}
	if w.m.matched() {
		w.done = true
		w.stats = models.TypingStats{
			WPM: wpm(utf8.RuneCountInString(value), now.Sub(w.started)),
			// Corrections are not modelled yet.
			Accuracy: 100,
		}
		p.Completed = true
	}
	return p
}

// Stats is the result of the finished challenge.
func (w *Word) Stats() models.TypingStats {
	return w.stats
}

// LiveWPM is the running speed for display while the player is typing.
func (w *Word) LiveWPM(now time.Time) int {
	if w.started.IsZero() {
		return 0
	}
	return wpm(utf8.RuneCountInString(w.m.typed), now.Sub(w.started))
}

func (w *Word) Done() bool { return w.done }

func (w *Word) View(now time.Time) View {
	return View{
		Kind:     models.ChallengeWord,
		Target:   string(w.m.target),
		Typed:    w.m.typed,
		Line:     0,
		Lines:    1,
		Mismatch: w.m.mismatch(now),
		Done:     w.done,
	}
}

// wpm counts five characters as a word.
func wpm(chars int, elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int(math.Round((float64(chars) / 5) / (elapsed.Seconds() / 60)))
}
