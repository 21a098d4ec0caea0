package challenge

import (
	"time"

	"github.com/tatianab/phantom-pursuit/internal/models"
)

// Fix is the debug minigame: retype the corrected line. It is not timed.
type Fix struct {
	m    matcher
	done bool
}

func NewFix(correct string) *Fix {
	return &Fix{m: newMatcher(correct)}
}

func (f *Fix) Type(value string, now time.Time) Progress {
	if f.done {
		return Progress{}
	}
	p := Progress{Mismatch: f.m.feed(value, now)}
	if f.m.matched() {
		f.done = true
		p.Completed = true
	}
	return p
}

func (f *Fix) Done() bool { return f.done }

func (f *Fix) View(now time.Time) View {
	return View{
		Kind:     models.ChallengeDebug,
		Target:   string(f.m.target),
		Typed:    f.m.typed,
		Lines:    1,
		Mismatch: f.m.mismatch(now),
		Done:     f.done,
	}
}
