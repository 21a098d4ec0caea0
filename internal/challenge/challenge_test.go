package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/phantom-pursuit/internal/models"
)

var t0 = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func TestWordCompletionStats(t *testing.T) {
	w := NewWord("scan")

	assert.False(t, w.Type("s", at(0)).Completed)
	assert.False(t, w.Type("sc", at(700)).Completed)
	assert.False(t, w.Type("sca", at(1400)).Completed)
	p := w.Type("scan", at(2000))

	require.True(t, p.Completed)
	assert.True(t, w.Done())
	assert.Equal(t, models.TypingStats{WPM: 24, Accuracy: 100}, w.Stats())
}

func TestWordCompletesOnce(t *testing.T) {
	w := NewWord("ping")
	w.Type("p", at(0))
	require.True(t, w.Type("ping", at(1000)).Completed)
	assert.False(t, w.Type("ping", at(1100)).Completed)
	assert.False(t, w.Type("pingx", at(1200)).Completed)
}

func TestWordPastedInOneGoHasZeroWPM(t *testing.T) {
	w := NewWord("root")
	require.True(t, w.Type("root", at(0)).Completed)
	assert.Equal(t, 0, w.Stats().WPM)
	assert.Equal(t, 100, w.Stats().Accuracy)
}

func TestWordLiveWPM(t *testing.T) {
	w := NewWord("decrypt_comms")
	assert.Equal(t, 0, w.LiveWPM(at(500)))
	w.Type("d", at(0))
	w.Type("decry", at(6000))
	assert.Equal(t, 10, w.LiveWPM(at(6000)))
}

func TestMismatchIndicator(t *testing.T) {
	w := NewWord("exec")

	p := w.Type("x", at(0))
	assert.True(t, p.Mismatch)
	assert.True(t, w.View(at(499)).Mismatch)
	assert.False(t, w.View(at(500)).Mismatch, "flag clears after the hold")

	assert.False(t, w.Type("", at(600)).Mismatch, "deleting never flags")
	assert.False(t, w.Type("e", at(700)).Mismatch)
	assert.Equal(t, "e", w.View(at(700)).Typed)

	assert.False(t, w.Type("ex", at(800)).Mismatch)
	assert.False(t, w.Type("exe", at(900)).Mismatch)
	assert.True(t, w.Type("exec!", at(1000)).Mismatch, "overrunning the target flags")
	assert.False(t, w.Done(), "wrong input is kept, not rejected")
}

func TestSequenceAdvancesAndCompletesOnce(t *testing.T) {
	s := NewSequence([]string{"auth user", "grant access"})

	var completions int
	feed := func(v string, ms int) Progress {
		p := s.Type(v, at(ms))
		if p.Completed {
			completions++
		}
		return p
	}

	feed("auth", 0)
	p := feed("auth user", 100)
	assert.True(t, p.Advanced)
	assert.False(t, p.Completed)
	assert.Equal(t, 0, completions)
	assert.Equal(t, 1, s.Line())
	assert.Equal(t, "", s.View(at(100)).Typed, "input resets for the next line")
	assert.Equal(t, "grant access", s.View(at(100)).Target)

	feed("grant", 200)
	p = feed("grant access", 300)
	assert.True(t, p.Completed)
	assert.True(t, s.Done())

	feed("grant access", 400)
	assert.Equal(t, 1, completions)
}

func TestSequenceMismatchHasNoPenalty(t *testing.T) {
	s := NewSequence([]string{"ls"})
	assert.True(t, s.Type("k", at(0)).Mismatch)
	s.Type("", at(10))
	s.Type("l", at(20))
	assert.True(t, s.Type("ls", at(30)).Completed)
}

func TestFix(t *testing.T) {
	f := NewFix("return a - b")
	assert.True(t, f.Type("return a +", at(0)).Mismatch)
	assert.False(t, f.Done())
	assert.True(t, f.Type("return a - b", at(100)).Completed)
	assert.False(t, f.Type("return a - b", at(200)).Completed)

	v := f.View(at(200))
	assert.Equal(t, models.ChallengeDebug, v.Kind)
	assert.True(t, v.Done)
}

func TestNew(t *testing.T) {
	ev, err := New(&models.Scene{ChallengeType: models.ChallengeWord, ChallengeWord: "scan"})
	require.NoError(t, err)
	assert.IsType(t, &Word{}, ev)

	ev, err = New(&models.Scene{ChallengeType: models.ChallengeFirewall, FirewallChallenge: []string{"a"}})
	require.NoError(t, err)
	assert.IsType(t, &Sequence{}, ev)

	ev, err = New(&models.Scene{ChallengeType: models.ChallengeDebug, DebugChallenge: &models.DebugChallenge{CorrectCode: "x"}})
	require.NoError(t, err)
	assert.IsType(t, &Fix{}, ev)

	_, err = New(&models.Scene{ChallengeType: models.ChallengeDebug})
	assert.Error(t, err)
}
