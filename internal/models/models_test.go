package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"easy": Easy, " Medium ": Medium, "HARD": Hard} {
		got, err := ParseDifficulty(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseDifficulty("nightmare")
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
}

func TestSceneValidate(t *testing.T) {
	tests := []struct {
		name    string
		scene   Scene
		wantErr bool
	}{
		{
			name:  "word",
			scene: Scene{Story: "Breach detected.", ChallengeType: ChallengeWord, ChallengeWord: "scan"},
		},
		{
			name: "firewall",
			scene: Scene{Story: "A wall.", ChallengeType: ChallengeFirewall, ChallengeWord: "breach",
				FirewallChallenge: []string{"auth user", "grant access"}},
		},
		{
			name: "debug",
			scene: Scene{Story: "A bug.", ChallengeType: ChallengeDebug, ChallengeWord: "patch",
				DebugChallenge: &DebugChallenge{BuggyCode: "functin x()", CorrectCode: "function x()"}},
		},
		{
			name:    "missing story",
			scene:   Scene{ChallengeType: ChallengeWord, ChallengeWord: "scan"},
			wantErr: true,
		},
		{
			name:    "missing word",
			scene:   Scene{Story: "s", ChallengeType: ChallengeWord},
			wantErr: true,
		},
		{
			name:    "unknown type",
			scene:   Scene{Story: "s", ChallengeType: "puzzle", ChallengeWord: "scan"},
			wantErr: true,
		},
		{
			name:    "firewall without lines",
			scene:   Scene{Story: "s", ChallengeType: ChallengeFirewall, ChallengeWord: "scan"},
			wantErr: true,
		},
		{
			name:    "firewall with empty line",
			scene:   Scene{Story: "s", ChallengeType: ChallengeFirewall, ChallengeWord: "scan", FirewallChallenge: []string{"a", ""}},
			wantErr: true,
		},
		{
			name:    "debug without payload",
			scene:   Scene{Story: "s", ChallengeType: ChallengeDebug, ChallengeWord: "scan"},
			wantErr: true,
		},
		{
			name: "untitled codex entry",
			scene: Scene{Story: "s", ChallengeType: ChallengeWord, ChallengeWord: "scan",
				CodexEntries: []CodexEntry{{Content: "lore"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scene.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidScene)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSceneNormalize(t *testing.T) {
	s := Scene{
		Story:             "s",
		ChallengeType:     ChallengeWord,
		ChallengeWord:     "scan",
		FirewallChallenge: []string{"stray"},
		DebugChallenge:    &DebugChallenge{CorrectCode: "x"},
		Location:          &Location{},
	}
	s.Normalize()
	assert.Nil(t, s.FirewallChallenge)
	assert.Nil(t, s.DebugChallenge)
	assert.Nil(t, s.Location)
}

func TestCodexMergeIsIdempotentOnTitle(t *testing.T) {
	c := Codex{}.Merge(CodexEntry{Title: "PhantomByte", Content: "A hacker."})
	c = c.Merge(CodexEntry{Title: "K.A.I.", Content: "A drone."})

	again := c.Merge(CodexEntry{Title: "PhantomByte", Content: "Different text."})
	if diff := cmp.Diff(c, again); diff != "" {
		t.Errorf("merge of known title changed codex (-before +after):\n%s", diff)
	}
	assert.Len(t, again, 2)
}

func TestCodexMergeDedupsWithinBatch(t *testing.T) {
	c := Codex{}.Merge(
		CodexEntry{Title: "Seoul", Content: "first"},
		CodexEntry{Title: "Seoul", Content: "second"},
		CodexEntry{Title: "Chirp", Content: "app"},
	)
	require.Len(t, c, 2)
	assert.Equal(t, "first", c[0].Content)
	assert.Equal(t, []CodexEntry{c[1], c[0]}, c.Newest())
}

func TestCodexMergeDoesNotAlias(t *testing.T) {
	base := make(Codex, 1, 4)
	base[0] = CodexEntry{Title: "a"}
	_ = base.Merge(CodexEntry{Title: "b"})
	other := base.Merge(CodexEntry{Title: "c"})
	assert.Equal(t, "c", other[1].Title)
	assert.Len(t, base, 1)
}

func TestReportSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debriefs", "run.yaml")
	r := &Report{
		Playthrough: "abc",
		Difficulty:  Medium,
		Player:      PlayerStats{Rank: "Field Agent", RankIndex: 1, XP: 10},
		Typing:      TypingStats{WPM: 42, Accuracy: 100},
		History:     []StoryHistoryItem{{Text: "Breach.", Source: SourceNarrator}},
		Trace:       []Location{{City: "Seoul", Country: "South Korea"}},
	}
	require.NoError(t, r.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Report
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "Field Agent", got.Player.Rank)
	assert.Equal(t, "Seoul", got.Trace[0].City)
}
