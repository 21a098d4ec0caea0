package models

import (
	"errors"
	"fmt"
	"strings"
)

// Difficulty is the mission difficulty chosen at the start of a playthrough.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

var ErrInvalidDifficulty = errors.New("invalid difficulty")

// ParseDifficulty accepts "easy", "MEDIUM", "Hard" and so on.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}

// ChallengeType selects which challenge payload of a Scene is active.
type ChallengeType string

const (
	ChallengeWord     ChallengeType = "word"
	ChallengeFirewall ChallengeType = "firewall"
	ChallengeDebug    ChallengeType = "debug"
)

// IsMiniGame reports whether the challenge is played in the minigame phase.
func (c ChallengeType) IsMiniGame() bool {
	return c == ChallengeFirewall || c == ChallengeDebug
}

// DebugChallenge is a single buggy line and its correction.
type DebugChallenge struct {
	Description string `yaml:"description" json:"description"`
	BuggyCode   string `yaml:"buggyCode" json:"buggyCode"`
	CorrectCode string `yaml:"correctCode" json:"correctCode"`
}

// CodexEntry is a piece of lore. Title is the unique key.
type CodexEntry struct {
	Title   string `yaml:"title" json:"title"`
	Content string `yaml:"content" json:"content"`
}

// Location is a point on the trace map.
type Location struct {
	City    string `yaml:"city" json:"city"`
	Country string `yaml:"country" json:"country"`
}

func (l Location) String() string {
	return l.City + ", " + l.Country
}

// Scene is one narrative turn delivered by the content source.
type Scene struct {
	Story             string          `yaml:"story" json:"story"`
	ChallengeType     ChallengeType   `yaml:"challengeType" json:"challengeType"`
	ChallengeWord     string          `yaml:"challengeWord" json:"challengeWord"`
	FirewallChallenge []string        `yaml:"firewallChallenge,omitempty" json:"firewallChallenge,omitempty"`
	DebugChallenge    *DebugChallenge `yaml:"debugChallenge,omitempty" json:"debugChallenge,omitempty"`
	PositiveOutcome   string          `yaml:"positiveOutcome" json:"positiveOutcome"`
	CodexEntries      []CodexEntry    `yaml:"codexEntries,omitempty" json:"codexEntries,omitempty"`
	Location          *Location       `yaml:"location,omitempty" json:"location,omitempty"`
}

// HistorySource tells who produced a history item.
type HistorySource string

const (
	SourceNarrator HistorySource = "narrator"
	SourcePlayer   HistorySource = "player"
)

// StoryHistoryItem is one line of the story log.
type StoryHistoryItem struct {
	Text   string        `yaml:"text" json:"text"`
	Source HistorySource `yaml:"source" json:"source"`
}

// TypingStats are the rolling display values shown in the HUD.
type TypingStats struct {
	WPM      int `yaml:"wpm" json:"wpm"`
	Accuracy int `yaml:"accuracy" json:"accuracy"`
}

// InitialTypingStats is what a new playthrough starts with.
func InitialTypingStats() TypingStats {
	return TypingStats{WPM: 0, Accuracy: 100}
}

// PlayerStats is the player's progression.
type PlayerStats struct {
	Rank      string `yaml:"rank" json:"rank"`
	RankIndex int    `yaml:"rankIndex" json:"rankIndex"`
	XP        int    `yaml:"xp" json:"xp"`
}
