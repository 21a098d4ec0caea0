package models

import "math"

// Unbounded marks the threshold of the terminal rank.
const Unbounded = math.MaxInt

// MiniGameXP is the flat reward for a firewall or debug challenge.
const MiniGameXP = 50

// Rank is one tier of the rank table.
type Rank struct {
	Name     string `json:"name"`
	XPToNext int    `json:"xpToNext"`
}

// Terminal reports whether no further promotion is possible.
func (r Rank) Terminal() bool {
	return r.XPToNext == Unbounded
}

// Ranks is the ascending rank table. The last rank is terminal.
var Ranks = []Rank{
	{Name: "Rookie", XPToNext: 100},
	{Name: "Field Agent", XPToNext: 250},
	{Name: "Specialist", XPToNext: 500},
	{Name: "Elite Operator", XPToNext: 1000},
	{Name: "Phantom Hunter", XPToNext: Unbounded},
}

// InitialPlayerStats is a fresh Rookie with no experience.
func InitialPlayerStats() PlayerStats {
	return PlayerStats{Rank: Ranks[0].Name, RankIndex: 0, XP: 0}
}

// RankAt returns the rank table entry for idx, clamped to the table.
func RankAt(idx int) Rank {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(Ranks) {
		idx = len(Ranks) - 1
	}
	return Ranks[idx]
}

// AwardXP adds amount to the player's xp. Reaching the current threshold
// promotes by exactly one rank and carries the remainder over, even when the
// remainder already exceeds the next threshold.
func AwardXP(stats PlayerStats, amount int) PlayerStats {
	rank := RankAt(stats.RankIndex)
	sum := stats.XP + amount
	if sum < 0 {
		sum = 0
	}
	if rank.Terminal() || sum < rank.XPToNext {
		stats.XP = sum
		return stats
	}

	next := min(stats.RankIndex+1, len(Ranks)-1)
	return PlayerStats{
		Rank:      Ranks[next].Name,
		RankIndex: next,
		XP:        sum - rank.XPToNext,
	}
}

// TypingXP is the reward for a completed word challenge.
func TypingXP(s TypingStats) int {
	return int(math.Round(float64(s.WPM)/4 + float64(s.Accuracy)/10))
}

// Blend folds a finished challenge into the displayed running averages.
func (s TypingStats) Blend(latest TypingStats) TypingStats {
	return TypingStats{
		WPM:      int(math.Round(float64(s.WPM+latest.WPM) / 2)),
		Accuracy: int(math.Round(float64(s.Accuracy+latest.Accuracy) / 2)),
	}
}
