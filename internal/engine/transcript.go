package engine

import "fmt"

// DefaultWindow is how many turns of narrative are sent with each request.
const DefaultWindow = 8

// Transcript is the rolling narrative context of one playthrough. It keeps
// only the most recent turns so request size stays bounded.
type Transcript struct {
	seed   string
	window int
	turns  []string
}

// NewTranscript returns a transcript holding only the seed turn.
func NewTranscript(seed string, window int) *Transcript {
	if window < 1 {
		window = DefaultWindow
	}
	t := &Transcript{seed: seed, window: window}
	t.Reset()
	return t
}

// Reset drops everything but the seed turn.
func (t *Transcript) Reset() {
	t.turns = []string{t.seed}
}

// Add appends a turn and discards the oldest ones beyond the window.
func (t *Transcript) Add(turn string) {
	t.turns = append(t.turns, turn)
	if over := len(t.turns) - t.window; over > 0 {
		t.turns = append([]string(nil), t.turns[over:]...)
	}
}

// Turns returns a copy of the current window, oldest first.
func (t *Transcript) Turns() []string {
	return append([]string(nil), t.turns...)
}

func (t *Transcript) Len() int {
	return len(t.turns)
}

func actionTurn(action string) string {
	return fmt.Sprintf("The agent's action was successful: \"%s\". Mission Control confirms. Continue the mission with the next objective.", action)
}

func storyTurn(story string) string {
	return "Mission update: " + story
}
