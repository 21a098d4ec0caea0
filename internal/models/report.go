package models

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Report is a write-only debrief of a playthrough. Nothing reads it back.
type Report struct {
	Playthrough string             `yaml:"playthrough"`
	Difficulty  Difficulty         `yaml:"difficulty"`
	Outcome     string             `yaml:"outcome"`
	Player      PlayerStats        `yaml:"player"`
	Typing      TypingStats        `yaml:"typing"`
	History     []StoryHistoryItem `yaml:"history"`
	Codex       []CodexEntry       `yaml:"codex,omitempty"`
	Trace       []Location         `yaml:"trace,omitempty"`
}

// Save writes the report as YAML, creating the parent directory if needed.
func (r *Report) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
