package engine

import (
	"fmt"
	"strings"

	"github.com/tatianab/phantom-pursuit/internal/models"
	"gopkg.in/yaml.v3"
)

// DecodeScene turns the raw model output into a validated scene. JSON is a
// subset of YAML, so the same decoder handles fenced or bare output.
func DecodeScene(raw string) (*models.Scene, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```yaml")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return nil, &FatalServiceError{Err: fmt.Errorf("empty response")}
	}

	var scene models.Scene
	if err := yaml.Unmarshal([]byte(clean), &scene); err != nil {
		return nil, &FatalServiceError{Err: fmt.Errorf("failed to parse scene: %w\nOutput was: %s", err, clean)}
	}
	if err := scene.Validate(); err != nil {
		return nil, &FatalServiceError{Err: err}
	}
	scene.Normalize()
	return &scene, nil
}
