package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidScene = errors.New("invalid scene")

// Validate checks that the scene carries everything its challenge type needs.
func (s *Scene) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: empty", ErrInvalidScene)
	}
	if strings.TrimSpace(s.Story) == "" {
		return fmt.Errorf("%w: missing story", ErrInvalidScene)
	}
	if strings.TrimSpace(s.ChallengeWord) == "" {
		return fmt.Errorf("%w: missing challengeWord", ErrInvalidScene)
	}

	switch s.ChallengeType {
	case ChallengeWord:
	case ChallengeFirewall:
		if len(s.FirewallChallenge) == 0 {
			return fmt.Errorf("%w: firewall challenge without lines", ErrInvalidScene)
		}
		for i, line := range s.FirewallChallenge {
			if line == "" {
				return fmt.Errorf("%w: firewall line %d is empty", ErrInvalidScene, i)
			}
		}
	case ChallengeDebug:
		if s.DebugChallenge == nil || s.DebugChallenge.CorrectCode == "" {
			return fmt.Errorf("%w: debug challenge without correctCode", ErrInvalidScene)
		}
	default:
		return fmt.Errorf("%w: unknown challengeType %q", ErrInvalidScene, s.ChallengeType)
	}

	for i, e := range s.CodexEntries {
		if strings.TrimSpace(e.Title) == "" {
			return fmt.Errorf("%w: codex entry %d has no title", ErrInvalidScene, i)
		}
	}
	return nil
}

// Normalize drops the challenge payloads that the challenge type does not use
// and an empty location.
func (s *Scene) Normalize() {
	switch s.ChallengeType {
	case ChallengeWord:
		s.FirewallChallenge = nil
		s.DebugChallenge = nil
	case ChallengeFirewall:
		s.DebugChallenge = nil
	case ChallengeDebug:
		s.FirewallChallenge = nil
	}
	if s.Location != nil && s.Location.City == "" && s.Location.Country == "" {
		s.Location = nil
	}
}
