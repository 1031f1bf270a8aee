// Package service provides application-level services that orchestrate
// the domain and provide high-level interfaces for the CLI and tool gate.
package service

import (
	"code-agent-guard/internal/domain/port"
	"context"
	"errors"
	"fmt"
)

// ErrSkillManagerRequired is returned when SkillManager is nil.
var ErrSkillManagerRequired = errors.New("skill manager is required")

// ErrSkillNotFound is returned when no discovered skill has the requested name.
var ErrSkillNotFound = errors.New("skill not found")

// SkillService exposes the skills whose scripts the command check trusts.
type SkillService struct {
	skillManager port.SkillManager
}

// NewSkillService creates a new SkillService with required dependencies.
//
// Parameters:
//   - sm: Skill manager port for skill discovery
//
// Returns:
//   - *SkillService: A new skill service instance
//   - error: An error if the skill manager is nil
func NewSkillService(sm port.SkillManager) (*SkillService, error) {
	if sm == nil {
		return nil, ErrSkillManagerRequired
	}

	return &SkillService{
		skillManager: sm,
	}, nil
}

// DiscoverSkills scans the configured roots for skills.
func (ss *SkillService) DiscoverSkills(ctx context.Context) (*port.SkillDiscoveryResult, error) {
	return ss.skillManager.DiscoverSkills(ctx)
}

// GetSkillByName returns the discovered skill called name.
func (ss *SkillService) GetSkillByName(ctx context.Context, name string) (*port.SkillInfo, error) {
	result, err := ss.skillManager.DiscoverSkills(ctx)
	if err != nil {
		return nil, err
	}
	for i := range result.Skills {
		if result.Skills[i].Name == name {
			return &result.Skills[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSkillNotFound, name)
}

// TrustedDirectories returns the directories whose scripts may run without
// matching the allowlist.
func (ss *SkillService) TrustedDirectories(ctx context.Context) ([]string, error) {
	return ss.skillManager.SkillsPaths(ctx)
}
