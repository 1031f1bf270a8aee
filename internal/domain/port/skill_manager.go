package port

import (
	"context"
)

// SkillInfo represents information about a discovered skill.
type SkillInfo struct {
	Name          string   `json:"name"`           // Name of the skill
	Description   string   `json:"description"`    // Description of what the skill does
	AllowedTools  []string `json:"allowed_tools"`  // Allowed tools for this skill
	DirectoryPath string   `json:"directory_path"` // Absolute path to the skill directory
}

// SkillDiscoveryResult represents the result of a skill discovery operation.
type SkillDiscoveryResult struct {
	Skills     []SkillInfo `json:"skills"`      // Discovered skills
	SkillsDirs []string    `json:"skills_dirs"` // Roots that were scanned
	TotalCount int         `json:"total_count"` // Total number of skills discovered
}

// SkillManager discovers agent skills.
// Skills follow the agentskills.io layout: a directory holding a SKILL.md file with
// YAML frontmatter. Scripts inside a discovered skill directory may be executed
// without further allowlist matching.
type SkillManager interface {
	// DiscoverSkills scans the configured roots for skill directories.
	DiscoverSkills(ctx context.Context) (*SkillDiscoveryResult, error)

	// SkillsPaths returns the absolute directories whose scripts are trusted.
	// It runs discovery when it has not happened yet.
	SkillsPaths(ctx context.Context) ([]string, error)
}
