// Package entity holds the domain objects that are read from disk.
package entity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// SkillManifestFile marks a directory as a skill.
const SkillManifestFile = "SKILL.md"

const frontmatterDelimiter = "---"

// Errors returned while reading a skill manifest.
var (
	ErrMissingFrontmatter  = errors.New("invalid YAML frontmatter: missing opening ---")
	ErrUnclosedFrontmatter = errors.New("invalid YAML frontmatter: missing closing ---")
	ErrSkillNameRequired   = errors.New("skill name cannot be empty")
	ErrSkillDescRequired   = errors.New("skill description cannot be empty")
	ErrInvalidSkillName    = errors.New("skill name must be lowercase letters, digits and hyphens")
)

var skillNamePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Skill is a directory of trusted scripts described by a SKILL.md manifest.
// Scripts below a skill directory may be run without allowlist matching.
type Skill struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	License      string            `yaml:"license,omitempty"`
	AllowedTools ToolList          `yaml:"allowed-tools,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`

	// Dir is the absolute path of the skill directory.
	Dir string `yaml:"-"`

	// Body is the manifest content after the frontmatter.
	Body string `yaml:"-"`
}

// ToolList accepts either a space separated string or a YAML sequence.
type ToolList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *ToolList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*t = strings.Fields(value.Value)
		return nil
	case yaml.SequenceNode:
		var tools []string
		if err := value.Decode(&tools); err != nil {
			return err
		}
		*t = tools
		return nil
	default:
		return fmt.Errorf("allowed-tools: expected string or list, got %s", value.Tag)
	}
}

// Validate checks the required fields.
func (s *Skill) Validate() error {
	if s.Name == "" {
		return ErrSkillNameRequired
	}
	if !skillNamePattern.MatchString(s.Name) || len(s.Name) > 64 {
		return fmt.Errorf("%w: %q", ErrInvalidSkillName, s.Name)
	}
	if strings.TrimSpace(s.Description) == "" {
		return ErrSkillDescRequired
	}
	return nil
}

// ParseSkill reads a SKILL.md manifest. The content must start with YAML
// frontmatter between --- lines:
//
//	---
//	name: release-notes
//	description: Drafts release notes from the git log
//	---
//	Instructions for the agent.
func ParseSkill(content string) (*Skill, error) {
	frontmatter, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	var skill Skill
	if err := yaml.Unmarshal([]byte(frontmatter), &skill); err != nil {
		return nil, fmt.Errorf("failed to parse YAML frontmatter: %w", err)
	}
	skill.Body = body

	if err := skill.Validate(); err != nil {
		return nil, err
	}
	return &skill, nil
}

// splitFrontmatter returns the text between the leading --- lines and the rest.
func splitFrontmatter(content string) (string, string, error) {
	content = strings.TrimLeft(strings.ReplaceAll(content, "\r\n", "\n"), "\n ")
	if !strings.HasPrefix(content, frontmatterDelimiter+"\n") {
		return "", "", ErrMissingFrontmatter
	}
	rest := content[len(frontmatterDelimiter)+1:]

	lines := strings.SplitAfter(rest, "\n")
	offset := 0
	for _, line := range lines {
		if strings.TrimRight(line, "\n ") == frontmatterDelimiter {
			frontmatter := rest[:offset]
			body := strings.TrimSpace(rest[offset+len(line):])
			return frontmatter, body, nil
		}
		offset += len(line)
	}
	return "", "", ErrUnclosedFrontmatter
}
