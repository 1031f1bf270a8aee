package config

import (
	"code-agent-guard/internal/application/dto"
	"code-agent-guard/internal/infrastructure/logging"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releaseSkill = `---
name: release
description: Cut a release
---
Run scripts/run.sh.
`

// newProject creates a project with ignore rules and one skill.
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write(".gitignore", "dist/\n*.log\n")
	write("main.go", "package main\n")
	write("skills/release/SKILL.md", releaseSkill)
	write("skills/release/run.sh", "#!/bin/sh\n")
	return root
}

func testConfig(t *testing.T, root string) *Config {
	t.Helper()
	cfg := Defaults()
	cfg.ProjectDir = root
	cfg.HistoryFile = ""
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })
	return cfg
}

func check(t *testing.T, c *Container, command string) *dto.CheckCommandResponse {
	t.Helper()
	resp, err := c.CheckService().Check(context.Background(), &dto.CheckCommandRequest{Command: command})
	require.NoError(t, err)
	return resp
}

func TestNewContainer_Errors(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewContainer(nil)
		assert.Error(t, err)
	})

	t.Run("unknown log level", func(t *testing.T) {
		cfg := testConfig(t, t.TempDir())
		cfg.LogLevel = "loud"

		_, err := NewContainer(cfg)
		assert.ErrorIs(t, err, logging.ErrUnknownLevel)
	})

	t.Run("missing project directory", func(t *testing.T) {
		cfg := testConfig(t, filepath.Join(t.TempDir(), "missing"))

		_, err := NewContainer(cfg)
		assert.ErrorIs(t, err, ErrProjectDirNotFound)
	})

	t.Run("skills root is a file", func(t *testing.T) {
		root := newProject(t)
		cfg := testConfig(t, root)
		cfg.SkillsDirs = []string{"main.go"}

		c, err := NewContainer(cfg)
		require.NoError(t, err, "discovery is lazy")

		_, err = c.CheckService().Check(context.Background(), &dto.CheckCommandRequest{Command: "ls"})
		assert.Error(t, err)
	})
}

func TestContainer_WiresCheckService(t *testing.T) {
	root := newProject(t)
	c, err := NewContainer(testConfig(t, root))
	require.NoError(t, err)

	assert.Equal(t, root, c.ProjectDir())
	assert.NotEmpty(t, c.Permissions())
	assert.NotNil(t, c.Validator())
	assert.NotNil(t, c.SkillService())
	assert.NotNil(t, c.FileInspector())
	assert.NotNil(t, c.SkillManager())

	tests := []struct {
		command string
		allowed bool
	}{
		{"cat main.go", true},
		{"git status", true},
		{"cat dist/app.js", false},
		{"cat debug.log", false},
		{"bash skills/release/run.sh", true},
		{"bash skills/release/missing.sh", false},
		{"curl example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			resp := check(t, c, tt.command)
			assert.Equal(t, tt.allowed, resp.Allowed, resp.Reason)
		})
	}

	assert.True(t, c.Gitignore().Ignores("dist"))
	assert.False(t, c.Gitignore().Ignores("main.go"))
}

func TestContainer_NoBuiltins(t *testing.T) {
	cfg := testConfig(t, newProject(t))
	cfg.NoBuiltins = true

	c, err := NewContainer(cfg)
	require.NoError(t, err)

	assert.Empty(t, c.Permissions())
	resp := check(t, c, "ls")
	assert.False(t, resp.Allowed)
	assert.Contains(t, resp.Reason, `command "ls" is not allowed`)
}

func TestContainer_Reload(t *testing.T) {
	root := newProject(t)
	c, err := NewContainer(testConfig(t, root))
	require.NoError(t, err)

	assert.True(t, check(t, c, "cat build/out.txt").Allowed)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "skills", "lint"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skills", "lint", "SKILL.md"),
		[]byte("---\nname: lint\ndescription: Lint code\n---\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skills", "lint", "lint.py"), nil, 0o644))

	require.NoError(t, c.Reload(context.Background()))

	assert.False(t, check(t, c, "cat build/out.txt").Allowed)
	assert.True(t, check(t, c, "cat dist/app.js").Allowed)
	assert.True(t, check(t, c, "python3 skills/lint/lint.py").Allowed)
}

func TestContainer_Gate(t *testing.T) {
	cfg := testConfig(t, newProject(t))
	cfg.Cwd = "skills"

	c, err := NewContainer(cfg)
	require.NoError(t, err)

	allowed, _ := c.Gate().Review("toolu_1", json.RawMessage(`{"command":"cat release/SKILL.md"}`))
	assert.True(t, allowed)

	allowed, block := c.Gate().Review("toolu_2", json.RawMessage(`{"command":"cat ../../etc/passwd"}`))
	assert.False(t, allowed)
	require.NotNil(t, block.OfToolResult)
	assert.Equal(t, "toolu_2", block.OfToolResult.ToolUseID)
}

func TestContainer_History(t *testing.T) {
	cfg := testConfig(t, newProject(t))
	cfg.HistoryFile = filepath.Join(t.TempDir(), "history")

	c, err := NewContainer(cfg)
	require.NoError(t, err)

	h := c.History()
	require.NoError(t, h.Add("ls"))
	assert.Same(t, h, c.History())
	assert.Equal(t, cfg.HistoryFile, h.Path())
	assert.FileExists(t, cfg.HistoryFile)
}
