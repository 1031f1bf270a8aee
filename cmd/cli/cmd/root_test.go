package cmd

import (
	"bytes"
	"code-agent-guard/internal/infrastructure/config"
	"code-agent-guard/internal/infrastructure/logging"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deploySkill = `---
name: deploy
description: Deploy the service
---
Run scripts/deploy.sh.
`

// newProject creates a small project with a hidden file, ignore rules and a skill.
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write(".gitignore", "build/\n")
	write(".env", "TOKEN=x\n")
	write("main.go", "package main\n")
	write("src/app.go", "package src\n")
	write("skills/deploy/SKILL.md", deploySkill)
	write("skills/deploy/scripts/deploy.sh", "#!/bin/sh\n")
	return root
}

// resetFlags restores every flag of c and its subcommands to its default, as
// the command tree is shared by all tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			var def []string
			if trimmed := strings.Trim(f.DefValue, "[]"); trimmed != "" {
				def = strings.Split(trimmed, ",")
			}
			_ = sv.Replace(def)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the command tree against project root and returns stdout.
func run(t *testing.T, root, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		logging.Init(logging.DefaultConfig())
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--dir", root, "--history-file", "", "--log-level", "off"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_FlagDefaults(t *testing.T) {
	tests := []struct {
		flagName    string
		flagType    string
		expectedVal string
	}{
		{"dir", "string", "."},
		{"cwd", "string", ""},
		{"skills", "stringSlice", "[skills]"},
		{"no-builtins", "bool", "false"},
		{"log-level", "string", "warn"},
		{"log-pretty", "bool", "false"},
		{"history-file", "string", "~/.code-agent-guard-history"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := rootCmd.PersistentFlags().Lookup(tt.flagName)
			require.NotNil(t, flag, "%s flag should be registered", tt.flagName)

			assert.Equal(t, tt.flagType, flag.Value.Type())
			assert.Equal(t, tt.expectedVal, flag.DefValue)
		})
	}

	assert.Equal(t, "d", rootCmd.PersistentFlags().Lookup("dir").Shorthand)
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"check", "parse", "shell", "builtins", "skills", "tool"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootCmd_FlagsReachConfig(t *testing.T) {
	t.Cleanup(func() { resetFlags(rootCmd) })
	flags := rootCmd.PersistentFlags()

	require.NoError(t, flags.Set("dir", "/srv/project"))
	require.NoError(t, flags.Set("cwd", "src"))
	require.NoError(t, flags.Set("skills", "skills,.agent/skills"))
	require.NoError(t, flags.Set("no-builtins", "true"))
	require.NoError(t, flags.Set("log-level", "debug"))
	require.NoError(t, flags.Set("history-file", ""))

	cfg := config.LoadConfig()
	assert.Equal(t, "/srv/project", cfg.ProjectDir)
	assert.Equal(t, "src", cfg.Cwd)
	assert.Equal(t, []string{"skills", ".agent/skills"}, cfg.SkillsDirs)
	assert.True(t, cfg.NoBuiltins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Empty(t, cfg.HistoryFile)
}

func TestCheckCmd(t *testing.T) {
	root := newProject(t)

	tests := []struct {
		name        string
		args        []string
		stdin       string
		wantAllowed bool
		wantOutput  string
	}{
		{
			name:        "allowed command",
			args:        []string{"check", "cat main.go"},
			wantAllowed: true,
			wantOutput:  "allowed\n",
		},
		{
			name:        "words are joined",
			args:        []string{"check", "cat", "main.go", "src/app.go"},
			wantAllowed: true,
			wantOutput:  "allowed\n",
		},
		{
			name:       "hidden file is denied",
			args:       []string{"check", "cat .env"},
			wantOutput: "denied: ",
		},
		{
			name:        "read from stdin",
			args:        []string{"check"},
			stdin:       "cd src && cat app.go\n",
			wantAllowed: true,
			wantOutput:  "allowed\n",
		},
		{
			name:        "skill script",
			args:        []string{"check", "skills/deploy/scripts/deploy.sh"},
			wantAllowed: true,
			wantOutput:  "allowed\n",
		},
		{
			name:       "unsupported syntax",
			args:       []string{"check", "cat $(echo main.go)"},
			wantOutput: "denied: ",
		},
		{
			name:        "cwd flag",
			args:        []string{"check", "--cwd", "src", "cat app.go"},
			wantAllowed: true,
			wantOutput:  "allowed\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, root, tt.stdin, tt.args...)
			if tt.wantAllowed {
				require.NoError(t, err)
				assert.Equal(t, tt.wantOutput, out)
				return
			}
			assert.ErrorIs(t, err, ErrCommandDenied)
			assert.True(t, strings.HasPrefix(out, tt.wantOutput), "unexpected output %q", out)
		})
	}
}

func TestCheckCmd_JSON(t *testing.T) {
	root := newProject(t)

	out, err := run(t, root, "", "check", "--json", "cd src && cat app.go")
	require.NoError(t, err)

	var resp struct {
		Allowed  bool   `json:"allowed"`
		Cwd      string `json:"cwd"`
		FinalCwd string `json:"final_cwd"`
		Commands []struct {
			Executable string `json:"executable"`
		} `json:"commands"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Allowed)
	assert.Equal(t, filepath.Join(root, "src"), resp.FinalCwd)
	require.Len(t, resp.Commands, 2)
	assert.Equal(t, "cd", resp.Commands[0].Executable)
	assert.Equal(t, "cat", resp.Commands[1].Executable)
}

func TestCheckCmd_NoBuiltins(t *testing.T) {
	root := newProject(t)

	_, err := run(t, root, "", "check", "--no-builtins", "cat main.go")
	assert.ErrorIs(t, err, ErrCommandDenied)
}

func TestCheckCmd_EmptyCommand(t *testing.T) {
	root := newProject(t)

	_, err := run(t, root, "  \n", "check")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCommandDenied)
}

func TestCheckCmd_MissingProject(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "missing"), "", "check", "ls")
	assert.ErrorIs(t, err, config.ErrProjectDirNotFound)
}

func TestParseCmd(t *testing.T) {
	root := newProject(t)

	out, err := run(t, root, "", "parse", "ls src | wc -l > out.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "tokens:")
	assert.Contains(t, out, "commands:")
	assert.Contains(t, out, "1. ls src")
	assert.Contains(t, out, "2. | wc -l >out.txt")

	_, err = run(t, root, "", "parse", "echo $HOME")
	assert.Error(t, err)
}

func TestParseCmd_JSON(t *testing.T) {
	root := newProject(t)

	out, err := run(t, root, "", "parse", "--json", "a && b")
	require.NoError(t, err)

	var resp struct {
		Tokens []struct {
			Type string `json:"type"`
		} `json:"tokens"`
		Commands []struct {
			Executable string `json:"executable"`
		} `json:"commands"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Tokens, 4)
	require.Len(t, resp.Commands, 2)
	assert.Equal(t, "b", resp.Commands[1].Executable)
}

func TestBuiltinsCmd(t *testing.T) {
	root := newProject(t)

	out, err := run(t, root, "", "builtins")
	require.NoError(t, err)
	assert.Contains(t, out, "cat ")
	assert.Contains(t, out, "git ")

	out, err = run(t, root, "", "builtins", "git")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "git\n"))
	assert.Contains(t, out, "\n  status\n")

	_, err = run(t, root, "", "builtins", "no-such-tool")
	assert.Error(t, err)
}

func TestSkillsCmd(t *testing.T) {
	root := newProject(t)

	out, err := run(t, root, "", "skills")
	require.NoError(t, err)
	assert.Contains(t, out, "deploy: Deploy the service")

	out, err = run(t, root, "", "skills", "--json", "deploy")
	require.NoError(t, err)
	var info struct {
		Name          string `json:"name"`
		DirectoryPath string `json:"directory_path"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "deploy", info.Name)
	assert.Equal(t, filepath.Join(root, "skills", "deploy"), info.DirectoryPath)

	_, err = run(t, root, "", "skills", "missing")
	assert.Error(t, err)
}

func TestToolCmd(t *testing.T) {
	root := newProject(t)

	t.Run("schema", func(t *testing.T) {
		out, err := run(t, root, "", "tool", "schema")
		require.NoError(t, err)
		assert.Contains(t, out, `"name": "bash"`)
		assert.Contains(t, out, `"command"`)
	})

	t.Run("allowed review", func(t *testing.T) {
		out, err := run(t, root, "", "tool", "review", `{"command": "cat main.go"}`)
		require.NoError(t, err)
		assert.JSONEq(t, `{"allowed": true}`, out)
	})

	t.Run("denied review from stdin", func(t *testing.T) {
		out, err := run(t, root, `{"command": "cat .env"}`, "tool", "review", "--id", "toolu_1")
		assert.ErrorIs(t, err, ErrCommandDenied)
		assert.Contains(t, out, `"allowed": false`)
		assert.Contains(t, out, `"tool_use_id": "toolu_1"`)
		assert.Contains(t, out, "command not allowed")
	})
}
