// Package config provides configuration management for the command checker.
// It uses viper for loading configuration from command-line flags and
// environment variables.
//
// Configuration priority (highest to lowest):
// 1. Command-line flags
// 2. Environment variables (with AGENT_ prefix)
// 3. Defaults
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the application.
type Config struct {
	// ProjectDir is the project root. File arguments may not leave it.
	// Defaults to "." (current directory)
	ProjectDir string

	// Cwd is the working directory commands start in. Relative values are
	// resolved against ProjectDir. Defaults to the project root.
	Cwd string

	// SkillsDirs are the roots scanned for skills. Relative values are
	// resolved against ProjectDir; missing roots are skipped.
	// Defaults to ["skills"]
	SkillsDirs []string

	// NoBuiltins starts from an empty allowlist instead of the builtin one.
	NoBuiltins bool

	// LogLevel is one of debug, info, warn, error or off.
	// Defaults to "warn"
	LogLevel string

	// LogPretty switches logs from JSON to human-readable console output.
	LogPretty bool

	// HistoryFile stores the lines typed into the interactive shell.
	// An empty value keeps history in memory only.
	// Defaults to "~/.code-agent-guard-history"
	HistoryFile string

	// HistoryMaxEntries caps the history file. Defaults to 1000.
	HistoryMaxEntries int
}

// Defaults returns a Config struct with all default values set.
func Defaults() *Config {
	return &Config{
		ProjectDir:        ".",
		SkillsDirs:        []string{"skills"},
		LogLevel:          "warn",
		HistoryFile:       "~/.code-agent-guard-history",
		HistoryMaxEntries: 1000,
	}
}

// envKeys maps configuration keys to their environment variables. They are
// bound explicitly because the camel-case keys would otherwise map to
// unreadable names such as AGENT_HISTORYMAXENTRIES.
var envKeys = map[string]string{
	"projectDir":        "AGENT_PROJECT_DIR",
	"cwd":               "AGENT_CWD",
	"skillsDirs":        "AGENT_SKILLS_DIRS",
	"noBuiltins":        "AGENT_NO_BUILTINS",
	"logLevel":          "AGENT_LOG_LEVEL",
	"logPretty":         "AGENT_LOG_PRETTY",
	"historyFile":       "AGENT_HISTORY_FILE",
	"historyMaxEntries": "AGENT_HISTORY_MAX_ENTRIES",
}

// LoadConfig loads and returns the configuration from viper.
// It sets up environment variable bindings with the AGENT_ prefix.
//
// The caller is expected to have set up viper with BindPFlag() calls
// for command-line flags before calling this function.
func LoadConfig() *Config {
	// Set defaults first
	cfg := Defaults()

	viper.SetEnvPrefix("AGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// An empty AGENT_HISTORY_FILE is meaningful: it disables the history file.
	viper.AllowEmptyEnv(true)
	for key, env := range envKeys {
		_ = viper.BindEnv(key, env)
	}

	// Override defaults with viper values
	if viper.IsSet("projectDir") {
		cfg.ProjectDir = viper.GetString("projectDir")
	}
	if viper.IsSet("cwd") {
		cfg.Cwd = viper.GetString("cwd")
	}
	if viper.IsSet("skillsDirs") {
		cfg.SkillsDirs = splitList(viper.GetStringSlice("skillsDirs"))
	}
	if viper.IsSet("noBuiltins") {
		cfg.NoBuiltins = viper.GetBool("noBuiltins")
	}
	if viper.IsSet("logLevel") {
		cfg.LogLevel = viper.GetString("logLevel")
	}
	if viper.IsSet("logPretty") {
		cfg.LogPretty = viper.GetBool("logPretty")
	}
	if viper.IsSet("historyFile") {
		cfg.HistoryFile = viper.GetString("historyFile")
	}
	if viper.IsSet("historyMaxEntries") {
		// Non-positive values fall back to the default.
		if n := viper.GetInt("historyMaxEntries"); n > 0 {
			cfg.HistoryMaxEntries = n
		}
	}

	return cfg
}

// splitList flattens comma separated entries, as environment variables carry
// lists in one string.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
