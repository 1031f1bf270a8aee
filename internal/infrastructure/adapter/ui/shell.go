package ui

import (
	"code-agent-guard/internal/application/dto"
	"code-agent-guard/internal/domain/safety"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/rs/zerolog"
)

// Checker checks one command line. It is satisfied by the command check service.
type Checker interface {
	Check(ctx context.Context, req *dto.CheckCommandRequest) (*dto.CheckCommandResponse, error)
}

var exitWords = map[string]bool{"exit": true, "quit": true}

// Session is an interactive checking session. Every line typed is checked,
// never executed; an allowed line containing cd moves the session's working
// directory the way the shell would.
type Session struct {
	ctx        context.Context
	checker    Checker
	perms      safety.CommandPermissions
	printer    *Printer
	history    *History
	projectDir string
	cwd        string
	logger     zerolog.Logger
}

// NewSession creates a session starting in cwd. perms drives completion only.
func NewSession(
	ctx context.Context,
	checker Checker,
	perms safety.CommandPermissions,
	printer *Printer,
	history *History,
	projectDir, cwd string,
) *Session {
	if history == nil {
		history = NewHistory("", 0)
	}
	return &Session{
		ctx:        ctx,
		checker:    checker,
		perms:      perms,
		printer:    printer,
		history:    history,
		projectDir: projectDir,
		cwd:        cwd,
		logger:     zerolog.Nop(),
	}
}

// SetLogger sets the logger for history and output errors.
func (s *Session) SetLogger(logger zerolog.Logger) {
	s.logger = logger
}

// Cwd returns the session's working directory.
func (s *Session) Cwd() string {
	return s.cwd
}

// Execute checks one line and prints the verdict.
func (s *Session) Execute(line string) {
	line = strings.TrimSpace(line)
	if line == "" || exitWords[line] {
		return
	}
	if err := s.history.Add(line); err != nil {
		s.logger.Debug().Err(err).Str("line", line).Msg("history entry not recorded")
	}

	resp, err := s.checker.Check(s.ctx, &dto.CheckCommandRequest{Command: line, Cwd: s.cwd})
	if err != nil {
		s.logOutput(s.printer.PrintError(err))
		return
	}
	s.logOutput(s.printer.PrintVerdict(resp))

	if resp.Allowed && resp.FinalCwd != "" && resp.FinalCwd != s.cwd {
		s.cwd = resp.FinalCwd
		s.logOutput(s.printer.PrintInfo("cwd: %s", s.cwd))
	}
}

func (s *Session) logOutput(err error) {
	if err != nil {
		s.logger.Debug().Err(err).Msg("failed to write to terminal")
	}
}

// Prefix renders the prompt prefix with the working directory relative to
// the project when possible.
func (s *Session) Prefix() (string, bool) {
	dir := s.cwd
	if rel, err := filepath.Rel(s.projectDir, s.cwd); err == nil && !strings.HasPrefix(rel, "..") {
		dir = rel
	}
	return fmt.Sprintf("guard:%s> ", dir), true
}

// Complete implements the go-prompt completer.
func (s *Session) Complete(d prompt.Document) []prompt.Suggest {
	return s.Suggest(d.TextBeforeCursor())
}

// Suggest returns completions for the command line text before the cursor:
// executables in command position, then subcommands while the typed words
// name subcommands.
func (s *Session) Suggest(text string) []prompt.Suggest {
	words, current := splitForCompletion(text)
	if len(words) == 0 {
		return prompt.FilterHasPrefix(s.executableSuggestions(), current, false)
	}

	spec, ok := s.perms[words[0]]
	if !ok {
		return nil
	}
	for _, w := range words[1:] {
		sub, ok := spec.SubCommands[w]
		if !ok {
			return nil
		}
		spec = sub
	}

	suggestions := make([]prompt.Suggest, 0, len(spec.SubCommands))
	for _, name := range spec.SubCommandNames() {
		suggestions = append(suggestions, prompt.Suggest{Text: name, Description: DescribeSpec(spec.SubCommands[name])})
	}
	return prompt.FilterHasPrefix(suggestions, current, false)
}

func (s *Session) executableSuggestions() []prompt.Suggest {
	suggestions := []prompt.Suggest{{Text: "cd", Description: "change the working directory"}}
	for _, name := range s.perms.Executables() {
		suggestions = append(suggestions, prompt.Suggest{Text: name, Description: DescribeSpec(s.perms[name])})
	}
	sort.Slice(suggestions, func(i, j int) bool { return suggestions[i].Text < suggestions[j].Text })
	return suggestions
}

// Run reads lines until exit, quit or Ctrl-D.
func (s *Session) Run() {
	p := prompt.New(
		s.Execute,
		s.Complete,
		prompt.OptionTitle("code-agent-guard"),
		prompt.OptionLivePrefix(s.Prefix),
		prompt.OptionPrefixTextColor(prompt.Blue),
		prompt.OptionHistory(s.history.Entries()),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && exitWords[strings.TrimSpace(in)]
		}),
	)
	p.Run()
}

// splitForCompletion returns the completed words of the last command in text
// and the word being typed.
func splitForCompletion(text string) ([]string, string) {
	cut := 0
	for _, op := range []string{"&&", "||", "|", ";"} {
		if i := strings.LastIndex(text, op); i >= 0 && i+len(op) > cut {
			cut = i + len(op)
		}
	}
	segment := text[cut:]

	words := strings.Fields(segment)
	if segment == "" || strings.HasSuffix(segment, " ") || strings.HasSuffix(segment, "\t") || len(words) == 0 {
		return words, ""
	}
	return words[:len(words)-1], words[len(words)-1]
}

// DescribeSpec summarises what a spec accepts in one line.
func DescribeSpec(spec safety.CommandSpec) string {
	switch {
	case spec.AllowAll:
		return "any arguments"
	case len(spec.SubCommands) > 0:
		return "subcommands: " + strings.Join(spec.SubCommandNames(), ", ")
	case len(spec.Args) == 0:
		return "no arguments"
	case len(spec.Args) == 1:
		return safety.DescribePattern(spec.Args[0])
	default:
		return fmt.Sprintf("%s (+%d more)", safety.DescribePattern(spec.Args[0]), len(spec.Args)-1)
	}
}
