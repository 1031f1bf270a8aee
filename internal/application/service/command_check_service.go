package service

import (
	"code-agent-guard/internal/application/dto"
	"code-agent-guard/internal/domain/port"
	"code-agent-guard/internal/domain/safety"
	"code-agent-guard/internal/domain/shell"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Sentinel errors for CommandCheckService operations.
var (
	// ErrNilValidator is returned when a nil CommandValidator is passed to the constructor.
	ErrNilValidator = errors.New("command validator cannot be nil")
	// ErrProjectDirNotAbsolute is returned when the project directory is relative.
	ErrProjectDirNotAbsolute = errors.New("project directory must be absolute")
)

// CommandCheckService answers "may this command line run?" for one project.
//
// It turns requests into safety.Options (working directory, skills
// directories, gitignore rules), runs the validator and logs the decision.
// The domain packages stay free of I/O and logging; this is where both happen.
type CommandCheckService struct {
	validator    safety.CommandValidator
	projectDir   safety.AbsolutePath
	homeDir      safety.AbsolutePath
	skillManager port.SkillManager
	gitignore    port.Gitignore
	files        port.FileInspector
	logger       zerolog.Logger
}

// NewCommandCheckService creates a service checking commands inside projectDir.
//
// Parameters:
//   - validator: The engine facade holding the allowlist
//   - projectDir: Absolute project root bounding every file argument
//
// Returns:
//   - *CommandCheckService: A new service with no skills, gitignore or file inspector
//   - error: ErrNilValidator or ErrProjectDirNotAbsolute
func NewCommandCheckService(validator safety.CommandValidator, projectDir string) (*CommandCheckService, error) {
	if validator == nil {
		return nil, ErrNilValidator
	}
	root, err := safety.NewAbsolutePath(projectDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrProjectDirNotAbsolute, projectDir)
	}
	return &CommandCheckService{
		validator:  validator,
		projectDir: root,
		logger:     zerolog.Nop(),
	}, nil
}

// SetSkillManager enables skills-script detection with directories from sm.
func (s *CommandCheckService) SetSkillManager(sm port.SkillManager) {
	s.skillManager = sm
}

// SetGitignore sets the ignore rules applied to file arguments.
func (s *CommandCheckService) SetGitignore(g port.Gitignore) {
	s.gitignore = g
}

// SetFileInspector sets the filesystem used to confirm skills scripts exist.
func (s *CommandCheckService) SetFileInspector(f port.FileInspector) {
	s.files = f
}

// SetHomeDir overrides the directory "~" expands to.
func (s *CommandCheckService) SetHomeDir(home string) error {
	abs, err := safety.NewAbsolutePath(home)
	if err != nil {
		return fmt.Errorf("home directory %q: %w", home, err)
	}
	s.homeDir = abs
	return nil
}

// SetLogger sets the logger decisions are written to.
func (s *CommandCheckService) SetLogger(logger zerolog.Logger) {
	s.logger = logger
}

// ProjectDir returns the project root.
func (s *CommandCheckService) ProjectDir() safety.AbsolutePath {
	return s.projectDir
}

// ResolveCwd turns a user supplied working directory into an absolute path.
// An empty cwd is the project root; relative paths resolve against it.
func (s *CommandCheckService) ResolveCwd(cwd string) safety.AbsolutePath {
	if cwd == "" {
		return s.projectDir
	}
	return s.projectDir.Resolve(safety.UnresolvedPath(cwd))
}

// Options builds the check options for a command line starting in cwd.
func (s *CommandCheckService) Options(ctx context.Context, cwd safety.AbsolutePath) (safety.Options, error) {
	opts := safety.Options{
		Cwd:        cwd,
		ProjectDir: s.projectDir,
		Gitignore:  s.gitignore,
		Files:      s.files,
		HomeDir:    s.homeDir,
	}
	if s.skillManager == nil {
		return opts, nil
	}

	paths, err := s.skillManager.SkillsPaths(ctx)
	if err != nil {
		return safety.Options{}, fmt.Errorf("failed to resolve skills paths: %w", err)
	}
	for _, p := range paths {
		abs, err := safety.NewAbsolutePath(p)
		if err != nil {
			return safety.Options{}, fmt.Errorf("skills path %q: %w", p, err)
		}
		opts.SkillsPaths = append(opts.SkillsPaths, abs)
	}
	return opts, nil
}

// Check validates req and returns the verdict for its command line.
//
// A denial is a normal response, not an error. Errors are reserved for invalid
// requests and for failures gathering the check options.
func (s *CommandCheckService) Check(ctx context.Context, req *dto.CheckCommandRequest) (*dto.CheckCommandResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cwd := s.ResolveCwd(req.Cwd)
	opts, err := s.Options(ctx, cwd)
	if err != nil {
		return nil, err
	}

	verdict := s.validator.Validate(req.Command, opts)
	s.logVerdict(req.Command, cwd, verdict)

	return &dto.CheckCommandResponse{
		Command:   req.Command,
		Cwd:       cwd.String(),
		FinalCwd:  verdict.Cwd.String(),
		Allowed:   verdict.Allowed,
		Reason:    verdict.Reason,
		Dangerous: verdict.IsDangerous,
		Danger:    verdict.Danger,
		Commands:  dto.SummarizeCommands(verdict.Commands),
	}, nil
}

// Parse runs the lexer and parser on req without checking permissions.
func (s *CommandCheckService) Parse(req *dto.ParseCommandRequest) (*dto.ParseCommandResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tokens, err := shell.Tokenize(req.Command)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize command: %w", err)
	}
	list, err := shell.Parse(tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command: %w", err)
	}
	return dto.NewParseCommandResponse(tokens, list), nil
}

func (s *CommandCheckService) logVerdict(command string, cwd safety.AbsolutePath, v safety.Verdict) {
	s.logger.Debug().
		Str("command", command).
		Str("cwd", cwd.String()).
		Bool("allowed", v.Allowed).
		Str("reason", v.Reason).
		Msg("command checked")

	if v.Allowed {
		return
	}
	if v.IsDangerous {
		s.logger.Warn().
			Str("command", command).
			Str("danger", v.Danger).
			Str("reason", v.Reason).
			Msg("dangerous command denied")
		return
	}
	s.logger.Info().
		Str("command", command).
		Str("reason", v.Reason).
		Msg("command denied")
}
