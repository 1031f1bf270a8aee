// Package config provides a dependency injection container for wiring together
// all the components of the application following hexagonal architecture principles.
package config

import (
	"code-agent-guard/internal/domain/port"
	"code-agent-guard/internal/domain/safety"
	"code-agent-guard/internal/infrastructure/adapter/file"
	"code-agent-guard/internal/infrastructure/adapter/gitignore"
	"code-agent-guard/internal/infrastructure/adapter/skill"
	"code-agent-guard/internal/infrastructure/adapter/tool"
	"code-agent-guard/internal/infrastructure/adapter/ui"
	"code-agent-guard/internal/infrastructure/logging"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	appsvc "code-agent-guard/internal/application/service"
)

// ErrProjectDirNotFound is returned when the project directory does not exist.
var ErrProjectDirNotFound = errors.New("project directory does not exist")

// reloadableGitignore lets the rules be swapped while checks are running.
type reloadableGitignore struct {
	current atomic.Pointer[gitignore.Matcher]
}

func (r *reloadableGitignore) Ignores(relPath string) bool {
	return r.current.Load().Ignores(relPath)
}

// Container holds all application dependencies wired together.
// It provides a single point of access to all services and ports,
// following the dependency injection pattern for clean architecture.
//
// The container is responsible for:
// - Creating and initializing all adapters (infrastructure layer)
// - Building the allowlist and its validator (domain layer)
// - Creating application services (application layer)
// - Providing accessors for all dependencies.
type Container struct {
	config       *Config
	projectDir   string
	permissions  safety.CommandPermissions
	validator    *safety.CommandValidatorImpl
	files        *file.LocalFileInspector
	gitignore    *reloadableGitignore
	skillManager *skill.LocalSkillManager
	checkService *appsvc.CommandCheckService
	skillService *appsvc.SkillService
	gate         *tool.CommandGate

	historyOnce sync.Once
	history     *ui.History
}

// NewContainer creates a new DI container and wires all dependencies.
//
// The wiring order is:
// 1. Initialise logging
// 2. Create infrastructure adapters (infra layer)
// 3. Build the allowlist and validator (domain layer)
// 4. Create application services (application layer)
func NewContainer(cfg *Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	// Step 1: logging
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Level: level, Pretty: cfg.LogPretty})

	// Step 2: infrastructure adapters
	files := file.NewLocalFileInspector()
	projectDir, err := resolveProjectDir(cfg.ProjectDir, files)
	if err != nil {
		return nil, err
	}

	matcher, err := gitignore.Load(projectDir, files)
	if err != nil {
		return nil, err
	}
	ignore := &reloadableGitignore{}
	ignore.current.Store(matcher)

	skillManager := skill.NewLocalSkillManager(resolveAll(projectDir, cfg.SkillsDirs)...)

	// Step 3: allowlist and validator
	permissions := safety.BuiltinCommandPermissions()
	if cfg.NoBuiltins {
		permissions = safety.CommandPermissions{}
	}
	validator, err := safety.NewCommandValidator(permissions)
	if err != nil {
		return nil, err
	}

	// Step 4: application services
	checkService, err := appsvc.NewCommandCheckService(validator, projectDir)
	if err != nil {
		return nil, err
	}
	checkService.SetFileInspector(files)
	checkService.SetGitignore(ignore)
	checkService.SetSkillManager(skillManager)
	checkService.SetLogger(logging.With().Str("component", "check").Logger())

	skillService, err := appsvc.NewSkillService(skillManager)
	if err != nil {
		return nil, err
	}

	gate := tool.NewCommandGate(validator, func() (safety.Options, error) {
		return checkService.Options(context.Background(), checkService.ResolveCwd(cfg.Cwd))
	})

	logging.Debug().
		Str("project", projectDir).
		Strs("skills_dirs", cfg.SkillsDirs).
		Int("executables", len(permissions)).
		Int("ignore_rules", len(matcher.Patterns())).
		Msg("container ready")

	return &Container{
		config:       cfg,
		projectDir:   projectDir,
		permissions:  permissions,
		validator:    validator,
		files:        files,
		gitignore:    ignore,
		skillManager: skillManager,
		checkService: checkService,
		skillService: skillService,
		gate:         gate,
	}, nil
}

func resolveProjectDir(dir string, files *file.LocalFileInspector) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory %q: %w", dir, err)
	}
	if err := file.ValidatePath(abs); err != nil {
		return "", err
	}
	if !files.IsDirectory(abs) {
		return "", fmt.Errorf("%w: %s", ErrProjectDirNotFound, abs)
	}
	return abs, nil
}

func resolveAll(base string, dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = ui.ExpandHome(d)
		if !filepath.IsAbs(d) {
			d = filepath.Join(base, d)
		}
		out = append(out, d)
	}
	return out
}

// Reload re-reads the ignore rules and rediscovers skills. On error the
// previous state stays in use.
func (c *Container) Reload(ctx context.Context) error {
	matcher, err := gitignore.Load(c.projectDir, c.files)
	if err != nil {
		return err
	}
	if _, err := c.skillManager.DiscoverSkills(ctx); err != nil {
		return err
	}
	c.gitignore.current.Store(matcher)
	return nil
}

// Config returns the configuration the container was built from.
func (c *Container) Config() *Config {
	return c.config
}

// ProjectDir returns the absolute project root.
func (c *Container) ProjectDir() string {
	return c.projectDir
}

// Permissions returns the allowlist in use.
func (c *Container) Permissions() safety.CommandPermissions {
	return c.permissions
}

// Validator returns the command validator.
func (c *Container) Validator() safety.CommandValidator {
	return c.validator
}

// CheckService returns the command check service.
func (c *Container) CheckService() *appsvc.CommandCheckService {
	return c.checkService
}

// SkillService returns the skill service.
func (c *Container) SkillService() *appsvc.SkillService {
	return c.skillService
}

// Gate returns the bash tool gate for agent integrations.
func (c *Container) Gate() *tool.CommandGate {
	return c.gate
}

// Gitignore returns the project's ignore rules.
func (c *Container) Gitignore() port.Gitignore {
	return c.gitignore
}

// FileInspector returns the filesystem adapter.
func (c *Container) FileInspector() port.FileInspector {
	return c.files
}

// SkillManager returns the skill discovery adapter.
func (c *Container) SkillManager() port.SkillManager {
	return c.skillManager
}

// History returns the interactive shell history, loading it on first use.
func (c *Container) History() *ui.History {
	c.historyOnce.Do(func() {
		c.history = ui.NewHistory(c.config.HistoryFile, c.config.HistoryMaxEntries)
	})
	return c.history
}
