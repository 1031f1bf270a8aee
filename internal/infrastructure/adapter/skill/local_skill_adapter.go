// Package skill provides an implementation of the domain SkillManager port.
//
// Skills are discovered below one or more root directories. Each skill is a
// directory containing a SKILL.md file whose frontmatter name matches the
// directory name. The absolute directories of the discovered skills are the
// trusted locations whose scripts bypass allowlist matching.
//
// Example usage:
//
//	sm := skill.NewLocalSkillManager("./skills")
//	paths, err := sm.SkillsPaths(context.Background())
//	if err != nil {
//		log.Fatal(err)
//	}
package skill

import (
	"code-agent-guard/internal/domain/entity"
	"code-agent-guard/internal/domain/port"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrSkillsRootNotDirectory is returned when a configured root exists but is a file.
var ErrSkillsRootNotDirectory = errors.New("skills path is not a directory")

// LocalSkillManager implements the SkillManager port for skills on the local file system.
type LocalSkillManager struct {
	mu         sync.RWMutex
	roots      []string
	skills     map[string]*entity.Skill // by absolute directory
	discovered bool
}

// NewLocalSkillManager creates a LocalSkillManager scanning the given roots.
// Relative roots are resolved against the process working directory. Roots that
// do not exist are skipped during discovery.
func NewLocalSkillManager(roots ...string) *LocalSkillManager {
	return &LocalSkillManager{
		roots:  roots,
		skills: make(map[string]*entity.Skill),
	}
}

var _ port.SkillManager = (*LocalSkillManager)(nil)

// DiscoverSkills scans every root for skill directories. Invalid manifests are
// skipped so one broken skill does not hide the others.
func (sm *LocalSkillManager) DiscoverSkills(ctx context.Context) (*port.SkillDiscoveryResult, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.skills = make(map[string]*entity.Skill)
	scanned := make([]string, 0, len(sm.roots))

	for _, root := range sm.roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve skills directory %s: %w", root, err)
		}

		info, err := os.Stat(abs)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return nil, fmt.Errorf("failed to access skills directory: %w", err)
		case !info.IsDir():
			return nil, fmt.Errorf("%w: %s", ErrSkillsRootNotDirectory, abs)
		}

		if err := sm.walkRoot(ctx, abs); err != nil {
			return nil, err
		}
		scanned = append(scanned, abs)
	}
	sm.discovered = true

	return &port.SkillDiscoveryResult{
		Skills:     sm.skillInfos(),
		SkillsDirs: scanned,
		TotalCount: len(sm.skills),
	}, nil
}

func (sm *LocalSkillManager) walkRoot(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == entity.SkillManifestFile {
			sm.processSkillFile(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk skills directory: %w", err)
	}
	return nil
}

// processSkillFile records the skill described by the manifest at path when it
// is valid. A manifest directly inside a root makes the whole root a skill.
func (sm *LocalSkillManager) processSkillFile(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}

	skill, err := entity.ParseSkill(string(content))
	if err != nil {
		return
	}

	dir := filepath.Dir(path)
	if filepath.Base(dir) != skill.Name {
		return
	}

	skill.Dir = dir
	sm.skills[dir] = skill
}

func (sm *LocalSkillManager) skillInfos() []port.SkillInfo {
	infos := make([]port.SkillInfo, 0, len(sm.skills))
	for _, skill := range sm.skills {
		infos = append(infos, port.SkillInfo{
			Name:          skill.Name,
			Description:   skill.Description,
			AllowedTools:  skill.AllowedTools,
			DirectoryPath: skill.Dir,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].DirectoryPath < infos[j].DirectoryPath
	})
	return infos
}

// SkillsPaths returns the sorted absolute directories of all discovered skills.
func (sm *LocalSkillManager) SkillsPaths(ctx context.Context) ([]string, error) {
	sm.mu.RLock()
	discovered := sm.discovered
	sm.mu.RUnlock()

	if !discovered {
		if _, err := sm.DiscoverSkills(ctx); err != nil {
			return nil, err
		}
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	paths := make([]string, 0, len(sm.skills))
	for dir := range sm.skills {
		paths = append(paths, dir)
	}
	sort.Strings(paths)
	return paths, nil
}
