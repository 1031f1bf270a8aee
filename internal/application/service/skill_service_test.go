package service

import (
	"code-agent-guard/internal/domain/port"
	"context"
	"errors"
	"testing"
)

// mockSkillManager is a mock implementation of SkillManager for testing.
type mockSkillManager struct {
	discoverFunc func(ctx context.Context) (*port.SkillDiscoveryResult, error)
	pathsFunc    func(ctx context.Context) ([]string, error)
}

func (m *mockSkillManager) DiscoverSkills(ctx context.Context) (*port.SkillDiscoveryResult, error) {
	if m.discoverFunc != nil {
		return m.discoverFunc(ctx)
	}
	return &port.SkillDiscoveryResult{}, nil
}

func (m *mockSkillManager) SkillsPaths(ctx context.Context) ([]string, error) {
	if m.pathsFunc != nil {
		return m.pathsFunc(ctx)
	}
	return nil, nil
}

func twoSkills() *port.SkillDiscoveryResult {
	return &port.SkillDiscoveryResult{
		Skills: []port.SkillInfo{
			{Name: "pdf-tools", Description: "Work with PDFs", DirectoryPath: "/project/skills/pdf-tools"},
			{Name: "release", Description: "Cut a release", DirectoryPath: "/project/skills/release"},
		},
		SkillsDirs: []string{"/project/skills"},
		TotalCount: 2,
	}
}

func TestNewSkillService_NilSkillManager(t *testing.T) {
	svc, err := NewSkillService(nil)
	if !errors.Is(err, ErrSkillManagerRequired) {
		t.Errorf("expected ErrSkillManagerRequired, got %v", err)
	}
	if svc != nil {
		t.Error("expected nil service")
	}
}

func TestSkillService_DiscoverSkills(t *testing.T) {
	svc, err := NewSkillService(&mockSkillManager{
		discoverFunc: func(context.Context) (*port.SkillDiscoveryResult, error) { return twoSkills(), nil },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.DiscoverSkills(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCount != 2 {
		t.Errorf("expected 2 skills, got %d", result.TotalCount)
	}
}

func TestSkillService_GetSkillByName(t *testing.T) {
	svc, _ := NewSkillService(&mockSkillManager{
		discoverFunc: func(context.Context) (*port.SkillDiscoveryResult, error) { return twoSkills(), nil },
	})

	info, err := svc.GetSkillByName(context.Background(), "release")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.DirectoryPath != "/project/skills/release" {
		t.Errorf("unexpected directory %q", info.DirectoryPath)
	}

	_, err = svc.GetSkillByName(context.Background(), "missing")
	if !errors.Is(err, ErrSkillNotFound) {
		t.Errorf("expected ErrSkillNotFound, got %v", err)
	}
}

func TestSkillService_GetSkillByName_DiscoveryError(t *testing.T) {
	boom := errors.New("boom")
	svc, _ := NewSkillService(&mockSkillManager{
		discoverFunc: func(context.Context) (*port.SkillDiscoveryResult, error) { return nil, boom },
	})

	if _, err := svc.GetSkillByName(context.Background(), "release"); !errors.Is(err, boom) {
		t.Errorf("expected discovery error, got %v", err)
	}
}

func TestSkillService_TrustedDirectories(t *testing.T) {
	svc, _ := NewSkillService(&mockSkillManager{
		pathsFunc: func(context.Context) ([]string, error) {
			return []string{"/project/skills/release"}, nil
		},
	})

	dirs, err := svc.TrustedDirectories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dirs) != 1 || dirs[0] != "/project/skills/release" {
		t.Errorf("unexpected directories %v", dirs)
	}
}
