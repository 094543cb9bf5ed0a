package version

import (
	"strings"
	"testing"
)

func setBuild(t *testing.T, version, commit, branch, buildTime string) {
	t.Helper()
	orig := [...]string{Version, GitCommit, GitBranch, BuildTime, GoVersion}
	t.Cleanup(func() {
		Version, GitCommit, GitBranch, BuildTime, GoVersion = orig[0], orig[1], orig[2], orig[3], orig[4]
	})
	Version, GitCommit, GitBranch, BuildTime, GoVersion = version, commit, branch, buildTime, "go1.25"
}

func TestGetDefaults(t *testing.T) {
	setBuild(t, "dev", "", "", "")

	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
	if info.BuildDate.IsZero() || info.BuildTime == "" {
		t.Error("build date should fall back to now")
	}
}

func TestGetRelease(t *testing.T) {
	setBuild(t, "1.2.0", "abc1234", "main", "2026-03-01T10:30:00Z")

	info := Get()
	if !info.IsRelease {
		t.Error("1.2.0 should be a release")
	}
	if info.GitCommit != "abc1234" || info.GoVersion != "go1.25" {
		t.Errorf("unexpected info %+v", info)
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("expected build year 2026, got %d", info.BuildDate.Year())
	}
}

func TestGetDirtyVersion(t *testing.T) {
	setBuild(t, "1.2.0-dirty", "", "", "")
	if Get().IsRelease {
		t.Error("dirty version should not be a release")
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef"); got != "0123456" {
		t.Errorf("got %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Errorf("got %q", got)
	}
}

func TestShort(t *testing.T) {
	setBuild(t, "1.2.0", "abc1234", "", "2026-03-01T00:00:00Z")
	if got := Short(); got != "1.2.0-abc1234" && got != "1.2.0-abc1234-dirty" {
		t.Errorf("expected '1.2.0-abc1234', got %q", got)
	}
}

func TestFull(t *testing.T) {
	tests := []struct {
		name, branch string
		contains     []string
		excludes     []string
	}{
		{"main branch hidden", "main", []string{"1.2.0", "abc1234", "built 2026-03-01"}, []string{"main"}},
		{"feature branch shown", "feature/resize", []string{"feature/resize"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setBuild(t, "1.2.0", "abc1234", tc.branch, "2026-03-01T10:30:00Z")
			full := Full()
			for _, s := range tc.contains {
				if !strings.Contains(full, s) {
					t.Errorf("expected %q in %q", s, full)
				}
			}
			for _, s := range tc.excludes {
				if strings.Contains(full, s) {
					t.Errorf("did not expect %q in %q", s, full)
				}
			}
		})
	}
}

func TestFullStartsWithVersion(t *testing.T) {
	setBuild(t, "dev", "", "", "")
	if full := Full(); !strings.HasPrefix(full, "dev") {
		t.Errorf("expected full version to start with 'dev', got %q", full)
	}
}
