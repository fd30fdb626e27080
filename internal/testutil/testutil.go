package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TempGitRepo is a throwaway git repository for testing
type TempGitRepo struct {
	Path string
	T    *testing.T
}

// NewTempGitRepo creates a new temporary git repository with one commit on
// the main branch
func NewTempGitRepo(t *testing.T) *TempGitRepo {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "autopull-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	cmd := exec.Command("git", "init", "-b", "main")
	cmd.Dir = tmpDir
	if err := cmd.Run(); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to init git repo: %v", err)
	}

	repo := &TempGitRepo{Path: tmpDir, T: t}
	repo.configureUser()

	// Create initial commit
	testFile := filepath.Join(tmpDir, "README.md")
	if err := os.WriteFile(testFile, []byte("# Test Repository\n"), 0644); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to create test file: %v", err)
	}
	repo.Commit("Initial commit")

	return repo
}

// Clone produces a working copy of r in its own temporary directory, with r
// wired up as origin.
func (r *TempGitRepo) Clone() *TempGitRepo {
	r.T.Helper()

	tmpDir, err := os.MkdirTemp("", "autopull-clone-*")
	if err != nil {
		r.T.Fatalf("failed to create temp dir: %v", err)
	}

	cmd := exec.Command("git", "clone", r.Path, tmpDir)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(tmpDir)
		r.T.Fatalf("failed to clone repo: %v\nOutput: %s", err, string(output))
	}

	clone := &TempGitRepo{Path: tmpDir, T: r.T}
	clone.configureUser()
	return clone
}

// Cleanup removes the temporary git repository
func (r *TempGitRepo) Cleanup() {
	r.T.Helper()
	if err := os.RemoveAll(r.Path); err != nil {
		r.T.Errorf("failed to cleanup temp repo: %v", err)
	}
}

// CreateFile creates a file in the repository
func (r *TempGitRepo) CreateFile(name, content string) {
	r.T.Helper()
	path := filepath.Join(r.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		r.T.Fatalf("failed to create file: %v", err)
	}
}

// Commit stages and commits all changes
func (r *TempGitRepo) Commit(message string) {
	r.T.Helper()

	cmd := exec.Command("git", "add", ".")
	cmd.Dir = r.Path
	if err := cmd.Run(); err != nil {
		r.T.Fatalf("failed to stage files: %v", err)
	}

	cmd = exec.Command("git", "commit", "-m", message)
	cmd.Dir = r.Path
	if output, err := cmd.CombinedOutput(); err != nil {
		r.T.Fatalf("failed to commit: %v\nOutput: %s", err, string(output))
	}
}

// Head returns the commit id of HEAD
func (r *TempGitRepo) Head() string {
	r.T.Helper()

	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = r.Path
	output, err := cmd.Output()
	if err != nil {
		r.T.Fatalf("failed to resolve HEAD: %v", err)
	}
	return strings.TrimSpace(string(output))
}

func (r *TempGitRepo) configureUser() {
	r.T.Helper()

	configCmds := [][]string{
		{"config", "user.name", "Test User"},
		{"config", "user.email", "test@example.com"},
	}
	for _, args := range configCmds {
		cmd := exec.Command("git", args...)
		cmd.Dir = r.Path
		if err := cmd.Run(); err != nil {
			r.T.Fatalf("failed to configure git: %v", err)
		}
	}
}
