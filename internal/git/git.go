package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mfriesen42/autopull/internal/reconciler"
)

// Checkout is a local working copy addressed by its filesystem path. It
// implements reconciler.LocalSource and reconciler.Updater by shelling out to
// the git binary.
type Checkout struct {
	// Dir is the root of the working copy.
	Dir string
	// FetchURL is the (possibly credentialed) URL used for fetches.
	FetchURL string
	// Branch is the remote branch being tracked.
	Branch string
}

// Head returns the commit id of the working copy's HEAD.
func (c *Checkout) Head(ctx context.Context) (string, error) {
	out, err := run(ctx, c.Dir, "rev-parse", "HEAD")
	if err != nil {
		return "", &reconciler.LocalRepositoryError{Path: c.Dir, Err: err}
	}
	return out, nil
}

// Update fetches the tracked branch and fast-forwards the working copy to
// target. A fast-forward either fully succeeds or leaves HEAD where it was;
// diverged histories are reported as an error rather than merged.
func (c *Checkout) Update(ctx context.Context, target string) error {
	if _, err := run(ctx, c.Dir, "fetch", c.FetchURL, c.Branch); err != nil {
		return &reconciler.UpdateError{Target: target, Err: err}
	}
	if _, err := run(ctx, c.Dir, "merge", "--ff-only", target); err != nil {
		return &reconciler.UpdateError{Target: target, Err: err}
	}
	return nil
}

// IsRepo checks if dir is a git working copy.
func IsRepo(ctx context.Context, dir string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// run executes a git subcommand in dir and returns its trimmed output. Error
// messages carry the subcommand name but not the full argument list, so
// credentialed URLs stay out of them.
func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(output))
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", args[0], err)
		}
		return "", fmt.Errorf("git %s: %s: %w", args[0], msg, err)
	}
	return strings.TrimSpace(string(output)), nil
}
