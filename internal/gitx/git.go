// Package gitx wraps the git binary for the handful of plumbing calls
// the publisher and status reader need. Every command runs against an
// explicit directory handle; nothing here ever changes the caller's
// checked-out branch.
package gitx

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Repo is a handle to a local clone. Mutating operations on the pages
// branch go through a Worktree instead, so the primary working tree
// stays untouched.
type Repo struct {
	Dir string
}

func NewRepo(dir string) *Repo {
	return &Repo{Dir: dir}
}

// run executes git with the given arguments in dir and returns
// trimmed stdout. stderr is folded into the returned error.
func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	log.Debugf("running git %s in %s", strings.Join(args, " "), dir)
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "git %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// StatusPorcelain returns one line per changed path, empty when the
// working tree is clean.
func (r *Repo) StatusPorcelain(ctx context.Context) ([]string, error) {
	out, err := run(ctx, r.Dir, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// Head returns the commit hash of HEAD, or "" when it cannot be read.
func (r *Repo) Head(ctx context.Context) string {
	out, err := run(ctx, r.Dir, "rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return out
}

// CurrentBranch returns the checked-out branch name, or "" on error.
func (r *Repo) CurrentBranch(ctx context.Context) string {
	out, err := run(ctx, r.Dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return ""
	}
	return out
}

// RemoteURL returns the fetch URL of the named remote.
func (r *Repo) RemoteURL(ctx context.Context, remote string) (string, error) {
	return run(ctx, r.Dir, "remote", "get-url", remote)
}

// Fetch fetches a single ref from the remote. The boolean reports
// whether the ref exists there; a missing ref is not an error.
func (r *Repo) Fetch(ctx context.Context, remote, ref string) (bool, error) {
	_, err := run(ctx, r.Dir, "fetch", remote, ref)
	if err != nil {
		if ctx.Err() != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// DeleteBranch removes a local branch ref if present. Best effort: a
// missing branch is the common case and not reported.
func (r *Repo) DeleteBranch(ctx context.Context, branch string) {
	if _, err := run(ctx, r.Dir, "branch", "-D", branch); err != nil {
		log.Debugf("no local branch %s to delete: %v", branch, err)
	}
}
