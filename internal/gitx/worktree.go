package gitx

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Worktree is a disposable secondary checkout of a Repo. It exists so
// the publisher can mutate the pages branch while the primary working
// tree and its checked-out branch stay exactly as the caller left them.
// Remove must be deferred as soon as the worktree is created.
type Worktree struct {
	repo *Repo

	// Dir is the worktree's own working directory.
	Dir string

	tmpRoot string
}

// AddWorktree checks out startRef into a fresh temporary directory as
// new local branch `branch`.
func (r *Repo) AddWorktree(ctx context.Context, branch, startRef string) (*Worktree, error) {
	tmp, err := os.MkdirTemp("", "testpages-worktree-")
	if err != nil {
		return nil, errors.Wrap(err, "creating worktree directory")
	}
	dir := filepath.Join(tmp, branch)
	if _, err := run(ctx, r.Dir, "worktree", "add", "-b", branch, dir, startRef); err != nil {
		_ = os.RemoveAll(tmp)
		return nil, err
	}
	return &Worktree{repo: r, Dir: dir, tmpRoot: tmp}, nil
}

// AddOrphanWorktree creates a detached worktree and converts it into a
// new orphan branch with an empty index, for stores that have never
// been published. Nothing from the default branch is carried over.
func (r *Repo) AddOrphanWorktree(ctx context.Context, branch string) (*Worktree, error) {
	tmp, err := os.MkdirTemp("", "testpages-worktree-")
	if err != nil {
		return nil, errors.Wrap(err, "creating worktree directory")
	}
	dir := filepath.Join(tmp, branch)
	if _, err := run(ctx, r.Dir, "worktree", "add", "--detach", dir); err != nil {
		_ = os.RemoveAll(tmp)
		return nil, err
	}
	wt := &Worktree{repo: r, Dir: dir, tmpRoot: tmp}
	if _, err := run(ctx, dir, "checkout", "--orphan", branch); err != nil {
		wt.Remove()
		return nil, err
	}
	// The orphan branch starts with the previous tree staged; clear
	// both the index and the inherited files.
	if _, err := run(ctx, dir, "rm", "-rf", "--cached", "."); err != nil {
		log.Debugf("clearing orphan index: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		wt.Remove()
		return nil, errors.Wrap(err, "listing orphan worktree")
	}
	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			wt.Remove()
			return nil, errors.Wrapf(err, "removing inherited path %s", entry.Name())
		}
	}
	return wt, nil
}

// AddAll stages every change in the worktree.
func (w *Worktree) AddAll(ctx context.Context) error {
	_, err := run(ctx, w.Dir, "add", "-A")
	return err
}

// HasChanges reports whether anything is staged or otherwise pending.
func (w *Worktree) HasChanges(ctx context.Context) (bool, error) {
	out, err := run(ctx, w.Dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Commit records the staged changes.
func (w *Worktree) Commit(ctx context.Context, message string) error {
	_, err := run(ctx, w.Dir, "commit", "-m", message)
	return err
}

// Push publishes the branch to the remote with upstream tracking.
func (w *Worktree) Push(ctx context.Context, remote, branch string) error {
	_, err := run(ctx, w.Dir, "push", "-u", remote, branch)
	return err
}

// Remove tears the worktree down unconditionally. Safe to call after a
// partial setup; errors are logged, not returned, since removal runs
// on every exit path.
func (w *Worktree) Remove() {
	ctx := context.Background()
	if _, err := run(ctx, w.repo.Dir, "worktree", "remove", w.Dir, "--force"); err != nil {
		log.Debugf("worktree remove: %v", err)
	}
	if err := os.RemoveAll(w.tmpRoot); err != nil {
		log.Warnf("could not remove worktree directory %s: %v", w.tmpRoot, err)
	}
}
