// Package publish merges one local result set into the repository's
// pages branch. The merge is per (branch, platform): subtrees named by
// the result set are replaced whole, everything else already published
// stays byte-for-byte intact. All mutation happens in a disposable
// worktree so the caller's checkout is never touched, and nothing
// reaches the remote until the single push at the end.
package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/testwell-ci/testpages/internal/gitx"
	"github.com/testwell-ci/testpages/internal/render"
	"github.com/testwell-ci/testpages/internal/resultset"
)

const commitMessage = "Update test results"

// Outcome distinguishes a publish that created a commit from an
// idempotent re-run that found nothing new.
type Outcome int

const (
	OutcomePublished Outcome = iota
	OutcomeNoChanges
)

// Options configures one publish run.
type Options struct {
	RepoName    string
	RepoDir     string
	LogsDir     string
	PagesBranch string

	// Timestamp pins a specific run directory; empty selects the
	// latest.
	Timestamp string

	// Force skips the dirty working tree guard.
	Force bool

	// Push publishes the commit to origin. Off leaves a local-only
	// commit for inspection.
	Push bool
}

// Publisher runs the merge. Renderer failures are logged and skipped,
// so raw results still land even without regenerated index pages.
type Publisher struct {
	opts     *Options
	repo     *gitx.Repo
	renderer *render.Renderer
}

func NewPublisher(opts *Options) *Publisher {
	return &Publisher{
		opts:     opts,
		repo:     gitx.NewRepo(opts.RepoDir),
		renderer: render.New(),
	}
}

// Publish merges the latest result set into the pages branch.
func (p *Publisher) Publish(ctx context.Context) (Outcome, error) {
	opts := p.opts

	// Guards run before any worktree exists.
	dirty, err := p.repo.StatusPorcelain(ctx)
	if err != nil {
		return OutcomeNoChanges, errors.Wrap(err, "checking working tree")
	}
	if len(dirty) > 0 && !opts.Force {
		return OutcomeNoChanges, &DirtyTreeError{Paths: dirty}
	}

	rs, err := resultset.Locate(opts.LogsDir, opts.RepoName, opts.Timestamp)
	if err != nil {
		return OutcomeNoChanges, errors.Wrapf(ErrNoResults, "repository %s under %s", opts.RepoName, opts.LogsDir)
	}
	log.Infof("Results: %s", rs.Dir)

	branches, err := rs.Branches()
	if err != nil {
		return OutcomeNoChanges, err
	}
	if len(branches) == 0 {
		return OutcomeNoChanges, errors.Wrapf(ErrNoPlatformData, "in %s", rs.Dir)
	}
	for _, b := range branches {
		log.Infof("  branch %s -> %s", b.Name, strings.Join(b.Platforms(), ", "))
	}

	// The pages branch may only exist on origin. Drop any stale local
	// ref first so the worktree branch can be recreated from
	// FETCH_HEAD.
	p.repo.DeleteBranch(ctx, opts.PagesBranch)
	remoteHasPages, err := p.repo.Fetch(ctx, "origin", opts.PagesBranch)
	if err != nil {
		return OutcomeNoChanges, errors.Wrap(err, "fetching pages branch")
	}

	var wt *gitx.Worktree
	if remoteHasPages {
		log.Infof("Checking out %s branch...", opts.PagesBranch)
		wt, err = p.repo.AddWorktree(ctx, opts.PagesBranch, "FETCH_HEAD")
	} else {
		log.Infof("Creating new %s branch...", opts.PagesBranch)
		wt, err = p.repo.AddOrphanWorktree(ctx, opts.PagesBranch)
	}
	if err != nil {
		return OutcomeNoChanges, errors.Wrap(err, "creating worktree")
	}
	defer wt.Remove()

	if err := p.merge(ctx, wt, rs, branches); err != nil {
		return OutcomeNoChanges, err
	}

	if err := wt.AddAll(ctx); err != nil {
		return OutcomeNoChanges, errors.Wrap(err, "staging changes")
	}
	changed, err := wt.HasChanges(ctx)
	if err != nil {
		return OutcomeNoChanges, err
	}
	if !changed {
		log.Info("No changes to publish")
		return OutcomeNoChanges, nil
	}

	if err := wt.Commit(ctx, commitMessage); err != nil {
		return OutcomeNoChanges, errors.Wrap(err, "committing")
	}

	pagesURL := p.pagesURL(ctx)

	if opts.Push {
		log.Infof("Pushing to origin/%s...", opts.PagesBranch)
		if err := wt.Push(ctx, "origin", opts.PagesBranch); err != nil {
			return OutcomeNoChanges, &PushRejectedError{Err: err}
		}
		log.Info("Published!")
		if pagesURL != "" {
			log.Infof("%s (pages may take a minute to update)", pagesURL)
		}
	} else {
		log.Infof("Committed to local %s branch, re-run with --push to publish", opts.PagesBranch)
		if pagesURL != "" {
			log.Infof("URL will be: %s", pagesURL)
		}
	}

	return OutcomePublished, nil
}

// merge copies each (branch, platform) subtree from the result set
// into the worktree and regenerates the derived index pages.
func (p *Publisher) merge(ctx context.Context, wt *gitx.Worktree, rs *resultset.ResultSet, branches []resultset.Branch) error {
	for _, branch := range branches {
		destBranch := filepath.Join(wt.Dir, branch.Name)
		if err := os.MkdirAll(destBranch, 0755); err != nil {
			return errors.Wrapf(err, "creating %s", destBranch)
		}

		for _, pid := range branch.Platforms() {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Infof("  copying %s/%s...", branch.Name, pid)
			dest := filepath.Join(destBranch, pid)
			// Replace this platform's subtree whole; a file-level
			// merge would leave stale output from earlier runs.
			if err := os.RemoveAll(dest); err != nil {
				return errors.Wrapf(err, "removing %s", dest)
			}
			if err := copyDir(branch.PlatformDir(pid), dest); err != nil {
				return errors.Wrapf(err, "copying %s/%s", branch.Name, pid)
			}
			if err := p.renderer.Platform(dest, rs.RepoID, pid); err != nil {
				log.Warnf("rendering %s/%s report: %v", branch.Name, pid, err)
			}
		}

		if err := p.renderer.BranchIndex(destBranch, rs.RepoID); err != nil {
			log.Warnf("rendering %s index: %v", branch.Name, err)
		}
	}

	if err := p.renderer.RootIndex(wt.Dir, rs.RepoID); err != nil {
		log.Warnf("rendering root index: %v", err)
	}

	// Disable Jekyll templating on GitHub Pages. Idempotent.
	nojekyll := filepath.Join(wt.Dir, ".nojekyll")
	if _, err := os.Stat(nojekyll); os.IsNotExist(err) {
		if err := os.WriteFile(nojekyll, nil, 0644); err != nil {
			return errors.Wrap(err, "writing .nojekyll")
		}
	}
	return nil
}

// pagesURL derives the public store URL from the origin remote. Purely
// cosmetic: any parse failure just drops the URL from the output.
func (p *Publisher) pagesURL(ctx context.Context) string {
	remoteURL, err := p.repo.RemoteURL(ctx, "origin")
	if err != nil {
		log.Debugf("reading origin url: %v", err)
		return ""
	}
	or, err := gitx.ParseOwnerRepo(remoteURL)
	if err != nil {
		log.Debugf("parsing origin url: %v", err)
		return ""
	}
	return or.PagesURL()
}

// copyDir copies src into dst recursively, preserving file modes.
func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
