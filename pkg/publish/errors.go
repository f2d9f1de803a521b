package publish

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Guard failures abort before any worktree is created or any remote
// state is touched.
var (
	// ErrNoResults means no local result set directory matched the
	// repository.
	ErrNoResults = errors.New("no test results found")

	// ErrNoPlatformData means a result set was found but holds no
	// branch with a recognized platform subtree.
	ErrNoPlatformData = errors.New("no branch/platform structure in result set")
)

// DirtyTreeError reports uncommitted changes in the source repository.
// Publishing from a dirty tree would record a commit hash that does
// not describe what actually ran, so the guard lists the paths and the
// caller decides whether to force.
type DirtyTreeError struct {
	Paths []string
}

func (e *DirtyTreeError) Error() string {
	return fmt.Sprintf("uncommitted changes detected:\n%s", strings.Join(e.Paths, "\n"))
}

// PushRejectedError means the local commit exists but the remote
// refused the push, typically because another publisher raced ahead.
// Recovery is re-running publish after the remote is re-fetched, never
// a force push.
type PushRejectedError struct {
	Err error
}

func (e *PushRejectedError) Error() string {
	return fmt.Sprintf("push rejected: %v", e.Err)
}

func (e *PushRejectedError) Unwrap() error {
	return e.Err
}
