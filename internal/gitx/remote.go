package gitx

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// OwnerRepo identifies a GitHub repository.
type OwnerRepo struct {
	Owner string
	Repo  string
}

// Slug returns the owner/name form used by the hosting API.
func (o OwnerRepo) Slug() string {
	return o.Owner + "/" + o.Repo
}

// PagesURL returns the public URL the published store is served from.
func (o OwnerRepo) PagesURL() string {
	return fmt.Sprintf("https://%s.github.io/%s/", o.Owner, o.Repo)
}

// ParseOwnerRepo extracts the owner and repository name from an origin
// URL in either SSH (git@github.com:owner/repo.git) or HTTPS
// (https://github.com/owner/repo) form.
func ParseOwnerRepo(remoteURL string) (OwnerRepo, error) {
	var path string
	switch {
	case strings.HasPrefix(remoteURL, "git@github.com:"):
		path = strings.TrimPrefix(remoteURL, "git@github.com:")
	case strings.HasPrefix(remoteURL, "https://github.com/"):
		path = strings.TrimPrefix(remoteURL, "https://github.com/")
	default:
		return OwnerRepo{}, errors.Errorf("unsupported remote url %q", remoteURL)
	}
	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return OwnerRepo{}, errors.Errorf("cannot parse owner/repo from %q", remoteURL)
	}
	return OwnerRepo{Owner: parts[0], Repo: parts[1]}, nil
}
