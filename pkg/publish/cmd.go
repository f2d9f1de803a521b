package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cmdInput struct {
	timestamp string
	force     bool
	push      bool
}

func NewCmdPublish() *cobra.Command {
	input := cmdInput{}
	cmd := &cobra.Command{
		Use:   "publish repository",
		Short: "Publish local test results to the pages branch",
		Long: `Merges the most recent local test run into the repository's pages
branch, preserving results already published for other platforms and
branches, then regenerates the report indexes and pushes`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			repoName := args[0]
			repoDir, err := findRepo(viper.GetString("repos-dir"), repoName)
			if err != nil {
				log.Error(err)
				os.Exit(1)
			}
			log.Infof("Repo: %s", repoDir)

			p := NewPublisher(&Options{
				RepoName:    repoName,
				RepoDir:     repoDir,
				LogsDir:     viper.GetString("logs-dir"),
				PagesBranch: viper.GetString("pages-branch"),
				Timestamp:   input.timestamp,
				Force:       input.force,
				Push:        input.push,
			})

			if _, err := p.Publish(cmd.Context()); err != nil {
				var dirty *DirtyTreeError
				if errors.As(err, &dirty) {
					log.Error("Uncommitted changes detected:")
					for _, p := range dirty.Paths {
						log.Error("  " + p)
					}
					log.Error("Commit changes first, or use --force to skip this check")
				} else {
					log.Error(err)
				}
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&input.force, "force", false, "skip the uncommitted changes check")
	cmd.Flags().BoolVar(&input.push, "push", true, "push the pages branch to origin after committing")
	cmd.Flags().StringVar(&input.timestamp, "timestamp", "", "publish a specific run instead of the latest (HHMM)")
	return cmd
}

// findRepo resolves the local clone for a repository name, matching
// directory names case-insensitively.
func findRepo(reposDir, name string) (string, error) {
	direct := filepath.Join(reposDir, name)
	if info, err := os.Stat(direct); err == nil && info.IsDir() {
		return direct, nil
	}
	entries, err := os.ReadDir(reposDir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), name) {
			return filepath.Join(reposDir, entry.Name()), nil
		}
	}
	return "", pkgerrors.Errorf("repository %s not found under %s", name, reposDir)
}
