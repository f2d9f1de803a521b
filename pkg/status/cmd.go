package status

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/testwell-ci/testpages/internal/pagesapi"
)

type cmdInput struct {
	xlsxPath    string
	concurrency int
}

func NewCmdStatus() *cobra.Command {
	input := cmdInput{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show published test results across all repositories",
		Long: `Reads results.json for every published branch/platform combination
from each repository's pages branch and prints pass/fail state plus
whether the result matches the current local HEAD`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()

			refs := DiscoverRepos(ctx, viper.GetString("repos-dir"))
			if len(refs) == 0 {
				log.Warnf("no repositories found under %s", viper.GetString("repos-dir"))
				return
			}
			log.Infof("Checking %d repositories...", len(refs))

			reader := pagesapi.NewReader(ctx, os.Getenv("GITHUB_TOKEN"), viper.GetString("pages-branch"))
			branches := viper.GetStringSlice("branches")
			results := Collect(ctx, reader, refs, branches, input.concurrency)

			PrintTable(os.Stdout, results, branches)

			if input.xlsxPath != "" {
				if err := WriteXLSX(input.xlsxPath, results); err != nil {
					log.Warnf("xlsx export: %v", err)
				} else {
					log.Infof("Saved %s", input.xlsxPath)
				}
			}
		},
	}

	cmd.Flags().StringVar(&input.xlsxPath, "xlsx", "", "also export the status table to an xlsx workbook")
	cmd.Flags().IntVar(&input.concurrency, "concurrency", DefaultConcurrency, "parallel repository reads")
	return cmd
}
