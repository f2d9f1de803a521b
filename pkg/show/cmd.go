package show

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/testwell-ci/testpages/internal/resultset"
)

type cmdInput struct {
	port      int
	timestamp string
}

func NewCmdShow() *cobra.Command {
	input := cmdInput{}
	cmd := &cobra.Command{
		Use:   "show repository",
		Short: "Preview local test results in a browser",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rs, err := resultset.Locate(viper.GetString("logs-dir"), args[0], input.timestamp)
			if err != nil {
				log.Errorf("no test runs found for %q: %v", args[0], err)
				os.Exit(1)
			}
			log.Infof("Found: %s", rs.Dir)

			if err := RenderAll(rs); err != nil {
				log.Error(err)
				os.Exit(1)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := Serve(ctx, rs, input.port); err != nil {
				log.Error(err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().IntVar(&input.port, "port", 8001, "port to serve on")
	cmd.Flags().StringVar(&input.timestamp, "timestamp", "", "serve a specific run instead of the latest (HHMM)")
	return cmd
}
