package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	logwriter "github.com/sirupsen/logrus/hooks/writer"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/testwell-ci/testpages/pkg/publish"
	"github.com/testwell-ci/testpages/pkg/show"
	"github.com/testwell-ci/testpages/pkg/status"
	"github.com/testwell-ci/testpages/pkg/version"
)

const logFile = "testpages.log"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "testpages",
	Short: "Cross-platform test report publisher",
	Long: `testpages publishes per-platform test reports into a repository's
gh-pages branch and reads back pass/fail status across repositories
without re-running the suites`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Validate logging level
		loglevel := viper.GetString("log-level")
		logrusLevel, err := log.ParseLevel(loglevel)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)

		log.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})

		log.SetOutput(os.Stdout)
		fdLog, err := os.OpenFile(logFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			log.Errorf("error opening file %s: %v", logFile, err)
		} else {
			log.AddHook(&logwriter.Hook{
				Writer: fdLog,
				LogLevels: []log.Level{
					log.PanicLevel,
					log.FatalLevel,
					log.ErrorLevel,
					log.WarnLevel,
					log.InfoLevel,
					log.DebugLevel,
				},
			})
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func initBindFlag(flag string) {
	err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag))
	if err != nil {
		log.Warnf("Unable to bind flag %s\n", flag)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	home, _ := os.UserHomeDir()
	rootCmd.PersistentFlags().String("log-level", "info", "logging level")
	rootCmd.PersistentFlags().String("logs-dir", filepath.Join(home, "logs"), "root directory holding local test run output")
	rootCmd.PersistentFlags().String("repos-dir", filepath.Join(home, "all_repos"), "directory holding local repository clones")
	rootCmd.PersistentFlags().String("pages-branch", "gh-pages", "branch used as the persistent report store")
	initBindFlag("log-level")
	initBindFlag("logs-dir")
	initBindFlag("repos-dir")
	initBindFlag("pages-branch")

	viper.SetDefault("branches", []string{"dev", "main"})

	// Link in child commands
	rootCmd.AddCommand(publish.NewCmdPublish())
	rootCmd.AddCommand(status.NewCmdStatus())
	rootCmd.AddCommand(show.NewCmdShow())
	rootCmd.AddCommand(version.NewCmdVersion())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.AutomaticEnv() // read in environment variables that match
}
