package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/shahar-caura/plantid/internal/config"
)

type commandContext struct {
	configFlag *string
	logger     *slog.Logger

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

// ensureConfig loads env files and the config once per invocation. A missing
// plantid.yaml falls back to defaults; a missing --config file is an error.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		config.LoadEnvFiles(c.logger)

		path := strings.TrimSpace(*c.configFlag)
		explicit := path != ""
		if !explicit {
			path = config.DefaultPath
		}
		c.config, c.configErr = config.LoadOrDefault(path, explicit)
	})
	return c.config, c.configErr
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var configFlag string
	var verbose bool

	cc := &commandContext{configFlag: &configFlag, logger: logger}

	root := &cobra.Command{
		Use:           "plantid",
		Short:         "Identify plants from photos using the classification service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				level.Set(slog.LevelDebug)
			}
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := cc.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "configuration file (default "+config.DefaultPath+")")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(cc, logger),
		newIdentifyCmd(cc, logger),
		newTestLocalCmd(cc, logger),
		newWatchCmd(cc, logger),
		newModelInfoCmd(cc, logger),
		newCompletionCmd(),
	)

	return root
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd, "help":
		return true
	}
	return false
}
