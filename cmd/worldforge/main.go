package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"worldforge/internal/config"
	"worldforge/internal/logging"
)

var (
	configPath string
	logLevel   string
	logCloser  io.Closer
)

func main() {
	logging.Preinit()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "worldforge",
		Short:             "Convert world-book text notation into importable world-book JSON",
		SilenceUsage:      true,
		PersistentPreRunE: initLogging,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Project config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	root.AddCommand(convertCmd())
	root.AddCommand(inspectCmd())
	root.AddCommand(guideCmd())
	root.AddCommand(initCmd())
	root.AddCommand(bookCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	return root
}

func initLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		// commands that need the config report the error themselves
		cfg = config.Default()
	}
	opts := logging.Options{Level: cfg.Log.Level, File: cfg.Log.File}
	if logLevel != "" {
		opts.Level = logLevel
	}
	closer, err := logging.Init(opts)
	if err != nil {
		return err
	}
	logCloser = closer
	return nil
}

func loadConfig() (*config.ProjectConfig, error) {
	return config.LoadOrDefault(configPath)
}
