package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/muralfolio/internal/client"
	"github.com/jo-hoe/muralfolio/internal/core"
)

type globalOptions struct {
	apiURL     string
	token      string
	configPath string
	verbose    bool
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func defaultConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(cwd, "config.yaml")
}

func (o *globalOptions) client() *client.Client {
	return client.New(o.apiURL, client.WithToken(o.token))
}

func (o *globalOptions) loadConfig() (*core.ServiceConfig, error) {
	return core.LoadConfig(o.configPath)
}

func newRootCmd() *cobra.Command {
	options := &globalOptions{}

	root := &cobra.Command{
		Use:           "muralctl",
		Short:         "Command line companion for the muralfolio service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if options.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&options.apiURL, "api", envOr("MURALCTL_API", "http://localhost:8080"), "base URL of the muralfolio service")
	flags.StringVar(&options.token, "token", os.Getenv("MURALCTL_TOKEN"), "bearer token for admin endpoints")
	flags.StringVar(&options.configPath, "config", defaultConfigPath(), "service config file used by card and token commands")
	flags.BoolVarP(&options.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newMuralsCmd(options),
		newSubmitCmd(options),
		newContactCmd(options),
		newQRCmd(options),
		newVCardCmd(options),
		newTokenCmd(options),
	)
	return root
}
