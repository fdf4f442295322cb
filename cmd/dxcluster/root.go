package main

import (
	"fmt"
	"io"
	"log/slog"

	"dxcluster/internal/cluster"
	"dxcluster/internal/config"
	"dxcluster/internal/logging"
	"dxcluster/internal/telnet"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dxcluster",
		Short: "Terminal client for DX cluster servers",
		Long: `dxcluster connects to DX cluster servers over telnet, performs the
optional login and password exchange, and shows the spots the cluster sends.

Without a subcommand it starts the interactive terminal UI. Connection
profiles can be saved as bookmarks and reused later.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "settings file (default $XDG_CONFIG_HOME/dxcluster/config.yaml)")

	cmd.AddCommand(newTUICmd(opts))
	cmd.AddCommand(newConnectCmd(opts))
	cmd.AddCommand(newBookmarksCmd(opts))
	return cmd
}

// runtime is what every subcommand needs: settings, a logger writing to the
// log file and the bookmark store.
type runtime struct {
	settings *config.Settings
	logger   *slog.Logger
	closer   io.Closer
	store    *config.BookmarkStore
}

func loadRuntime(opts *rootOptions) (*runtime, error) {
	settings, err := config.LoadSettings(opts.configPath)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(logging.Options{
		Level: settings.LogLevel,
		File:  settings.LogFilePath(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.Debug("settings loaded", "path", settings.Path(), "charset", settings.Charset)

	return &runtime{
		settings: settings,
		logger:   logger,
		closer:   closer,
		store:    config.NewBookmarkStore(settings.BookmarksPath(), logger),
	}, nil
}

func (r *runtime) Close() {
	if err := r.closer.Close(); err != nil {
		r.logger.Debug("closing log file", "error", err)
	}
}

func (r *runtime) telnetOptions() telnet.Options {
	return telnet.Options{
		DialTimeout:   r.settings.DialTimeout(),
		PromptTimeout: r.settings.PromptTimeout(),
		WriteTimeout:  r.settings.WriteTimeout(),
		Charset:       r.settings.Charset,
		Logger:        r.logger,
	}
}

func (r *runtime) newController(listener cluster.Listener) *cluster.Controller {
	return cluster.New(cluster.TelnetOpener(r.telnetOptions()), r.store, listener, cluster.Options{
		PollInterval: r.settings.PollInterval(),
		Logger:       r.logger,
	})
}
