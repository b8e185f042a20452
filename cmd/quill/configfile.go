package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/quill"
	"github.com/phanxgames/quill/config"
)

// loadConfig resolves the --config flag and returns the decoded config, or
// the defaults when no file is found.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	explicit, _ := cmd.Flags().GetString("config")
	cwd, err := os.Getwd()
	if err != nil {
		return config.Config{}, err
	}
	userDir, _ := os.UserConfigDir()

	path, found, err := config.Discover(explicit, cwd, userDir)
	if err != nil {
		return config.Config{}, err
	}
	if !found {
		quill.Logger().Debug("no config file, using defaults")
		return config.Default(), nil
	}
	quill.Logger().Debug("loading config", slog.String("path", path))
	return config.Load(path)
}
