// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the gourmet-finder CLI and HTTP
// server.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/gourmet-finder/internal/logger"
	"github.com/pdiddy/gourmet-finder/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds the credentials read from .secrets/ at startup.
var loadedSecrets secrets.Credentials

// rootCmd is the base command for the gourmet-finder CLI.
var rootCmd = &cobra.Command{
	Use:   "gourmet-finder",
	Short: "Find restaurants near a location",
	Long: `gourmet-finder searches the Hot Pepper Gourmet directory for restaurants
around a latitude/longitude.

The search command returns one page of results for list views. The map
command retrieves every match in one pass, splitting the work into
provider-sized pages fetched concurrently. The serve command exposes both
over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		boot, err := logger.New(viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return err
		}
		defer func() { _ = boot.Sync() }()

		creds, err := secrets.Load(secrets.DefaultDir, boot)
		if err != nil {
			return err
		}
		loadedSecrets = creds
		if files := creds.Files(); len(files) > 0 {
			boot.Debug("loaded secrets", zap.Strings("files", files))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./gourmet-finder.yaml or ~/.config/gourmet-finder/gourmet-finder.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides log.level)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: json or console (overrides log.format)")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: could not load .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gourmet-finder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "gourmet-finder"))
		}
	}

	viper.SetEnvPrefix("GOURMET_FINDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	bindConfigKeys(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
