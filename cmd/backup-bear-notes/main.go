// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the backup-bear-notes CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the backup-bear-notes CLI.
var rootCmd = &cobra.Command{
	Use:   "backup-bear-notes",
	Short: "Export Bear notes to plain markdown files",
	Long: `backup-bear-notes reads the SQLite database of the Bear note-taking app and
writes every note out as a markdown file, with attachments copied into an
assets directory and note text rewritten to reference the copies.

Bear's database is opened read-only; the app can keep running while a backup
is taken. Run the backup once, or keep it running with --watch to re-export
whenever Bear writes to the database.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./backup-bear-notes.yaml or ~/.config/backup-bear-notes/config.yaml)")
	rootCmd.PersistentFlags().String("database", "", "path to Bear's database.sqlite (default: Bear's app container)")
	_ = viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("backup-bear-notes")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "backup-bear-notes"))
		}
	}

	viper.SetEnvPrefix("BACKUP_BEAR_NOTES")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
