// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/cooperwalter/backup-bear-notes/internal/backup"
	"github.com/cooperwalter/backup-bear-notes/internal/beardb"
	"github.com/cooperwalter/backup-bear-notes/pkg/types"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export every note to a markdown file",
	Long: `backup exports every note in the Bear database to a markdown file in the
output directory, named after the note's title. Attachments are copied into
an assets/ subdirectory and references inside the note text are rewritten to
point at the copies. Notes in Bear's trash have their exported files removed.

Settings can also come from the config file or from BACKUP_BEAR_NOTES_*
environment variables; flags win when both are set.`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().String("out", "backup", "directory to write markdown files into")
	backupCmd.Flags().Bool("group-by-tag", false, "write each note into a subdirectory named after its tag")
	backupCmd.Flags().Bool("attachments", true, "copy note attachments into <out>/assets")
	backupCmd.Flags().String("attachments-dir", "", "path to Bear's attachment storage (default: Bear's app container)")
	backupCmd.Flags().String("manifest", "", "write a YAML manifest of the exported notes to this file")
	backupCmd.Flags().Bool("watch", false, "keep running and re-export whenever the database changes")
	backupCmd.Flags().Duration("debounce", backup.DefaultDebounce, "quiet period after a database change before re-exporting")

	for _, key := range []string{"out", "group-by-tag", "attachments", "attachments-dir", "debounce"} {
		_ = viper.BindPFlag(key, backupCmd.Flags().Lookup(key))
	}

	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg := backupConfig()
	manifestPath, _ := cmd.Flags().GetString("manifest")

	run := func(ctx context.Context) error {
		return runExport(ctx, cfg, manifestPath)
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return backup.Watch(context.Background(), cfg.DatabasePath, viper.GetDuration("debounce"), os.Stdout, run)
	}
	return run(context.Background())
}

// backupConfig resolves the backup settings from flags, environment, and
// config file, falling back to Bear's standard locations for paths.
func backupConfig() types.BackupConfig {
	cfg := types.BackupConfig{
		DatabasePath: viper.GetString("database"),
		OutputDir:    viper.GetString("out"),
		GroupByTag:   viper.GetBool("group-by-tag"),
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = beardb.DefaultPath()
	}
	if viper.GetBool("attachments") {
		cfg.AttachmentsDir = viper.GetString("attachments-dir")
		if cfg.AttachmentsDir == "" {
			cfg.AttachmentsDir = beardb.DefaultAttachmentsPath()
		}
	}
	return cfg
}

// runExport performs one full export. The database is reopened on every run:
// under --watch the file being replaced out from under an open handle is
// exactly the case being watched for.
func runExport(ctx context.Context, cfg types.BackupConfig, manifestPath string) error {
	db, err := beardb.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	processed, err := backup.New(db, afero.NewOsFs(), cfg).Run(ctx, os.Stdout)
	if err != nil {
		return err
	}

	if manifestPath != "" {
		if err := writeManifest(manifestPath, processed); err != nil {
			return err
		}
		fmt.Printf("wrote manifest %s\n", manifestPath)
	}
	return nil
}

func writeManifest(path string, notes []types.ProcessedNote) error {
	data, err := yaml.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
