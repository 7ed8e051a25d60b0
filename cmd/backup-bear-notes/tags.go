// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/cooperwalter/backup-bear-notes/internal/beardb"
	"github.com/cooperwalter/backup-bear-notes/pkg/types"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the tags in the Bear database",
	Long: `tags lists every tag in the Bear database together with the number of notes
carrying it. Notes in Bear's trash are not counted.`,
	RunE: runTags,
}

func init() {
	tagsCmd.Flags().String("format", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(tagsCmd)
}

// tagCount is one row of the tags listing.
type tagCount struct {
	Tag   string `json:"tag" yaml:"tag"`
	Notes int    `json:"notes" yaml:"notes"`
}

func runTags(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("database")
	if dbPath == "" {
		dbPath = beardb.DefaultPath()
	}

	db, err := beardb.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	notes, err := db.Notes(context.Background())
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return formatTagsOutput(countTags(notes), format)
}

// countTags tallies notes per tag. Untagged and trashed notes do not count.
func countTags(notes []types.NoteRecord) []tagCount {
	byTag := make(map[string]int)
	for _, n := range notes {
		if n.Trashed || n.Tag == "" {
			continue
		}
		byTag[n.Tag]++
	}

	counts := make([]tagCount, 0, len(byTag))
	for tag, n := range byTag {
		counts = append(counts, tagCount{Tag: tag, Notes: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Tag < counts[j].Tag })
	return counts
}

func formatTagsOutput(counts []tagCount, format string) error {
	switch format {
	case "table", "":
		if len(counts) == 0 {
			fmt.Println("No tags found.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "%-40s  %s\n", "Tag", "Notes")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 48))
		for _, c := range counts {
			fmt.Fprintf(os.Stdout, "%-40s  %d\n", c.Tag, c.Notes)
		}
		fmt.Fprintf(os.Stdout, "\n%d tags\n", len(counts))
		return nil
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(counts)
	case "yaml":
		data, err := yaml.Marshal(counts)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
	}
}
