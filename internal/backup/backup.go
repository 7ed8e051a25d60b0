// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backup exports a Bear database snapshot to a directory of
// markdown files with a flattened assets directory.
//
// A run is all-or-nothing: every note is processed concurrently, the run
// joins on all of them, and the first unrecovered error fails the whole
// run. Work that already completed is left in place; there is no rollback
// and no retry. Two absences are recovered and reported as progress lines
// instead: removing a trashed note that was never exported, and copying an
// attachment whose source file is gone.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/cooperwalter/backup-bear-notes/internal/dedup"
	"github.com/cooperwalter/backup-bear-notes/internal/filename"
	"github.com/cooperwalter/backup-bear-notes/internal/rewrite"
	"github.com/cooperwalter/backup-bear-notes/pkg/types"
)

const (
	// assetsDirName is the subdirectory of the output root that receives
	// copied attachments.
	assetsDirName = "assets"

	// noteImagesDir and noteFilesDir are Bear's two attachment stores
	// under the attachments root, split by extension.
	noteImagesDir = "Note Images"
	noteFilesDir  = "Note Files"
)

// imageExtensions lists the extensions Bear files under "Note Images";
// everything else lives under "Note Files".
var imageExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "heic": true,
	"webp": true, "tiff": true, "svg": true, "bmp": true,
}

// RowSource supplies the note and attachment rows for one run. A run
// calls Notes once, and Attachments once when attachment export is on.
type RowSource interface {
	Notes(ctx context.Context) ([]types.NoteRecord, error)
	Attachments(ctx context.Context) ([]types.AttachmentRecord, error)
}

// Runner exports Bear notes using an injected row source and filesystem.
// Production wires afero.NewOsFs(); tests run against afero.NewMemMapFs().
type Runner struct {
	src RowSource
	fs  afero.Fs
	cfg types.BackupConfig
}

// New returns a Runner over the given capabilities. Validation happens at
// the start of Run so a misconfigured Runner fails before any I/O.
func New(src RowSource, fs afero.Fs, cfg types.BackupConfig) *Runner {
	return &Runner{src: src, fs: fs, cfg: cfg}
}

// taskResult is what one per-note goroutine reports back to the collector.
type taskResult struct {
	lines   []string
	written bool
	removed bool
	copied  int
	err     error
}

// Run exports every note: trashed notes are removed from the output tree,
// all others are written with their attachment references rewritten, and
// attachments are copied into the assets directory once each. It returns
// one ProcessedNote per input row, trashed rows included. Progress lines
// go to w.
func (b *Runner) Run(ctx context.Context, w io.Writer) ([]types.ProcessedNote, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	out := b.cfg.OutputDir
	if err := b.fs.MkdirAll(out, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	withAssets := b.cfg.AttachmentsDir != ""
	assetsRoot := filepath.Join(out, assetsDirName)
	if withAssets {
		if err := b.fs.MkdirAll(assetsRoot, 0o755); err != nil {
			return nil, fmt.Errorf("creating assets directory: %w", err)
		}
	}

	notes, err := b.src.Notes(ctx)
	if err != nil {
		return nil, err
	}

	byNote := make(map[int64][]types.AttachmentRecord)
	if withAssets {
		attachments, err := b.src.Attachments(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range attachments {
			byNote[a.NoteID] = append(byNote[a.NoteID], a)
		}
	}

	processed := dedup.Assign(notes, out, b.cfg.GroupByTag)

	// Every destination directory must exist before the first write.
	if b.cfg.GroupByTag {
		if err := b.createDirs(destinationDirs(processed)); err != nil {
			return nil, err
		}
	}

	prefix := assetsDirName + "/"
	if b.cfg.GroupByTag {
		prefix = "../" + prefix
	}

	// Tasks are built synchronously in row order: the copied set decides
	// which task carries each attachment copy, so only the building loop
	// touches it.
	copied := make(map[string]bool)
	tasks := make([]func() taskResult, 0, len(processed))
	for _, note := range processed {
		dest := filepath.Join(note.DestinationDirectory, note.Filename)

		if note.Trashed {
			tasks = append(tasks, b.removeTask(dest))
			continue
		}

		var copies []assetCopy
		fileMap := make(map[string]string, len(byNote[note.ID]))
		for _, att := range byNote[note.ID] {
			if att.UUID == "" || att.Filename == "" {
				continue
			}
			name := filename.ForAsset(att.UUID, att.Filename)
			fileMap[att.Filename] = name
			if !copied[att.UUID] {
				copied[att.UUID] = true
				copies = append(copies, assetCopy{
					src: filepath.Join(b.cfg.AttachmentsDir, sourceFolder(att.Extension), att.UUID, att.Filename),
					dst: filepath.Join(assetsRoot, name),
				})
			}
		}
		tasks = append(tasks, b.writeTask(note, dest, fileMap, copies, prefix))
	}

	ch := make(chan taskResult, len(tasks))
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(task func() taskResult) {
			defer wg.Done()
			ch <- task()
		}(task)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	var firstErr error
	var written, removed, assets int
	for res := range ch {
		for _, line := range res.lines {
			fmt.Fprintln(w, line)
		}
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		if res.written {
			written++
		}
		if res.removed {
			removed++
		}
		assets += res.copied
	}
	if firstErr != nil {
		return nil, firstErr
	}

	fmt.Fprintf(w, "\nBackup summary: %d notes written, %d removed, %d assets copied\n",
		written, removed, assets)

	return processed, nil
}

func (b *Runner) validate() error {
	if b.src == nil {
		return errors.New("row source is not configured")
	}
	if b.fs == nil {
		return errors.New("filesystem is not configured")
	}
	if b.cfg.OutputDir == "" {
		return errors.New("output directory is not configured")
	}
	return nil
}

// destinationDirs returns the distinct destination directories in first-use
// order.
func destinationDirs(processed []types.ProcessedNote) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, p := range processed {
		if !seen[p.DestinationDirectory] {
			seen[p.DestinationDirectory] = true
			dirs = append(dirs, p.DestinationDirectory)
		}
	}
	return dirs
}

// createDirs makes every directory concurrently and joins before returning,
// so no note write can race a missing parent.
func (b *Runner) createDirs(dirs []string) error {
	ch := make(chan error, len(dirs))
	var wg sync.WaitGroup
	for _, dir := range dirs {
		wg.Add(1)
		go func(dir string) {
			defer wg.Done()
			if err := b.fs.MkdirAll(dir, 0o755); err != nil {
				ch <- fmt.Errorf("creating directory %s: %w", dir, err)
				return
			}
			ch <- nil
		}(dir)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	var firstErr error
	for err := range ch {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// assetCopy is one scheduled attachment copy.
type assetCopy struct {
	src string
	dst string
}

// removeTask deletes a trashed note's exported file. A file that was never
// exported is not an error.
func (b *Runner) removeTask(dest string) func() taskResult {
	return func() taskResult {
		if err := b.fs.Remove(dest); err != nil {
			if os.IsNotExist(err) {
				return taskResult{}
			}
			return taskResult{err: fmt.Errorf("removing trashed note %s: %w", dest, err)}
		}
		return taskResult{removed: true, lines: []string{"removed " + dest}}
	}
}

// writeTask copies the note's scheduled attachments, rewrites its text, and
// writes the file, stamping the note's modification time on it when Bear
// recorded one.
func (b *Runner) writeTask(note types.ProcessedNote, dest string, fileMap map[string]string, copies []assetCopy, prefix string) func() taskResult {
	return func() taskResult {
		var res taskResult
		for _, cp := range copies {
			ok, err := b.copyAsset(cp.src, cp.dst)
			if err != nil {
				res.err = err
				return res
			}
			if !ok {
				res.lines = append(res.lines, "missing attachment "+cp.src)
				continue
			}
			res.copied++
		}

		text := rewrite.References(note.Text, fileMap, prefix)
		if err := afero.WriteFile(b.fs, dest, []byte(text), 0o644); err != nil {
			res.err = fmt.Errorf("writing note %s: %w", dest, err)
			return res
		}

		if note.ModificationDate != nil {
			mt := types.TimeFromCoreData(*note.ModificationDate)
			if err := b.fs.Chtimes(dest, mt, mt); err != nil {
				res.err = fmt.Errorf("setting times on %s: %w", dest, err)
				return res
			}
		}

		res.written = true
		res.lines = append(res.lines, "exported "+dest)
		return res
	}
}

// copyAsset copies one attachment and reports whether the source existed.
func (b *Runner) copyAsset(src, dst string) (bool, error) {
	in, err := b.fs.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("opening attachment %s: %w", src, err)
	}
	defer in.Close()

	out, err := b.fs.Create(dst)
	if err != nil {
		return false, fmt.Errorf("creating asset %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return false, fmt.Errorf("copying attachment %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return false, fmt.Errorf("copying attachment %s: %w", src, err)
	}
	return true, nil
}

// sourceFolder picks Bear's storage folder for an attachment extension.
func sourceFolder(extension string) string {
	if imageExtensions[strings.ToLower(extension)] {
		return noteImagesDir
	}
	return noteFilesDir
}
