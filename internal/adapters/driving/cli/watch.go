package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/polidigest/internal/adapters/driving/contract"
	"github.com/custodia-labs/polidigest/internal/core/ports/driving"
	"github.com/custodia-labs/polidigest/internal/logger"
)

const digestSuffix = ".digest.json"

var (
	watchDebounce time.Duration
	watchInitial  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Digest policy documents dropped into a directory",
	Long: `Watches a directory and analyses every supported document that is created
or changed in it. Each result is written next to the document as
<name>.digest.json.

Supported extensions: .txt, .md, .pdf, .docx, .html, .htm. PDF files need pdftotext.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before a changed file is analysed")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "also digest documents already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to open directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	dw := &digestWatcher{
		analysis: analysisService,
		out:      cmd.OutOrStdout(),
		debounce: watchDebounce,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if watchInitial {
		if err := dw.scan(ctx, dir); err != nil {
			return err
		}
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	return dw.run(ctx, w.Events, w.Errors)
}

// digestWatcher analyses documents as change events settle.
type digestWatcher struct {
	analysis driving.AnalysisService
	out      io.Writer
	debounce time.Duration
}

// run coalesces events per path and digests each path once its quiet period ends.
func (d *digestWatcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	pending := make(map[string]struct{})
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !watchable(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(d.debounce)
			} else {
				timer.Reset(d.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			sort.Strings(paths)
			for _, p := range paths {
				d.digestAndReport(ctx, p)
			}

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// scan digests the supported documents already present in dir.
func (d *digestWatcher) scan(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() || !watchable(path) {
			continue
		}
		d.digestAndReport(ctx, path)
	}
	return nil
}

func (d *digestWatcher) digestAndReport(ctx context.Context, path string) {
	out, err := d.digest(ctx, path)
	if err != nil {
		fmt.Fprintf(d.out, "%s: %v\n", path, err)
		return
	}
	fmt.Fprintf(d.out, "%s -> %s\n", path, out)
}

// digest analyses path and writes the validated result next to it.
// Failed analyses are written too, so the digest records why.
func (d *digestWatcher) digest(ctx context.Context, path string) (string, error) {
	raw, err := readDocument(nil, path, "")
	if err != nil {
		return "", err
	}

	result := d.analysis.Analyse(ctx, raw)
	data, err := contract.Marshal(result)
	if err != nil {
		return "", err
	}

	out := digestPath(path)
	if err := os.WriteFile(out, append(data, '\n'), 0o600); err != nil {
		return "", fmt.Errorf("failed to write digest: %w", err)
	}
	logger.Info("digested %s (success=%t)", path, result.Success)
	return out, nil
}

// digestPath maps "dir/policy.docx" to "dir/policy.digest.json".
func digestPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + digestSuffix
}

// watchable reports whether path is a document the watcher should digest.
func watchable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, digestSuffix) {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".txt", ".md", ".pdf", ".docx", ".html", ".htm":
		return true
	default:
		return false
	}
}
