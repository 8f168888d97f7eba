// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch converts dumps as they appear in a directory, for example an
// SD card the dumper writes to.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/pdiddy/sram-convert/internal/convert"
	"github.com/pdiddy/sram-convert/pkg/types"
)

const (
	defaultSettle = 750 * time.Millisecond
	minTick       = 10 * time.Millisecond
)

// DefaultExtensions are the dump extensions DreamDumper64 writes.
var DefaultExtensions = []string{".ram", ".fla"}

// Watcher waits for dump files in one directory to stop changing and then
// converts them. Existing saves are never overwritten and size mismatches are
// declined unless the conversion options force them.
type Watcher struct {
	dir     string
	settle  time.Duration
	exts    map[string]bool
	opts    convert.Options
	out     io.Writer
	log     *zerolog.Logger
	pending map[string]time.Time

	// OnResult, when set, is called after each conversion attempt.
	OnResult func(types.ConversionResult)
}

// New returns a watcher for cfg.Dir. Status lines are written to out.
func New(cfg types.WatchConfig, opts convert.Options, out io.Writer) *Watcher {
	settle := cfg.Settle
	if settle <= 0 {
		settle = defaultSettle
	}
	extList := cfg.Extensions
	if len(extList) == 0 {
		extList = DefaultExtensions
	}
	exts := make(map[string]bool, len(extList))
	for _, e := range extList {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}

	opts.SkipExisting = true
	if !opts.Force {
		opts.Confirmer = convert.NeverConfirm
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "watch").Logger()
	}

	return &Watcher{
		dir:     cfg.Dir,
		settle:  settle,
		exts:    exts,
		opts:    opts,
		out:     out,
		log:     &log,
		pending: make(map[string]time.Time),
	}
}

// Run converts dumps already in the directory, then watches for new or
// rewritten ones until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	if err := w.scan(time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "watching %s for %s files\n", w.dir, strings.Join(w.extensions(), ", "))

	tick := w.settle / 2
	if tick < minTick {
		tick = minTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			w.log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("dump changed")
			w.note(event.Name, time.Now())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("watch error")

		case now := <-ticker.C:
			for _, path := range w.due(now) {
				w.process(ctx, path)
			}
		}
	}
}

// scan queues dumps that are already present.
func (w *Watcher) scan(now time.Time) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		if w.matches(path) {
			w.note(path, now)
		}
	}
	return nil
}

// matches reports whether path has a dump extension. Hidden files, such as
// the "._" resource forks macOS leaves on SD cards, are ignored.
func (w *Watcher) matches(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return w.exts[strings.ToLower(filepath.Ext(base))]
}

// note records a change to path, restarting its settle period.
func (w *Watcher) note(path string, at time.Time) {
	w.pending[path] = at
}

// due removes and returns, in name order, the paths that have not changed
// for at least the settle period.
func (w *Watcher) due(now time.Time) []string {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	for _, path := range ready {
		delete(w.pending, path)
	}
	return ready
}

func (w *Watcher) process(ctx context.Context, path string) {
	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		return
	}
	result, err := convert.ConvertFile(ctx, convert.Request{Input: path}, w.opts, w.out)
	if err != nil {
		w.log.Warn().Err(err).Str("input", path).Msg("conversion failed")
	}
	if w.OnResult != nil {
		w.OnResult(result)
	}
}

func (w *Watcher) extensions() []string {
	out := make([]string, 0, len(w.exts))
	for e := range w.exts {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
