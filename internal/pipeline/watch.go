package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// WatchOptions configures directory watching.
type WatchOptions struct {
	// Dir is the directory to watch, recursively.
	Dir string
	// InitialScan emits files already present under Dir before watching.
	InitialScan bool
	// Debounce coalesces rapid write bursts for the same file. Documents
	// are often written in several chunks; without a settle window the
	// parser would see half-written files.
	Debounce time.Duration
	Logger   zerolog.Logger
}

// Watch emits the path of every supported resume file created or written
// under the directory until the context is cancelled. Subdirectories
// created while watching are picked up. Both channels close when the
// watch ends.
func Watch(ctx context.Context, parser Parser, opts WatchOptions) (<-chan string, <-chan error, error) {
	if opts.Dir == "" {
		return nil, nil, fmt.Errorf("no directory to watch")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	paths := make(chan string, 64)
	errs := make(chan error, 1)

	err = filepath.WalkDir(opts.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != opts.Dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		if opts.InitialScan && parser.Supported(path) {
			select {
			case paths <- path:
			default:
			}
		}
		return nil
	})
	if err != nil {
		_ = watcher.Close()
		return nil, nil, fmt.Errorf("watching %s: %w", opts.Dir, err)
	}

	go watchLoop(ctx, watcher, parser, opts, paths, errs)
	return paths, errs, nil
}

// watchLoop owns the pending set; the debounce timer only signals, so no
// other goroutine touches it.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, parser Parser, opts WatchOptions, paths chan<- string, errs chan<- error) {
	defer close(paths)
	defer close(errs)
	defer func() { _ = watcher.Close() }()

	debounce := time.NewTimer(opts.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return

		case <-debounce.C:
			for p := range pending {
				select {
				case paths <- p:
				case <-ctx.Done():
					return
				}
				delete(pending, p)
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !strings.HasPrefix(filepath.Base(event.Name), ".") {
						if err := watcher.Add(event.Name); err != nil {
							opts.Logger.Warn().Str("path", event.Name).Err(err).Msg("failed to watch new directory")
						}
					}
					continue
				}
			}
			if !parser.Supported(event.Name) {
				continue
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			pending[event.Name] = struct{}{}
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(opts.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			opts.Logger.Error().Err(err).Msg("watcher error")
			select {
			case errs <- err:
			default:
			}
		}
	}
}
