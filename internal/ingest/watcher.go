package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/docuvault/constants"
)

// WatchConfig configures inbox watching. Roots are watched recursively;
// new subdirectories are picked up as they appear.
type WatchConfig struct {
	Roots       []string
	Extensions  []string      // allowed extensions; defaults to constants.DefaultExtensions
	InitialScan bool          // emit files already present under the roots
	Debounce    time.Duration // coalesce write bursts from slow copies
}

// StartWatcher emits candidate document paths as they land in the
// watched directories. The channel closes when ctx is cancelled.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no watch roots provided")
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = constants.DefaultExtensions
	}
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[constants.NormalizeExt(e)] = true
	}

	pathCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	addRoot := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && isCandidate(path, allowed) {
				select {
				case pathCh <- path:
				default:
				}
			}
			return nil
		})
	}
	for _, root := range cfg.Roots {
		if err := addRoot(root); err != nil {
			_ = w.Close()
			return nil, nil, err
		}
	}

	go func() {
		defer close(pathCh)
		defer close(errCh)
		defer w.Close()

		var timer *time.Timer
		pending := map[string]struct{}{}

		flush := func() {
			for p := range pending {
				select {
				case pathCh <- p:
				default:
				}
				delete(pending, p)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-w.Events:
				if ev.Op&fsnotify.Create != 0 {
					// New directories start getting watched too; Add on a
					// plain file is a harmless no-op failure.
					_ = w.Add(ev.Name)
				}
				if isCandidate(ev.Name, allowed) && ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					pending[ev.Name] = struct{}{}
					if cfg.Debounce > 0 {
						if timer != nil {
							timer.Stop()
						}
						timer = time.AfterFunc(cfg.Debounce, flush)
					} else {
						flush()
					}
				}
			case err := <-w.Errors:
				logger.Error("ingest.watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	logger.Info("ingest.watch.started", "roots", strings.Join(cfg.Roots, ","))
	return pathCh, errCh, nil
}

func isCandidate(path string, allowed map[string]bool) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return allowed[constants.NormalizeExt(filepath.Ext(path))]
}
