package corpus

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads the knowledge files when they change on disk.
type Watcher struct {
	loader   *Loader
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	logger   zerolog.Logger
	debounce time.Duration
}

// NewWatcher watches the directories holding the loader's files. Directories
// are watched instead of files so editors that replace files on save are seen.
func NewWatcher(loader *Loader, logger zerolog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	files := make(map[string]struct{})
	dirs := make(map[string]struct{})
	for _, p := range loader.Paths() {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, err
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}
	return &Watcher{
		loader:   loader,
		watcher:  w,
		files:    files,
		logger:   logger.With().Str("component", "corpus_watcher").Logger(),
		debounce: defaultDebounce,
	}, nil
}

// Run blocks until ctx is done, calling apply with every successfully
// reloaded snapshot. A failed reload keeps the previous snapshot.
func (w *Watcher) Run(ctx context.Context, apply func(*Knowledge)) {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			k, err := w.loader.Load()
			if err != nil {
				w.logger.Error().Err(err).Msg("knowledge reload failed; keeping previous snapshot")
				continue
			}
			w.logger.Info().Int("faq_entries", len(k.FAQ)).Bool("tree", k.HasTree()).Msg("knowledge reloaded")
			apply(k)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}
