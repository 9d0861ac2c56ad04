// Package dropzone turns files landing in a directory into image selections.
// A file appearing is a drag-over, a file vanishing before it settles is a
// drag-leave, and a file whose writes have stopped is a drop.
package dropzone

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oapi-codegen/runtime/types"

	"github.com/shahar-caura/plantid/internal/plant"
)

// DefaultSettle is how long a file must stay unchanged before it is dropped.
const DefaultSettle = 500 * time.Millisecond

// Selector receives dropped files. It is the same entry point the web form
// and the CLI use.
type Selector interface {
	Select(file types.File) (*plant.SelectedImage, error)
}

// Hover shows or hides the drop target highlight.
type Hover interface {
	SetHover(on bool)
}

// Adapter watches a drop directory.
type Adapter struct {
	dir      string
	settle   time.Duration
	selector Selector
	hover    Hover
	onDrop   func(*plant.SelectedImage)
	logger   *slog.Logger
	ready    chan struct{}
}

// New returns an Adapter for dir. hover may be nil.
func New(dir string, settle time.Duration, selector Selector, hover Hover, logger *slog.Logger) *Adapter {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Adapter{
		dir:      dir,
		settle:   settle,
		selector: selector,
		hover:    hover,
		logger:   logger,
		ready:    make(chan struct{}),
	}
}

// OnDrop registers fn to run after each accepted drop. Call before Start.
func (a *Adapter) OnDrop(fn func(*plant.SelectedImage)) { a.onDrop = fn }

// Ready is closed once the directory is being watched.
func (a *Adapter) Ready() <-chan struct{} { return a.ready }

// Start watches the drop directory until ctx is cancelled.
func (a *Adapter) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("dropzone: creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("dropzone: creating %s: %w", a.dir, err)
	}
	if err := watcher.Add(a.dir); err != nil {
		return fmt.Errorf("dropzone: watching %s: %w", a.dir, err)
	}
	close(a.ready)
	a.logger.Info("watching drop directory", "dir", a.dir, "settle", a.settle)

	files := newDebouncer(a.settle, ctx.Done())
	defer files.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ignored(event.Name) {
				continue
			}
			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if files.touch(event.Name) && len(files.pending) == 1 {
					a.setHover(true)
				}
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if !files.cancel(event.Name) {
					continue
				}
				a.logger.Debug("drop abandoned", "file", event.Name)
				if files.empty() {
					a.setHover(false)
				}
			}

		case ev := <-files.events:
			if !files.settled(ev) {
				continue
			}
			if files.empty() {
				a.setHover(false)
			}
			a.drop(ev.name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("dropzone: watcher error", "error", err)
		}
	}
}

func (a *Adapter) drop(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		a.logger.Warn("reading dropped file", "file", path, "error", err)
		return
	}

	var file types.File
	file.InitFromBytes(data, filepath.Base(path))
	img, err := a.selector.Select(file)
	if err != nil {
		a.logger.Warn("dropped file rejected", "file", path, "error", err)
		return
	}
	a.logger.Info("file dropped", "file", path, "selection", img.ID)
	if a.onDrop != nil {
		a.onDrop(img)
	}
}

func (a *Adapter) setHover(on bool) {
	if a.hover != nil {
		a.hover.SetHover(on)
	}
}

// ignored reports whether name is a hidden or partially written file.
func ignored(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, ".part") ||
		strings.HasSuffix(base, ".tmp") ||
		strings.HasSuffix(base, "~")
}
