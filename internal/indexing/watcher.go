package indexing

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher feeds a Driver from live filesystem change notifications, an
// optional supplement to the one-shot StartIndexing walk. It never
// reads file contents, only reacts to create/write/remove/rename
// events on paths.
type Watcher struct {
	driver           *Driver
	fsw              *fsnotify.Watcher
	excludedPatterns []string
	debounce         time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	events map[string]fsnotify.Op
	timer  *time.Timer
}

// NewWatcher returns a Watcher that feeds driver, debouncing bursts of
// events for debounce before flushing them as a batch.
func NewWatcher(driver *Driver, excludedPatterns []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		driver:           driver,
		fsw:              fsw,
		excludedPatterns: excludedPatterns,
		debounce:         debounce,
		events:           make(map[string]fsnotify.Op),
	}, nil
}

// Start begins watching root and every directory beneath it, skipping
// symlinks (as DefaultWalker does) and any directory that matches an
// excluded pattern.
func (w *Watcher) Start(root string) error {
	w.ctx, w.cancel = context.WithCancel(context.Background())

	if err := w.addWatches(root); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop tears down the fsnotify watcher and waits for the event loop to
// exit.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) addWatches(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if isExcluded(path, w.excludedPatterns) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			log.Printf("pathfind: failed to watch %s: %v", path, err)
		}
		return nil
	})
}

// loop drains fsnotify events into the debounce map and arms/resets a
// single timer per burst.
func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.addEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("pathfind: watcher error: %v", err)
		}
	}
}

func (w *Watcher) addEvent(ev fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events[ev.Name] = ev.Op
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// flush applies the debounced batch to the driver. Each path is handled
// once, by the last op seen for it: a remove or rename event, or a path
// that no longer stats, removes it; any other event (re)adds it. Paths
// are processed in map order.
func (w *Watcher) flush() {
	w.mu.Lock()
	events := w.events
	w.events = make(map[string]fsnotify.Op)
	w.mu.Unlock()

	for path, op := range events {
		if op&fsnotify.Remove != 0 || op&fsnotify.Rename != 0 {
			w.driver.RemovePath(path)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			w.driver.RemovePath(path)
			continue
		}
		w.driver.AddPath(path, w.excludedPatterns)
	}
}
