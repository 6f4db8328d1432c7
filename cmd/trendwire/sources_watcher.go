package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/NullMeDev/trendwire/pkg/sources"
)

// SourcesWatcher reloads the source registry when sources.yml changes
type SourcesWatcher struct {
	path          string
	checkInterval time.Duration
	lastModified  time.Time
	registry      *sources.Registry
	watcher       *fsnotify.Watcher
	mutex         sync.Mutex
	onReload      func([]sources.Source)
	stop          chan struct{}
	stopOnce      sync.Once
}

// NewSourcesWatcher watches the directory holding path
func NewSourcesWatcher(path string, registry *sources.Registry, checkInterval time.Duration) (*SourcesWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %v", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %v", dir, err)
	}

	var modTime time.Time
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
	}

	return &SourcesWatcher{
		path:          filepath.Clean(path),
		checkInterval: checkInterval,
		lastModified:  modTime,
		registry:      registry,
		watcher:       watcher,
		stop:          make(chan struct{}),
	}, nil
}

// SetReloadHandler sets the callback run after a successful reload
func (sw *SourcesWatcher) SetReloadHandler(handler func([]sources.Source)) {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	sw.onReload = handler
}

// StartWatching starts the event loop and the periodic check
func (sw *SourcesWatcher) StartWatching() {
	go sw.watchForChanges()
	if sw.checkInterval > 0 {
		go sw.periodicCheck()
	}
}

// Stop stops watching
func (sw *SourcesWatcher) Stop() {
	sw.stopOnce.Do(func() {
		close(sw.stop)
		sw.watcher.Close()
	})
}

func (sw *SourcesWatcher) watchForChanges() {
	defer RecoverFromPanic("sources-watcher")

	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) == sw.path && event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				sw.checkAndReload()
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			Logger().Warning("Error watching sources file: %v", err)

		case <-sw.stop:
			return
		}
	}
}

func (sw *SourcesWatcher) periodicCheck() {
	ticker := time.NewTicker(sw.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.checkAndReload()
		case <-sw.stop:
			return
		}
	}
}

// checkAndReload reloads the registry if the file changed since the last load.
// An invalid or empty file leaves the current registry in place.
func (sw *SourcesWatcher) checkAndReload() bool {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()

	info, err := os.Stat(sw.path)
	if err != nil {
		Logger().Warning("Error checking sources file: %v", err)
		return false
	}
	if !info.ModTime().After(sw.lastModified) {
		return false
	}

	list, err := sources.Load(sw.path)
	if err != nil {
		Logger().Error("Error reloading sources: %v", err)
		return false
	}
	if len(list) == 0 {
		Logger().Warning("Sources file %s is empty, keeping %d sources", sw.path, sw.registry.Len())
		return false
	}

	sw.lastModified = info.ModTime()
	sw.registry.Replace(list)
	Logger().Info("Sources reloaded: %d sources", len(list))

	if sw.onReload != nil {
		sw.onReload(list)
	}
	return true
}
