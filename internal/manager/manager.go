package manager

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// AppManager supervises long-running watchers for the watch command.
type AppManager struct {
	mu    sync.Mutex
	stops []chan struct{}
	wg    sync.WaitGroup

	// RestartDelay is the pause before a watcher that returned or panicked
	// is started again.
	RestartDelay time.Duration
}

var Manage = &AppManager{RestartDelay: 2 * time.Second}

// StartWatcher runs f until StopAll is called, restarting it when it
// returns early or panics.
func (m *AppManager) StartWatcher(f func(stop <-chan struct{})) {
	stop := make(chan struct{})
	m.mu.Lock()
	m.stops = append(m.stops, stop)
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("Watcher panic: %v", r)
					}
				}()
				f(stop)
			}()

			select {
			case <-stop:
				return
			case <-time.After(m.RestartDelay):
				log.Println("Restarting watcher...")
			}
		}
	}()
}

// StopAll stops every watcher and waits for them to return.
func (m *AppManager) StopAll() {
	m.mu.Lock()
	stops := m.stops
	m.stops = nil
	m.mu.Unlock()

	for _, s := range stops {
		close(s)
	}
	m.wg.Wait()
}

// FileWatcher returns a watcher calling onChange once writes to path have
// settled for the debounce period. The parent directory is watched so
// editors that save by renaming a temp file are seen too.
func FileWatcher(path string, debounce time.Duration, onChange func()) func(stop <-chan struct{}) {
	return func(stop <-chan struct{}) {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Printf("Unable to create file watcher: %v", err)
			return
		}
		defer watcher.Close()

		abs, err := filepath.Abs(path)
		if err != nil {
			log.Printf("Unable to resolve %s: %v", path, err)
			return
		}
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			log.Printf("Unable to watch %s: %v", filepath.Dir(abs), err)
			return
		}

		var (
			timer *time.Timer
			fire  <-chan time.Time
		)
		for {
			select {
			case <-stop:
				if timer != nil {
					timer.Stop()
				}
				return
			case e, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != abs {
					continue
				}
				if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				if _, err := os.Stat(abs); err != nil {
					continue
				}
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("File watcher error: %v", err)
			}
		}
	}
}
