package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change reports that a watched target was written, created or removed.
// Target is the path passed to Watch, not the file fsnotify saw.
type Change struct {
	Target string
}

// Watch streams changes to the given targets until ctx is cancelled. A
// target is either a file, whose parent directory is watched so editors that
// replace the file are noticed, or a directory, where any entry counts.
// Bursts within the debounce window coalesce into one Change per target.
// Callers should drain the channel; it is closed when ctx is done.
func Watch(ctx context.Context, debounce time.Duration, targets ...string) (<-chan Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create watcher: %w", err)
	}

	// dir -> targets it serves; "" file means the directory itself.
	files := make(map[string]map[string]string)
	for _, target := range targets {
		target = filepath.Clean(target)
		dir, name := filepath.Dir(target), filepath.Base(target)
		if info, err := os.Stat(target); err == nil && info.IsDir() {
			dir, name = target, ""
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("config: ensure %s: %w", dir, err)
		}
		if files[dir] == nil {
			if err := watcher.Add(dir); err != nil {
				_ = watcher.Close()
				return nil, fmt.Errorf("config: watch %s: %w", dir, err)
			}
			files[dir] = make(map[string]string)
		}
		files[dir][name] = target
	}

	changes := make(chan Change, 16)
	go func() {
		defer close(changes)
		defer watcher.Close()

		t := newThrottle(debounce, func(target string) {
			select {
			case changes <- Change{Target: target}:
			default:
			}
		})
		defer t.stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
					continue
				}
				byName := files[filepath.Dir(ev.Name)]
				if target, ok := byName[filepath.Base(ev.Name)]; ok {
					t.enqueue(target)
				}
				if target, ok := byName[""]; ok {
					t.enqueue(target)
				}
			}
		}
	}()
	return changes, nil
}

// throttle coalesces rapid notifications so a save that touches a file
// several times triggers one reload.
type throttle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	delay   time.Duration
	send    func(string)
}

func newThrottle(delay time.Duration, send func(string)) *throttle {
	return &throttle{delay: delay, send: send, pending: make(map[string]struct{})}
}

func (t *throttle) enqueue(target string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[target] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, t.flush)
	}
}

func (t *throttle) flush() {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	for target := range pending {
		t.send(target)
	}
}

func (t *throttle) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
