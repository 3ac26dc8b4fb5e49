package cube

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// shaderWatcher reports writes to the shader files. It never touches the driver; the
// session polls changed on the loop goroutine.
type shaderWatcher struct {
	w       *fsnotify.Watcher
	names   map[string]bool
	changes chan struct{}
	done    chan struct{}
	log     *slog.Logger
}

// watchShaders watches the directories holding paths so editors that save by rename are
// picked up too.
func watchShaders(log *slog.Logger, paths ...string) (*shaderWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader watcher: %w", err)
	}
	sw := &shaderWatcher{
		w:       fw,
		names:   make(map[string]bool, len(paths)),
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     log,
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("shader watcher: %w", err)
		}
		sw.names[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %q: %w", dir, err)
		}
	}
	go sw.run()
	return sw, nil
}

func (sw *shaderWatcher) run() {
	defer close(sw.done)
	for {
		select {
		case ev, ok := <-sw.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 || !sw.names[filepath.Clean(ev.Name)] {
				continue
			}
			sw.log.Debug("shader changed", "path", ev.Name, "op", ev.Op.String())
			// Coalesce bursts: one pending reload is enough.
			select {
			case sw.changes <- struct{}{}:
			default:
			}
		case err, ok := <-sw.w.Errors:
			if !ok {
				return
			}
			sw.log.Warn("shader watcher", "err", err)
		}
	}
}

// changed reports whether a shader file was written since the last call.
func (sw *shaderWatcher) changed() bool {
	select {
	case <-sw.changes:
		return true
	default:
		return false
	}
}

func (sw *shaderWatcher) Close() error {
	err := sw.w.Close()
	<-sw.done
	return err
}
