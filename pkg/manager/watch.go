package manager

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// configChangedMsg is emitted when the watched config file is written,
// created, renamed or removed.
type configChangedMsg struct {
	path string
}

// watchErrMsg carries a watcher error; the watch keeps running.
type watchErrMsg struct {
	err error
}

// ConfigWatcher reports changes to one config file. The parent directory is
// watched rather than the file itself so editors that save by rename are
// still seen.
type ConfigWatcher struct {
	w    *fsnotify.Watcher
	path string
}

// NewConfigWatcher starts watching the directory holding path.
func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	clean := filepath.Clean(path)
	if err := w.Add(filepath.Dir(clean)); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &ConfigWatcher{w: w, path: clean}, nil
}

// Path returns the watched file.
func (cw *ConfigWatcher) Path() string { return cw.path }

// Next returns a command that blocks until the config file changes. It
// returns after each event; the caller re-arms it by issuing Next again.
func (cw *ConfigWatcher) Next() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-cw.w.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != cw.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					return configChangedMsg{path: cw.path}
				}
			case err, ok := <-cw.w.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

// Close stops the watcher. Pending Next commands return nil.
func (cw *ConfigWatcher) Close() error {
	if cw == nil || cw.w == nil {
		return nil
	}
	return cw.w.Close()
}
