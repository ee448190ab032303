package sync

import (
	"log/slog"

	"github.com/rjeczalik/notify"
)

// Watcher emits an event whenever anything under the source root changes.
// The daemon uses it to trigger an extra pass between interval ticks;
// correctness never depends on it, since every pass rescans from scratch.
type Watcher struct {
	watchDir string
	events   chan notify.EventInfo
}

func NewWatcher(watchDir string) *Watcher {
	return &Watcher{
		watchDir: watchDir,
		// buffered so a burst of events doesn't block the kernel notifier
		events: make(chan notify.EventInfo, 64),
	}
}

func (w *Watcher) Start() error {
	slog.Info("watcher start", "dir", w.watchDir)

	// deletes and renames must retrigger a pass too, so watch everything
	recursivePath := w.watchDir + "/..."
	return notify.Watch(recursivePath, w.events, notify.All)
}

func (w *Watcher) Stop() {
	notify.Stop(w.events)
	close(w.events)
	slog.Info("watcher stop")
}

func (w *Watcher) Events() <-chan notify.EventInfo {
	return w.events
}
