package editor

import (
	"sync"
	"time"
)

const (
	// HistoryLimit caps the snapshot sequence; the oldest entry is evicted
	// once the cap is exceeded.
	HistoryLimit = 50

	// SnapshotDebounce coalesces bursts of rapid edits (slider drags) into a
	// single snapshot taken after the last change.
	SnapshotDebounce = 300 * time.Millisecond
)

// Notifier surfaces recoverable failures to the user (toast-style).
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

type noopNotifier struct{}

func (noopNotifier) Info(string)  {}
func (noopNotifier) Error(string) {}

// History maintains a linear undo/redo stack of full-scene snapshots.
//
// All methods assume the session lock is held; the only self-locking path is
// the debounce timer callback, which acquires the shared lock itself. Record
// is modeled as a cancellable scheduled task: each new mutation cancels and
// reschedules the pending snapshot, so only a timer that runs to completion
// captures state.
type History struct {
	mu *sync.Mutex // the session lock, shared

	entries [][]byte
	index   int // current position; -1 when empty
	limit   int

	debounce time.Duration
	timer    *time.Timer
	gen      uint64 // invalidates in-flight timers on undo/redo/restore
	muted    bool

	scene        *Scene
	rebind       func(Object)
	afterRestore func()
	notify       Notifier
}

func newHistory(mu *sync.Mutex, scene *Scene, notify Notifier) *History {
	if notify == nil {
		notify = noopNotifier{}
	}
	return &History{
		mu:       mu,
		index:    -1,
		limit:    HistoryLimit,
		debounce: SnapshotDebounce,
		scene:    scene,
		notify:   notify,
	}
}

// record schedules a debounced snapshot. A newer edit within the window
// cancels and restarts the pending task. The generation bump also invalidates
// a task that already fired but is still waiting on the lock; Stop alone
// cannot reach it.
func (h *History) record() {
	if h.muted {
		return
	}
	if h.timer != nil {
		h.timer.Stop()
	}
	h.gen++
	gen := h.gen
	h.timer = time.AfterFunc(h.debounce, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.muted || gen != h.gen {
			return
		}
		h.snapshotNow()
	})
}

// snapshotNow captures and pushes a snapshot immediately.
func (h *History) snapshotNow() {
	data, err := encodeScene(h.scene)
	if err != nil {
		h.notify.Error("Failed to capture history snapshot")
		return
	}
	h.push(data)
}

// push appends a snapshot, discarding any redo branch past the current index
// and evicting the oldest entry beyond the cap.
func (h *History) push(snapshot []byte) {
	if h.index < len(h.entries)-1 {
		h.entries = h.entries[:h.index+1]
	}
	h.entries = append(h.entries, snapshot)
	if len(h.entries) > h.limit {
		h.entries = h.entries[1:]
	}
	h.index = len(h.entries) - 1
}

func (h *History) canUndo() bool { return h.index > 0 }
func (h *History) canRedo() bool { return h.index < len(h.entries)-1 }
func (h *History) length() int   { return len(h.entries) }

func (h *History) undo() bool {
	if !h.canUndo() {
		return false
	}
	if err := h.restore(h.entries[h.index-1]); err != nil {
		return false
	}
	h.index--
	return true
}

func (h *History) redo() bool {
	if !h.canRedo() {
		return false
	}
	if err := h.restore(h.entries[h.index+1]); err != nil {
		return false
	}
	h.index++
	return true
}

// restore replaces the live scene from a snapshot. Mutation recording is
// muted for the duration so the restore cannot generate a snapshot of its
// own, and per-object behavior is rebound since a full reload does not
// preserve it. A malformed snapshot is reported and leaves the index
// untouched.
func (h *History) restore(snapshot []byte) error {
	objects, err := decodeScene(snapshot)
	if err != nil {
		h.notify.Error("Could not restore this history state")
		return err
	}

	h.muted = true
	h.gen++ // cancel any in-flight debounce task
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}

	h.scene.Replace(objects)
	if h.rebind != nil {
		for _, o := range objects {
			h.rebind(o)
		}
	}
	if h.afterRestore != nil {
		h.afterRestore()
	}

	h.muted = false
	return nil
}
