package doc2pdf

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Worklist is the ordered queue of items a run drains from the front.
// It is safe for concurrent use so a UI can render snapshots while a
// run is in progress.
type Worklist struct {
	mu    sync.Mutex
	items []WorkItem
}

// NewWorklist builds a worklist from paths. See Add for ordering rules.
func NewWorklist(paths ...string) (*Worklist, error) {
	wl := &Worklist{}
	if err := wl.Add(paths...); err != nil {
		return wl, err
	}
	return wl, nil
}

// Add normalizes paths, ignores ones already queued, and re-sorts the whole
// list by base name (case-insensitive). Unsupported paths are skipped and
// reported together in the returned error; supported ones are still added.
func (w *Worklist) Add(paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]bool, len(w.items)+len(paths))
	for _, it := range w.items {
		seen[it.Path] = true
	}

	var errs []error
	for _, p := range paths {
		item, err := NewWorkItem(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[item.Path] {
			continue
		}
		seen[item.Path] = true
		w.items = append(w.items, item)
	}

	sort.SliceStable(w.items, func(i, j int) bool {
		return strings.ToLower(filepath.Base(w.items[i].Path)) < strings.ToLower(filepath.Base(w.items[j].Path))
	})

	return errors.Join(errs...)
}

// Append adds items at the end without re-sorting. Duplicates are ignored.
func (w *Worklist) Append(items ...WorkItem) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, it := range items {
		if w.indexLocked(it.Path) >= 0 {
			continue
		}
		w.items = append(w.items, it)
	}
}

// MoveUp swaps item i with its predecessor. Returns the new index.
func (w *Worklist) MoveUp(i int) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkLocked(i); err != nil {
		return i, err
	}
	if i == 0 {
		return 0, nil
	}
	w.items[i-1], w.items[i] = w.items[i], w.items[i-1]
	return i - 1, nil
}

// MoveDown swaps item i with its successor. Returns the new index.
func (w *Worklist) MoveDown(i int) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkLocked(i); err != nil {
		return i, err
	}
	if i == len(w.items)-1 {
		return i, nil
	}
	w.items[i+1], w.items[i] = w.items[i], w.items[i+1]
	return i + 1, nil
}

// Remove deletes item i from the list.
func (w *Worklist) Remove(i int) (WorkItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkLocked(i); err != nil {
		return WorkItem{}, err
	}
	it := w.items[i]
	w.items = append(w.items[:i], w.items[i+1:]...)
	return it, nil
}

// Clear empties the list.
func (w *Worklist) Clear() {
	w.mu.Lock()
	w.items = nil
	w.mu.Unlock()
}

// Len returns the number of queued items.
func (w *Worklist) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// Front returns the first item without removing it.
func (w *Worklist) Front() (WorkItem, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.items) == 0 {
		return WorkItem{}, false
	}
	return w.items[0], true
}

// PopFront removes and returns the first item.
func (w *Worklist) PopFront() (WorkItem, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.items) == 0 {
		return WorkItem{}, false
	}
	it := w.items[0]
	w.items = w.items[1:]
	return it, true
}

// Snapshot returns a copy of the queued items.
func (w *Worklist) Snapshot() []WorkItem {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]WorkItem, len(w.items))
	copy(out, w.items)
	return out
}

// removeItem drops the first entry with item's path, wherever it now sits.
func (w *Worklist) removeItem(item WorkItem) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if i := w.indexLocked(item.Path); i >= 0 {
		w.items = append(w.items[:i], w.items[i+1:]...)
	}
}

func (w *Worklist) checkLocked(i int) error {
	if i < 0 || i >= len(w.items) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(w.items))
	}
	return nil
}

func (w *Worklist) indexLocked(path string) int {
	for i, it := range w.items {
		if it.Path == path {
			return i
		}
	}
	return -1
}
