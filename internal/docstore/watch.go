package docstore

import (
	"context"
	"log/slog"
	"sync"
)

// Watch streams the value at path: one snapshot straight away, then a fresh
// one after every write that touches the path, an ancestor or a descendant.
//
// WHY RE-READ INSTEAD OF SENDING DIFFS?
// A write that lands on an ancestor can change the watched subtree in ways
// that are awkward to compute from the write alone. Re-reading is one range
// scan and always matches what Get would return.
//
// Bursts of writes while the consumer is busy collapse into a single
// snapshot of the latest state. The channel is closed when ctx is done or a
// read fails.
func (s *Store) Watch(ctx context.Context, path string) (<-chan Snapshot, error) {
	p, err := Clean(path)
	if err != nil {
		return nil, err
	}

	// Registering before the first read means a write racing with it is
	// still delivered, at worst as one extra identical snapshot.
	w := s.hub.add(p)
	out := make(chan Snapshot)

	go func() {
		defer close(out)
		defer s.hub.remove(w)

		for {
			snap, err := s.Get(ctx, p)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("watch read failed", slog.String("path", p), slog.Any("error", err))
				}
				return
			}

			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}

			select {
			case <-w.changed:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

type watcher struct {
	path string
	// changed has room for one pending signal; further signals are dropped
	// until the watcher catches up.
	changed chan struct{}
}

// hub tracks active watchers.
type hub struct {
	mu       sync.Mutex
	watchers map[*watcher]struct{}
}

func newHub() *hub {
	return &hub{watchers: make(map[*watcher]struct{})}
}

func (h *hub) add(path string) *watcher {
	w := &watcher{path: path, changed: make(chan struct{}, 1)}
	h.mu.Lock()
	h.watchers[w] = struct{}{}
	h.mu.Unlock()
	return w
}

func (h *hub) remove(w *watcher) {
	h.mu.Lock()
	delete(h.watchers, w)
	h.mu.Unlock()
}

// notify signals every watcher whose value may have changed after writes at
// the given paths. It never blocks.
func (h *hub) notify(paths ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for w := range h.watchers {
		for _, p := range paths {
			if !related(w.path, p) {
				continue
			}
			select {
			case w.changed <- struct{}{}:
			default:
			}
			break
		}
	}
}

// watcherCount is used by tests to check that cancelled watches unregister.
func (h *hub) watcherCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}
