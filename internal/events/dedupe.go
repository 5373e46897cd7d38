package events

import "sync"

const dedupeWindow = 1024

// DedupeCreates wraps a handler so that repeated create events for the same item id are
// delivered once. Update and delete events pass through. The most recent ids are
// remembered, bounded by a fixed window.
func DedupeCreates(next Handler) Handler {
	var (
		mu    sync.Mutex
		seen  = make(map[string]struct{}, dedupeWindow)
		order = make([]string, 0, dedupeWindow)
	)
	return func(ev Event) {
		if ev.Kind == KindCreate {
			mu.Lock()
			if _, dup := seen[ev.ItemID]; dup {
				mu.Unlock()
				return
			}
			if len(order) == dedupeWindow {
				delete(seen, order[0])
				order = order[1:]
			}
			seen[ev.ItemID] = struct{}{}
			order = append(order, ev.ItemID)
			mu.Unlock()
		}
		next(ev)
	}
}
