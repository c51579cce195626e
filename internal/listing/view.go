package listing

import "sync"

// View holds a roster fetched in full plus the filters currently applied
// to it. Snapshots are a pure function of (items, query); mutation and
// recomputation never overlap because every entry point takes the lock.
//
// Two concerns from the screens it backs live here as well:
//
//   - Latest-request-wins refresh. Begin hands out a generation token
//     and Accept installs a response only while its token is still the
//     newest, so a slow fetch can never overwrite a newer one.
//   - Two-phase optimistic removal. RemoveOptimistic hides an item
//     before the backend confirms the delete; ConfirmRemoval forgets it
//     for good, RollbackRemoval makes it visible again until the next
//     canonical reload.
type View[T any] struct {
	mu      sync.Mutex
	items   []T
	removed map[int]struct{}
	query   Query
	gen     uint64
	loaded  bool

	id     func(T) int
	status func(T) string
	match  func(T) []string
}

func NewView[T any](id func(T) int, status func(T) string, match func(T) []string) *View[T] {
	return &View[T]{
		removed: make(map[int]struct{}),
		id:      id,
		status:  status,
		match:   match,
	}
}

// Begin marks the start of a refresh and returns its generation token.
// Any refresh begun earlier is superseded from this point on.
func (v *View[T]) Begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	return v.gen
}

// Accept installs items if token still identifies the newest refresh.
// It reports whether the response was installed or dropped as stale.
// Installing a canonical roster clears any pending removals.
func (v *View[T]) Accept(token uint64, items []T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if token != v.gen {
		return false
	}
	v.items = items
	v.removed = make(map[int]struct{})
	v.loaded = true
	return true
}

func (v *View[T]) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

func (v *View[T]) SetQuery(q Query) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = q
}

// Snapshot recomputes the visible page from the current roster and
// query, excluding items tentatively removed.
func (v *View[T]) Snapshot() Result[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	visible := v.items
	if len(v.removed) > 0 {
		visible = nil
		for _, item := range v.items {
			if _, gone := v.removed[v.id(item)]; !gone {
				visible = append(visible, item)
			}
		}
	}
	return Paginate(visible, v.query, v.status, v.match)
}

// RemoveOptimistic hides the item with the given id and reports whether
// it was present and visible.
func (v *View[T]) RemoveOptimistic(id int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, gone := v.removed[id]; gone {
		return false
	}
	for _, item := range v.items {
		if v.id(item) == id {
			v.removed[id] = struct{}{}
			return true
		}
	}
	return false
}

// ConfirmRemoval drops the item from the roster after the backend
// confirmed the delete.
func (v *View[T]) ConfirmRemoval(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.removed, id)
	kept := v.items[:0]
	for _, item := range v.items {
		if v.id(item) != id {
			kept = append(kept, item)
		}
	}
	v.items = kept
}

// RollbackRemoval restores a tentatively removed item after the delete
// failed. The caller is expected to follow up with a canonical reload.
func (v *View[T]) RollbackRemoval(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.removed, id)
}
