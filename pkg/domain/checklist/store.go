package checklist

import (
	"sort"
	"sync"
)

// Persister writes the full item set durably. The store flushes through it
// after every successful mutation so the on-disk ledger is the resumption
// anchor: a crash between generation and UpdateStatus leaves the item
// pending on disk and it is simply reprocessed on the next run.
type Persister interface {
	SaveItems(items []Item) error
}

// Store is the durable ledger of conversion units. Items are never deleted.
// All mutations are serialized; claims are process-local and never persisted.
type Store struct {
	mu        sync.Mutex
	items     map[Key]*Item
	order     []Key
	claims    map[Key]bool
	persister Persister
}

// NewStore creates a store seeded with existing items (typically loaded from
// the checklist file) and backed by the given persister.
func NewStore(existing []Item, persister Persister) *Store {
	s := &Store{
		items:     make(map[Key]*Item, len(existing)),
		claims:    make(map[Key]bool),
		persister: persister,
	}
	for i := range existing {
		item := existing[i]
		k := item.Key()
		if _, ok := s.items[k]; ok {
			continue
		}
		s.items[k] = &item
		s.order = append(s.order, k)
	}
	return s
}

// List returns a snapshot of all items in insertion order.
func (s *Store) List() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Get returns a copy of the item with the given key.
func (s *Store) Get(key Key) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[key]
	if !ok {
		return Item{}, false
	}
	return *item, true
}

// FindByTarget returns the first item whose target path matches.
func (s *Store) FindByTarget(targetPath string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.order {
		if k.TargetPath == targetPath {
			return *s.items[k], true
		}
	}
	return Item{}, false
}

// Add inserts a new item. It fails with DuplicateKeyError if the
// (source, target) pair already exists.
func (s *Store) Add(item Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := item.Key()
	if _, ok := s.items[k]; ok {
		return &DuplicateKeyError{Key: k}
	}

	s.items[k] = &item
	s.order = append(s.order, k)
	return s.flushLocked()
}

// UpdateStatus transitions an item to a new status and appends exactly one
// note. It fails with ErrNotFound for absent keys and TransitionError when
// the change violates the monotonic rules.
func (s *Store) UpdateStatus(key Key, status Status, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return ErrNotFound
	}

	if !item.Status.CanTransitionTo(status) {
		return &TransitionError{Key: key, From: item.Status, To: status}
	}

	item.Status = status
	item.AppendNote(note)
	return s.flushLocked()
}

// Annotate appends a note without changing status. Used by the planner to
// flag anomalies (missing sources, plan conflicts) on existing items.
func (s *Store) Annotate(key Key, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return ErrNotFound
	}

	item.AppendNote(note)
	return s.flushLocked()
}

// Claim marks an item as owned by the calling worker. It returns false if
// the item is already claimed. Claims exist only in memory.
func (s *Store) Claim(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claims[key] {
		return false
	}
	if _, ok := s.items[key]; !ok {
		return false
	}
	s.claims[key] = true
	return true
}

// Release frees a claim. Safe to call for unclaimed keys.
func (s *Store) Release(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, key)
}

// ReleaseAll frees every claim. Called on shutdown so cancellation never
// leaves an item locked.
func (s *Store) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims = make(map[Key]bool)
}

// CountByStatus returns item counts per status.
func (s *Store) CountByStatus() map[Status]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[Status]int)
	for _, item := range s.items {
		counts[item.Status]++
	}
	return counts
}

// Flush persists the current item set.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if s.persister == nil {
		return nil
	}
	return s.persister.SaveItems(s.snapshotLocked())
}

func (s *Store) snapshotLocked() []Item {
	out := make([]Item, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, *s.items[k])
	}
	return out
}

// SortItems orders items by category conversion order, then target path.
// The deterministic order is what makes re-runs reproducible even though
// generation itself is not.
func SortItems(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		ca, cb := items[a].Category.OrderIndex(), items[b].Category.OrderIndex()
		if ca != cb {
			return ca < cb
		}
		return items[a].TargetPath < items[b].TargetPath
	})
}
