package state

import (
	"sync"
)

// Logger defines the logging interface used by the Store.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Change describes one applied mutation. Prev and Next are independent
// deep copies; subscribers may retain them indefinitely.
type Change struct {
	// Prev is the snapshot before the mutation was applied.
	Prev *Tree

	// Next is the snapshot after the mutation was applied.
	Next *Tree

	// Version is the store version after the mutation. Versions are
	// monotonically increasing within a process lifetime.
	Version uint64

	// Baseline is true when the mutation was a full replacement
	// (connection epoch re-baseline) rather than an incremental merge.
	Baseline bool
}

// ChangeFunc receives change notifications. Handlers run synchronously
// on the mutating goroutine, strictly after the mutation is fully
// applied, in subscription order. Handlers may call Snapshot.
type ChangeFunc func(Change)

// Store holds the canonical, versioned snapshot of device state.
//
// The store is owned by the engine: all writes arrive through Merge and
// ReplaceAll, and callers only ever see deep-copied snapshots. A single
// mutation mutex serialises writes and their notifications, so a
// subscriber always observes changes in version order.
//
// All public methods are thread-safe.
type Store struct {
	// writeMu serialises mutations and their notifications.
	writeMu sync.Mutex

	// mu guards tree and version for snapshot readers.
	mu      sync.RWMutex
	tree    *Tree
	version uint64

	handlerMu sync.RWMutex
	handlers  []ChangeFunc

	logger Logger
}

// NewStore creates an empty store. The tree starts with every section
// unknown; it is populated wholesale by the first ReplaceAll.
func NewStore() *Store {
	return &Store{
		tree:   &Tree{},
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Merge applies a partial update. Present fields overwrite, absent
// fields are left untouched; see merge.go for the exact rules. A nil
// delta is a no-op.
func (s *Store) Merge(delta *Tree) {
	if delta == nil {
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	prev := s.tree.Copy()
	merge(s.tree, delta)
	s.version++
	version := s.version
	next := s.tree.Copy()
	s.mu.Unlock()

	s.logger.Debug("state merged", "version", version)
	s.notify(Change{Prev: prev, Next: next, Version: version})
}

// ReplaceAll discards the current tree and re-baselines from a full
// snapshot. Used once per connection epoch, at (re)connect. A nil tree
// is a no-op.
func (s *Store) ReplaceAll(full *Tree) {
	if full == nil {
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	prev := s.tree
	s.tree = full.Copy()
	s.version++
	version := s.version
	next := s.tree.Copy()
	s.mu.Unlock()

	s.logger.Debug("state re-baselined", "version", version)
	s.notify(Change{Prev: prev, Next: next, Version: version, Baseline: true})
}

// Snapshot returns an immutable, internally consistent point-in-time
// copy of the tree. No partially applied merge can be observed.
func (s *Store) Snapshot() *Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Copy()
}

// Version returns the current store version. Zero means no mutation has
// been applied yet.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// OnChange registers a change handler. Handlers cannot be removed; they
// live as long as the store.
func (s *Store) OnChange(fn ChangeFunc) {
	if fn == nil {
		return
	}
	s.handlerMu.Lock()
	s.handlers = append(s.handlers, fn)
	s.handlerMu.Unlock()
}

// notify delivers a change to all handlers in subscription order.
// Called with writeMu held, so notifications arrive in version order.
func (s *Store) notify(change Change) {
	s.handlerMu.RLock()
	handlers := make([]ChangeFunc, len(s.handlers))
	copy(handlers, s.handlers)
	s.handlerMu.RUnlock()

	for _, fn := range handlers {
		fn(change)
	}
}
