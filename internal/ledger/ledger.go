package ledger

import (
	"sync"

	"badhige/internal/core"
)

// State is the load state of one logical table.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// Ledger is the in-memory authoritative cache of one logical table. Both
// ledgers are instances of this one shape, parametrized by table name and
// category support.
type Ledger struct {
	table        string
	withCategory bool

	mu    sync.RWMutex
	state State
	items []core.Transaction
}

func newLedger(table string, withCategory bool) *Ledger {
	return &Ledger{table: table, withCategory: withCategory, state: StateIdle}
}

// Table returns the remote table name.
func (l *Ledger) Table() string { return l.table }

// WithCategory reports whether category display is enabled for this table.
func (l *Ledger) WithCategory() bool { return l.withCategory }

// State returns the current load state.
func (l *Ledger) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Snapshot returns a copy of the current items in insertion order.
func (l *Ledger) Snapshot() []core.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]core.Transaction, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of cached records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *Ledger) setLoading() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StateLoading
}

// replace commits an authoritative snapshot, superseding all optimistic
// state.
func (l *Ledger) replace(items []core.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = items
	l.state = StateLoaded
}

// fail marks the load failed without discarding the previous snapshot.
func (l *Ledger) fail() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StateFailed
}

// append adds an optimistic record.
func (l *Ledger) append(t core.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, t)
}

// remove drops the record with the given identity, reporting whether it was
// present.
func (l *Ledger) remove(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, t := range l.items {
		if t.Identity() == identity {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}
