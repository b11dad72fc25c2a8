// Package ledger owns the optimistic-update and reconciliation protocol
// between the in-memory tables and the remote gateway.
//
// Mutations are reflected locally before the backend can confirm anything,
// then superseded by a full reload after a settle delay. The last completed
// reload is the system's consistency anchor: stale reloads simply overwrite
// the snapshot again.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"badhige/internal/core"
)

// Gateway is the store's view of the remote endpoint.
type Gateway interface {
	List(ctx context.Context, table string) ([]core.Transaction, error)
	Append(ctx context.Context, table string, t core.Transaction) error
	Delete(ctx context.Context, table string, rowID int64) error
}

// SnapshotCache persists authoritative snapshots so a failed startup load can
// degrade to stale data instead of an empty table.
type SnapshotCache interface {
	Save(ctx context.Context, table string, txns []core.Transaction) error
	Load(ctx context.Context, table string) ([]core.Transaction, error)
	SavedAt(ctx context.Context, table string) (time.Time, error)
}

// Options tune the reconciliation windows.
type Options struct {
	// InsertSettle is the wait after an insert dispatch before trusting a
	// reload to reflect it.
	InsertSettle time.Duration
	// DeleteSettle is the (longer) wait after a delete dispatch.
	DeleteSettle time.Duration
}

// DefaultOptions mirror the settle windows the backend has been observed to
// need.
func DefaultOptions() Options {
	return Options{
		InsertSettle: 2500 * time.Millisecond,
		DeleteSettle: 3 * time.Second,
	}
}

// Status is a point-in-time view of the store for the presentation layer.
type Status struct {
	Sales      State     `json:"sales"`
	Expenses   State     `json:"expenses"`
	SyncError  string    `json:"syncError,omitempty"`
	LastReload time.Time `json:"lastReload"`
	// CachedAt maps a table to the save time of the stale snapshot bridging
	// its failed load, so the presentation layer can show how old the data
	// is. Empty while loads succeed.
	CachedAt map[string]time.Time `json:"cachedAt,omitempty"`
}

// Store coordinates the two ledgers, the category vocabulary, and the
// mutation/reconciliation flows.
type Store struct {
	gw    Gateway
	cache SnapshotCache // optional
	opts  Options

	sales    *Ledger
	expenses *Ledger

	mu         sync.Mutex
	categories []string
	syncErr    string
	lastReload time.Time
	cachedAt   map[string]time.Time
}

// New builds a store over the gateway. cache may be nil.
func New(gw Gateway, cache SnapshotCache, opts Options) *Store {
	if opts.InsertSettle <= 0 {
		opts.InsertSettle = DefaultOptions().InsertSettle
	}
	if opts.DeleteSettle <= 0 {
		opts.DeleteSettle = DefaultOptions().DeleteSettle
	}
	return &Store{
		gw:       gw,
		cache:    cache,
		opts:     opts,
		sales:    newLedger(core.TableSales, false),
		expenses: newLedger(core.TableExpenses, true),
		cachedAt: make(map[string]time.Time),
	}
}

// Sales returns the primary ledger.
func (s *Store) Sales() *Ledger { return s.sales }

// Expenses returns the expense ledger.
func (s *Store) Expenses() *Ledger { return s.expenses }

// Ledger resolves a table name to its ledger.
func (s *Store) Ledger(table string) (*Ledger, error) {
	switch table {
	case core.TableSales:
		return s.sales, nil
	case core.TableExpenses:
		return s.expenses, nil
	default:
		return nil, fmt.Errorf("unknown table %q", table)
	}
}

// Categories returns the derived vocabulary, falling back to the default
// category when the feed produced nothing.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.categories) == 0 {
		return []string{core.DefaultCategory}
	}
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Status reports the per-ledger states and the pending sync notice.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Sales:      s.sales.State(),
		Expenses:   s.expenses.State(),
		SyncError:  s.syncErr,
		LastReload: s.lastReload,
	}
	if len(s.cachedAt) > 0 {
		st.CachedAt = make(map[string]time.Time, len(s.cachedAt))
		for table, at := range s.cachedAt {
			st.CachedAt[table] = at
		}
	}
	return st
}

// ClearSyncError dismisses the sync-failure notice.
func (s *Store) ClearSyncError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncErr = ""
}

// Load fetches the three feeds concurrently and commits each ledger
// independently. The category feed is best-effort: its failure degrades to an
// empty vocabulary and is never surfaced. A ledger whose feed failed keeps
// its previous snapshot (or, having none, the cached one) so one table's
// failure never clears the other's data.
func (s *Store) Load(ctx context.Context) error {
	s.sales.setLoading()
	s.expenses.setLoading()

	var (
		salesRows, expenseRows, categoryRows []core.Transaction
		salesErr, expensesErr                error
	)
	var g errgroup.Group
	g.Go(func() error {
		salesRows, salesErr = s.gw.List(ctx, core.TableSales)
		return nil
	})
	g.Go(func() error {
		expenseRows, expensesErr = s.gw.List(ctx, core.TableExpenses)
		return nil
	})
	g.Go(func() error {
		rows, err := s.gw.List(ctx, core.TableCategories)
		if err != nil {
			slog.WarnContext(ctx, "category feed unavailable, using empty vocabulary", "error", err)
			return nil
		}
		categoryRows = rows
		return nil
	})
	_ = g.Wait()

	s.commitFeed(ctx, s.sales, salesRows, salesErr)
	s.commitFeed(ctx, s.expenses, expenseRows, expensesErr)

	s.mu.Lock()
	s.categories = deriveCategories(categoryRows)
	if salesErr == nil && expensesErr == nil {
		s.lastReload = time.Now()
	}
	s.mu.Unlock()

	if salesErr != nil {
		return salesErr
	}
	return expensesErr
}

func (s *Store) commitFeed(ctx context.Context, l *Ledger, rows []core.Transaction, err error) {
	if err == nil {
		l.replace(rows)
		s.setCachedAt(l.Table(), time.Time{})
		s.persist(ctx, l.Table(), rows)
		return
	}
	slog.ErrorContext(ctx, "table load failed", "table", l.Table(), "error", err)
	if l.Len() == 0 && s.cache != nil {
		if cached, cerr := s.cache.Load(ctx, l.Table()); cerr == nil && len(cached) > 0 {
			savedAt, _ := s.cache.SavedAt(ctx, l.Table())
			slog.WarnContext(ctx, "serving cached snapshot",
				"table", l.Table(), "rows", len(cached), "savedAt", savedAt)
			l.replace(cached)
			s.setCachedAt(l.Table(), savedAt)
		}
	}
	l.fail()
}

// setCachedAt records the age of a stale snapshot bridging a failed load; a
// zero time clears it once an authoritative load lands.
func (s *Store) setCachedAt(table string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if at.IsZero() {
		delete(s.cachedAt, table)
		return
	}
	s.cachedAt[table] = at
}

func (s *Store) persist(ctx context.Context, table string, rows []core.Transaction) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(ctx, table, rows); err != nil {
		slog.WarnContext(ctx, "snapshot persist failed", "table", table, "error", err)
	}
}

// Add inserts a transaction optimistically: the record is visible in the
// snapshot before the append dispatch completes, under a provisional local
// identity. A successful dispatch schedules a settle reload that reconciles
// the real row id; a dispatch failure surfaces the sync notice and forces an
// immediate corrective reload.
func (s *Store) Add(ctx context.Context, table string, t core.Transaction) error {
	l, err := s.Ledger(table)
	if err != nil {
		return err
	}

	t.RowID = 0
	t.LocalID = uuid.NewString()
	l.append(t)

	if err := s.gw.Append(ctx, table, t); err != nil {
		s.noteSyncError("Sync failed. Please check connection.")
		slog.ErrorContext(ctx, "insert dispatch failed", "table", table, "error", err)
		s.scheduleReload(0)
		return err
	}

	slog.InfoContext(ctx, "transaction dispatched", "table", table, "name", t.Name, "amount", t.Amount)
	s.scheduleReload(s.opts.InsertSettle)
	return nil
}

// Delete removes a transaction optimistically. Records without a remote row
// id are rejected locally before any network call. A dispatch failure forces
// an immediate reload to restore the true remote state.
func (s *Store) Delete(ctx context.Context, table string, t core.Transaction) error {
	l, err := s.Ledger(table)
	if err != nil {
		return err
	}
	if !t.HasRowID() {
		return core.ErrMissingRowID
	}

	l.remove(t.Identity())

	if err := s.gw.Delete(ctx, table, t.RowID); err != nil {
		s.noteSyncError("Delete request failed. Check your connection.")
		slog.ErrorContext(ctx, "delete dispatch failed", "table", table, "row", t.RowID, "error", err)
		s.scheduleReload(0)
		return err
	}

	slog.InfoContext(ctx, "delete dispatched", "table", table, "row", t.RowID)
	s.scheduleReload(s.opts.DeleteSettle)
	return nil
}

func (s *Store) noteSyncError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncErr = msg
}

// scheduleReload arms a one-shot reload. Timers are never cancelled: a stale
// reload just overwrites the snapshot with the same authoritative result.
func (s *Store) scheduleReload(delay time.Duration) {
	time.AfterFunc(delay, func() {
		if err := s.Load(context.Background()); err != nil {
			slog.Error("settle reload failed", "error", err)
		}
	})
}

// headerValues are column labels that leak into the category feed when the
// sheet carries a header row.
var headerValues = map[string]struct{}{
	"DATE": {}, "NAME": {}, "CATEGORY": {}, "AMOUNT": {},
}

func deriveCategories(rows []core.Transaction) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		v := strings.TrimSpace(r.Category)
		if v == "" {
			continue
		}
		if _, header := headerValues[strings.ToUpper(v)]; header {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
