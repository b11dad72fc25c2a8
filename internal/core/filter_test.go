package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func filterSnapshot() []Transaction {
	return []Transaction{
		{Date: "2024-01-05", Amount: decimal.NewFromInt(100), Name: "Ahmed", Category: "Supplies"},
		{Date: "2024-02-10", Amount: decimal.NewFromInt(50), Name: "Ibrahim", Category: "Fuel"},
		{Date: "junk", Amount: decimal.NewFromInt(25), Name: "January rent", Category: "Rent"},
	}
}

func TestFilterEmptyIsIdentity(t *testing.T) {
	snapshot := filterSnapshot()
	got := Filter{}.Apply(snapshot)
	if len(got) != len(snapshot) {
		t.Fatalf("identity filter: got %d of %d", len(got), len(snapshot))
	}
}

func TestFilterTextMatching(t *testing.T) {
	snapshot := filterSnapshot()
	cases := []struct {
		query        string
		withCategory bool
		want         int
	}{
		{"ahmed", false, 1},
		{"AHMED", false, 1},
		{"fuel", true, 1},
		{"fuel", false, 0}, // category hidden for this table
		{"Jan", false, 2},  // display date "05-Jan-24" and the name "January rent"
		{"nomatch", true, 0},
	}
	for _, tc := range cases {
		f := Filter{Query: tc.query, WithCategory: tc.withCategory}
		if got := f.Apply(snapshot); len(got) != tc.want {
			t.Errorf("query %q (category=%v): got %d want %d", tc.query, tc.withCategory, len(got), tc.want)
		}
	}
}

func TestFilterDateRange(t *testing.T) {
	snapshot := filterSnapshot()
	from := time.Date(2024, 1, 1, 15, 30, 0, 0, time.Local)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local)

	f := Filter{From: from, To: to}
	got := f.Apply(snapshot)
	if len(got) != 1 || got[0].Name != "Ahmed" {
		t.Fatalf("range filter: got %+v", got)
	}

	// Endpoints are inclusive whole days regardless of time-of-day.
	edge := Filter{From: time.Date(2024, 1, 5, 23, 0, 0, 0, time.Local), To: time.Date(2024, 1, 5, 1, 0, 0, 0, time.Local)}
	if got := edge.Apply(snapshot); len(got) != 1 {
		t.Fatalf("inclusive endpoints: got %d", len(got))
	}
}

func TestFilterUnparseableDateExcludedOnlyWithRange(t *testing.T) {
	snapshot := filterSnapshot()
	ranged := Filter{Query: "rent", From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)}
	if got := ranged.Apply(snapshot); len(got) != 0 {
		t.Fatalf("unparseable date should be excluded while a range is active, got %d", len(got))
	}
	unranged := Filter{Query: "rent"}
	if got := unranged.Apply(snapshot); len(got) != 1 {
		t.Fatalf("unparseable date still text-matchable without a range, got %d", len(got))
	}
}

func TestFilterIsNarrowing(t *testing.T) {
	snapshot := filterSnapshot()
	got := Filter{Query: "a"}.Apply(snapshot)
	for _, g := range got {
		found := false
		for _, s := range snapshot {
			if s.Name == g.Name {
				found = true
			}
		}
		if !found {
			t.Fatalf("filtered set contains %q not present in snapshot", g.Name)
		}
	}
}

func TestFilterTotal(t *testing.T) {
	snapshot := filterSnapshot()
	f := Filter{Query: "ahmed"}
	if got := f.Total(snapshot); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("filtered total: got %s", got)
	}
}
