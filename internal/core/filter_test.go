package core

import (
	"testing"
	"time"
)

func tx(id, notebook string, date Date) Transaction {
	return Transaction{
		ID:            id,
		Type:          TypeExpense,
		Amount:        Money{Cents: 100},
		Category:      "food",
		Date:          date,
		PaymentMethod: PayCash,
		Notebook:      notebook,
	}
}

func ids(txs []Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestFilterDateWindows(t *testing.T) {
	// now = 2024-01-15, a Monday.
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	txs := []Transaction{
		tx("old", "default", NewDate(2024, 1, 1)),
		tx("today", "default", NewDate(2024, 1, 15)),
	}

	cases := []struct {
		filter DateFilter
		want   []string
	}{
		{FilterToday, []string{"today"}},
		{FilterMonth, []string{"today", "old"}}, // sorted date desc
		{FilterAll, []string{"today", "old"}},
	}
	for _, tc := range cases {
		got := Filter(txs, "default", tc.filter, "", nil, now)
		if len(got) != len(tc.want) {
			t.Fatalf("filter=%s: got %v, want %v", tc.filter, ids(got), tc.want)
		}
		for i := range got {
			if got[i].ID != tc.want[i] {
				t.Fatalf("filter=%s: got %v, want %v", tc.filter, ids(got), tc.want)
			}
		}
	}
}

func TestFilterWeekIsSundayAnchored(t *testing.T) {
	// Wednesday 2024-01-17; week started Sunday 2024-01-14.
	now := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx("saturday", "default", NewDate(2024, 1, 13)),
		tx("sunday", "default", NewDate(2024, 1, 14)),
		tx("tuesday", "default", NewDate(2024, 1, 16)),
	}
	got := Filter(txs, "default", FilterWeek, "", nil, now)
	want := []string{"tuesday", "sunday"}
	if len(got) != 2 || got[0].ID != want[0] || got[1].ID != want[1] {
		t.Fatalf("week filter got %v, want %v", ids(got), want)
	}
}

func TestFilterNotebookScope(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx("mine", "default", NewDate(2024, 1, 10)),
		tx("shared", "household", NewDate(2024, 1, 10)),
	}
	got := Filter(txs, "household", FilterAll, "", nil, now)
	if len(got) != 1 || got[0].ID != "shared" {
		t.Fatalf("notebook scope got %v, want [shared]", ids(got))
	}
}

func TestFilterSearchAsymmetry(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	cats := []Category{{ID: "food", Name: "Food", Type: CategoryExpense}}

	byNote := tx("note", "default", NewDate(2024, 1, 10))
	byNote.Note = "Lunch with TEAM"
	byNote.Category = "other"
	byCat := tx("cat", "default", NewDate(2024, 1, 11))
	byCat.Note = ""

	txs := []Transaction{byNote, byCat}

	// Note match is case-insensitive.
	got := Filter(txs, "default", FilterAll, "team", cats, now)
	if len(got) != 1 || got[0].ID != "note" {
		t.Fatalf("note search got %v, want [note]", ids(got))
	}

	// Category-name match is case-sensitive: "Food" matches, "food" does not
	// (and "food" is not a note substring here).
	got = Filter(txs, "default", FilterAll, "Food", cats, now)
	if len(got) != 1 || got[0].ID != "cat" {
		t.Fatalf("category search got %v, want [cat]", ids(got))
	}
	got = Filter(txs, "default", FilterAll, "food", cats, now)
	if len(got) != 0 {
		t.Fatalf("lowercase category search got %v, want none", ids(got))
	}
}

func TestFilterStableOrderOnEqualDates(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx("first", "default", NewDate(2024, 1, 10)),
		tx("second", "default", NewDate(2024, 1, 10)),
		tx("third", "default", NewDate(2024, 1, 10)),
	}
	got := Filter(txs, "default", FilterAll, "", nil, now)
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("stable sort got %v, want %v", ids(got), want)
		}
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx("a", "default", NewDate(2024, 1, 1)),
		tx("b", "default", NewDate(2024, 1, 14)),
	}
	_ = Filter(txs, "default", FilterAll, "", nil, now)
	if txs[0].ID != "a" || txs[1].ID != "b" {
		t.Fatal("input slice was reordered")
	}
}
