package services

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestUpsertDayNotes_SingleRowLatestValue(t *testing.T) {
	_, trades, userID := mustSetup(t)

	if err := trades.UpsertDayNotes(userID, "2024-03-05", "first"); err != nil {
		t.Fatalf("UpsertDayNotes failed: %v", err)
	}
	if err := trades.UpsertDayNotes(userID, "2024-03-05", "second"); err != nil {
		t.Fatalf("UpsertDayNotes failed: %v", err)
	}

	summaries, err := trades.GetMonthlySummaries(userID, 2024, 3)
	if err != nil {
		t.Fatalf("GetMonthlySummaries failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected exactly one trade row after double upsert, got %d", len(summaries))
	}
	if summaries[0].Notes != "second" {
		t.Errorf("Expected latest notes value, got %q", summaries[0].Notes)
	}
}

func TestUpsertDayNotes_PreservesEntries(t *testing.T) {
	entries, trades, userID := mustSetup(t)

	if err := entries.CreateEntry(newEntry(userID, "2024-03-05", "AAPL", 150.5)); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if err := trades.UpsertDayNotes(userID, "2024-03-05", "good day"); err != nil {
		t.Fatalf("UpsertDayNotes failed: %v", err)
	}

	summary, err := trades.GetDaySummary(userID, "2024-03-05")
	if err != nil {
		t.Fatalf("GetDaySummary failed: %v", err)
	}
	if summary == nil {
		t.Fatal("Expected a day summary")
	}
	if summary.Notes != "good day" {
		t.Errorf("Expected notes %q, got %q", "good day", summary.Notes)
	}
	if summary.PL != 150.5 {
		t.Errorf("Notes upsert must leave pl unchanged, got %v", summary.PL)
	}
}

func TestGetMonthlySummaries_NotesOnlyDayZeroPL(t *testing.T) {
	_, trades, userID := mustSetup(t)

	if err := trades.UpsertDayNotes(userID, "2024-03-05", "no trades today"); err != nil {
		t.Fatalf("UpsertDayNotes failed: %v", err)
	}

	summaries, err := trades.GetMonthlySummaries(userID, 2024, 3)
	if err != nil {
		t.Fatalf("GetMonthlySummaries failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("A notes-only day must appear in the month view, got %d rows", len(summaries))
	}
	if summaries[0].PL != 0 {
		t.Errorf("Expected pl=0 for a day without entries, got %v", summaries[0].PL)
	}
}

func TestGetMonthlySummaries_ZeroPaddedMonthPrefix(t *testing.T) {
	entries, trades, userID := mustSetup(t)

	// 2024-03 vs 2024-11: a naive unpadded prefix "2024-1-" or "2024-1%"
	// would cross-match months
	if err := entries.CreateEntry(newEntry(userID, "2024-01-10", "AAPL", 10)); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if err := entries.CreateEntry(newEntry(userID, "2024-11-10", "TSLA", 20)); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	january, err := trades.GetMonthlySummaries(userID, 2024, 1)
	if err != nil {
		t.Fatalf("GetMonthlySummaries failed: %v", err)
	}
	if len(january) != 1 || january[0].TradeDate != "2024-01-10" {
		t.Errorf("January view wrong: %+v", january)
	}

	november, err := trades.GetMonthlySummaries(userID, 2024, 11)
	if err != nil {
		t.Fatalf("GetMonthlySummaries failed: %v", err)
	}
	if len(november) != 1 || november[0].TradeDate != "2024-11-10" {
		t.Errorf("November view wrong: %+v", november)
	}
}

func TestGetMonthlySummaries_PerUserIsolation(t *testing.T) {
	entries, trades, userID := mustSetup(t)

	otherID, err := TestUser(entries.db, "other@example.com")
	if err != nil {
		t.Fatalf("Failed to create second user: %v", err)
	}

	if err := entries.CreateEntry(newEntry(userID, "2024-03-05", "AAPL", 100)); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if err := entries.CreateEntry(newEntry(otherID, "2024-03-05", "AAPL", 999)); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	summaries, err := trades.GetMonthlySummaries(userID, 2024, 3)
	if err != nil {
		t.Fatalf("GetMonthlySummaries failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(summaries))
	}
	if summaries[0].PL != 100 {
		t.Errorf("Another user's entries leaked into the aggregate: pl=%v", summaries[0].PL)
	}
}

func TestGetDaySummary_NoRowReturnsNil(t *testing.T) {
	_, trades, userID := mustSetup(t)

	summary, err := trades.GetDaySummary(userID, "2024-03-05")
	if err != nil {
		t.Fatalf("GetDaySummary failed: %v", err)
	}
	if summary != nil {
		t.Errorf("Expected nil summary for an unknown date, got %+v", summary)
	}
}

func TestDeleteAllEntries_PLDropsToZeroNotesSurvive(t *testing.T) {
	entries, trades, userID := mustSetup(t)

	if err := trades.UpsertDayNotes(userID, "2024-03-05", "keep me"); err != nil {
		t.Fatalf("UpsertDayNotes failed: %v", err)
	}
	first := newEntry(userID, "2024-03-05", "AAPL", 100)
	second := newEntry(userID, "2024-03-05", "TSLA", -30)
	if err := entries.CreateEntry(first); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if err := entries.CreateEntry(second); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	if err := entries.DeleteEntry(first.ID, userID); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if err := entries.DeleteEntry(second.ID, userID); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}

	summary, err := trades.GetDaySummary(userID, "2024-03-05")
	if err != nil {
		t.Fatalf("GetDaySummary failed: %v", err)
	}
	if summary == nil {
		t.Fatal("Trade row must survive deletion of all its entries")
	}
	if summary.PL != 0 {
		t.Errorf("Expected pl=0 after deleting all entries, got %v", summary.PL)
	}
	if summary.Notes != "keep me" {
		t.Errorf("Notes must be unchanged, got %q", summary.Notes)
	}
}

// Property: for any set of entries created on a date, the month view's pl for
// that date equals the sum of their pnl values
func TestMonthlyAggregation_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("aggregated pl equals the sum of entry pnl", prop.ForAll(
		func(pnls []float64) bool {
			db := TestDB()
			if db == nil {
				return false
			}
			defer db.Close()

			userID, err := TestUser(db, "prop@example.com")
			if err != nil {
				return false
			}

			entries := NewEntryService(db)
			trades := NewTradeService(db)

			var want float64
			for _, pnl := range pnls {
				if err := entries.CreateEntry(newEntry(userID, "2024-03-15", "AAPL", pnl)); err != nil {
					return false
				}
				want += pnl
			}

			summaries, err := trades.GetMonthlySummaries(userID, 2024, 3)
			if err != nil {
				return false
			}

			if len(pnls) == 0 {
				// No entries, no notes: no trade row, nothing to show
				return len(summaries) == 0
			}
			if len(summaries) != 1 {
				return false
			}
			return math.Abs(summaries[0].PL-want) < 1e-6
		},
		gen.SliceOf(gen.Float64Range(-10000, 10000)),
	))

	properties.TestingRun(t)
}
