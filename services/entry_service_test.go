package services

import (
	"testing"
	"tradecal/models"
)

func mustSetup(t *testing.T) (*EntryService, *TradeService, int64) {
	t.Helper()

	db := TestDB()
	if db == nil {
		t.Fatal("Failed to create test database")
	}
	t.Cleanup(func() { db.Close() })

	userID, err := TestUser(db, "trader@example.com")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return NewEntryService(db), NewTradeService(db), userID
}

func newEntry(userID int64, date, ticker string, pnl float64) *models.TradeEntry {
	return &models.TradeEntry{
		UserID:    userID,
		TradeDate: date,
		Ticker:    ticker,
		Direction: models.DirectionLong,
		Pnl:       pnl,
	}
}

func TestCreateEntry_AssignsID(t *testing.T) {
	entries, _, userID := mustSetup(t)

	entry := newEntry(userID, "2024-03-05", "AAPL", 150.5)
	if err := entries.CreateEntry(entry); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if entry.ID == 0 {
		t.Error("Expected entry ID to be assigned")
	}
}

func TestCreateEntry_CreatesParentTradeRow(t *testing.T) {
	entries, trades, userID := mustSetup(t)

	if err := entries.CreateEntry(newEntry(userID, "2024-03-05", "AAPL", 150.5)); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	trade, err := trades.GetTradeByDate(userID, "2024-03-05")
	if err != nil {
		t.Fatalf("GetTradeByDate failed: %v", err)
	}
	if trade == nil {
		t.Fatal("Expected parent trade row to be created as a side effect")
	}
	if trade.HasTrades != 1 {
		t.Errorf("Expected has_trades=1, got %d", trade.HasTrades)
	}
}

func TestCreateEntry_ParentRowIdempotent(t *testing.T) {
	entries, trades, userID := mustSetup(t)

	// Notes saved first, then two entries on the same date
	if err := trades.UpsertDayNotes(userID, "2024-03-05", "good day"); err != nil {
		t.Fatalf("UpsertDayNotes failed: %v", err)
	}
	if err := entries.CreateEntry(newEntry(userID, "2024-03-05", "AAPL", 100)); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if err := entries.CreateEntry(newEntry(userID, "2024-03-05", "TSLA", -40)); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	summaries, err := trades.GetMonthlySummaries(userID, 2024, 3)
	if err != nil {
		t.Fatalf("GetMonthlySummaries failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected exactly one trade row for the date, got %d", len(summaries))
	}
	if summaries[0].Notes != "good day" {
		t.Errorf("Entry creation must not overwrite existing notes, got %q", summaries[0].Notes)
	}
	if summaries[0].PL != 60 {
		t.Errorf("Expected pl=60, got %v", summaries[0].PL)
	}
}

func TestGetEntriesByDate_NewestFirst(t *testing.T) {
	entries, _, userID := mustSetup(t)

	for i, ticker := range []string{"AAPL", "TSLA", "NVDA"} {
		if err := entries.CreateEntry(newEntry(userID, "2024-03-05", ticker, float64(i))); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
	}

	got, err := entries.GetEntriesByDate(userID, "2024-03-05")
	if err != nil {
		t.Fatalf("GetEntriesByDate failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(got))
	}
	// Newest-created first
	if got[0].Ticker != "NVDA" || got[2].Ticker != "AAPL" {
		t.Errorf("Expected newest-first ordering, got %s..%s", got[0].Ticker, got[2].Ticker)
	}
}

func TestGetEntriesByMonth_GroupsByDate(t *testing.T) {
	entries, _, userID := mustSetup(t)

	if err := entries.CreateEntry(newEntry(userID, "2024-03-05", "AAPL", 10)); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if err := entries.CreateEntry(newEntry(userID, "2024-03-05", "TSLA", 20)); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if err := entries.CreateEntry(newEntry(userID, "2024-03-18", "NVDA", 30)); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	// Different month, must be excluded
	if err := entries.CreateEntry(newEntry(userID, "2024-04-01", "MSFT", 40)); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	grouped, err := entries.GetEntriesByMonth(userID, 2024, 3)
	if err != nil {
		t.Fatalf("GetEntriesByMonth failed: %v", err)
	}
	if len(grouped) != 2 {
		t.Fatalf("Expected 2 dates in March, got %d", len(grouped))
	}
	if len(grouped["2024-03-05"]) != 2 {
		t.Errorf("Expected 2 entries on 2024-03-05, got %d", len(grouped["2024-03-05"]))
	}
	if len(grouped["2024-03-18"]) != 1 {
		t.Errorf("Expected 1 entry on 2024-03-18, got %d", len(grouped["2024-03-18"]))
	}
	if _, ok := grouped["2024-04-01"]; ok {
		t.Error("April entry leaked into March view")
	}
}

func TestUpdateEntry_WrongUserSilentNoop(t *testing.T) {
	entries, _, userID := mustSetup(t)

	entry := newEntry(userID, "2024-03-05", "AAPL", 100)
	if err := entries.CreateEntry(entry); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	// Attempt the update as a different user: must succeed but change nothing
	hijacked := newEntry(userID+1, "2024-03-05", "EVIL", -999)
	hijacked.ID = entry.ID
	if err := entries.UpdateEntry(hijacked); err != nil {
		t.Fatalf("Cross-user update must report success, got error: %v", err)
	}

	got, err := entries.GetEntriesByDate(userID, "2024-03-05")
	if err != nil {
		t.Fatalf("GetEntriesByDate failed: %v", err)
	}
	if got[0].Ticker != "AAPL" || got[0].Pnl != 100 {
		t.Errorf("Cross-user update mutated the entry: %s %v", got[0].Ticker, got[0].Pnl)
	}
}

func TestDeleteEntry_WrongUserSilentNoop(t *testing.T) {
	entries, _, userID := mustSetup(t)

	entry := newEntry(userID, "2024-03-05", "AAPL", 100)
	if err := entries.CreateEntry(entry); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	if err := entries.DeleteEntry(entry.ID, userID+1); err != nil {
		t.Fatalf("Cross-user delete must report success, got error: %v", err)
	}

	got, err := entries.GetEntriesByDate(userID, "2024-03-05")
	if err != nil {
		t.Fatalf("GetEntriesByDate failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Cross-user delete removed the entry, %d left", len(got))
	}
}

func TestUpdateEntry_ChangesFields(t *testing.T) {
	entries, _, userID := mustSetup(t)

	entry := newEntry(userID, "2024-03-05", "AAPL", 100)
	if err := entries.CreateEntry(entry); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	confidence := 4
	quality := models.SetupQualityA
	updated := newEntry(userID, "2024-03-05", "TSLA", -25.5)
	updated.ID = entry.ID
	updated.Direction = models.DirectionShort
	updated.Confidence = &confidence
	updated.SetupQuality = &quality
	if err := entries.UpdateEntry(updated); err != nil {
		t.Fatalf("UpdateEntry failed: %v", err)
	}

	got, err := entries.GetEntriesByDate(userID, "2024-03-05")
	if err != nil {
		t.Fatalf("GetEntriesByDate failed: %v", err)
	}
	e := got[0]
	if e.Ticker != "TSLA" || e.Pnl != -25.5 || e.Direction != models.DirectionShort {
		t.Errorf("Update not applied: %+v", e)
	}
	if e.Confidence == nil || *e.Confidence != 4 {
		t.Errorf("Expected confidence 4, got %v", e.Confidence)
	}
	if e.SetupQuality == nil || *e.SetupQuality != models.SetupQualityA {
		t.Errorf("Expected setup quality A, got %v", e.SetupQuality)
	}
}
