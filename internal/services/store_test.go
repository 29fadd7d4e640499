package services_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hatstore-backend/internal/models"
	"hatstore-backend/internal/services"
)

func TestFileSessionStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	store := services.NewFileSessionStore(path)

	// Missing file loads as an empty mapping, not an error.
	sessions, err := store.Load()
	if err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("Expected empty mapping, got %d entries", len(sessions))
	}

	sessions["42"] = models.SessionRecord{
		ID:         42,
		FirstName:  "Ada",
		Username:   "ada",
		ReceivedAt: "2026-01-02T15:04:05Z",
	}
	if err := store.Save(sessions); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	record, ok := loaded["42"]
	if !ok {
		t.Fatal("Record for user 42 missing after reload")
	}
	if record.FirstName != "Ada" || record.Username != "ada" {
		t.Errorf("Reloaded record = %+v", record)
	}

	// Latest write wins, whole document.
	sessions["42"] = models.SessionRecord{ID: 42, FirstName: "Grace"}
	if err := store.Save(sessions); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}
	loaded, _ = store.Load()
	if loaded["42"].FirstName != "Grace" {
		t.Errorf("Second write should win, got %q", loaded["42"].FirstName)
	}
}

func TestFileSessionStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := services.NewFileSessionStore(path).Load(); err == nil {
		t.Error("Corrupt sessions file should surface an error to the caller")
	}
}

func TestFileLastSpinStoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last-spin.json")
	store := services.NewFileLastSpinStore(path)

	first := models.SpinSnapshot{
		Timestamp: "2026-01-02T15:04:05Z",
		UserID:    "1",
		BetAmount: 5,
		Result:    &models.SpinResult{Symbols: []string{"bar", "bar", "bar"}, DiceValue: 1, IsWin: true},
	}
	if err := store.Write(first); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	second := first
	second.UserID = "2"
	second.Result = &models.SpinResult{Symbols: []string{"777", "777", "777"}, DiceValue: 64, IsWin: true, IsJackpot: true}
	if err := store.Write(second); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read snapshot file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"userId": "2"`) || !strings.Contains(content, `"diceValue": 64`) {
		t.Errorf("Snapshot file should hold only the latest record:\n%s", content)
	}
}

func TestFileMappingSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	content := `[
		{"value": 1, "first": "bar", "second": "bar", "third": "bar"},
		{"value": 64, "first": "seven", "second": "seven", "third": "seven"}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := services.NewFileMappingSource(path).Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[1].Value != 64 || entries[1].First != "seven" {
		t.Errorf("Second entry = %+v", entries[1])
	}

	if _, err := services.NewFileMappingSource(filepath.Join(t.TempDir(), "missing.json")).Read(); err == nil {
		t.Error("Missing mapping file should be an error (mapper falls back)")
	}
}
