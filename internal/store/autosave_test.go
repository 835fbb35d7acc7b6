package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

// TestAutoSaveWithinTTL verifies the payload is returned while younger
// than 24 hours.
func TestAutoSaveWithinTTL(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }

	payload := json.RawMessage(`{"hello":"world"}`)
	if err := st.AutoSave(ctx, "workout-Push", payload); err != nil {
		t.Fatal(err)
	}

	st.now = func() time.Time { return base.Add(23 * time.Hour) }
	got, ok, err := st.GetAutoSave(ctx, "workout-Push")
	if err != nil || !ok {
		t.Fatalf("GetAutoSave = ok=%v err=%v, want present", ok, err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %s, want %s", got, payload)
	}
}

// TestAutoSaveExpiry verifies the 24-hour boundary: exactly 24h + 1ms
// after the write the slot is treated as absent, but the dead entry is
// not deleted until explicitly cleared.
func TestAutoSaveExpiry(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }
	if err := st.AutoSave(ctx, "workout-Legs", json.RawMessage(`{}`)); err != nil {
		t.Fatal(err)
	}

	st.now = func() time.Time { return base.Add(24*time.Hour + time.Millisecond) }
	if _, ok, err := st.GetAutoSave(ctx, "workout-Legs"); err != nil || ok {
		t.Errorf("GetAutoSave after 24h+1ms = ok=%v err=%v, want absent", ok, err)
	}

	// The expired envelope stays on disk until cleared.
	if _, present, _ := st.kv.Get(ctx, autoSavePrefix+"workout-Legs"); !present {
		t.Error("expired envelope was proactively deleted")
	}

	if err := st.ClearAutoSave(ctx, "workout-Legs"); err != nil {
		t.Fatal(err)
	}
	if _, present, _ := st.kv.Get(ctx, autoSavePrefix+"workout-Legs"); present {
		t.Error("envelope still present after ClearAutoSave")
	}
}

// TestAutoSaveMissing verifies a never-written slot reads as absent.
func TestAutoSaveMissing(t *testing.T) {
	st := newTestStore(t)
	if _, ok, err := st.GetAutoSave(context.Background(), "workout-Pull"); err != nil || ok {
		t.Errorf("GetAutoSave(missing) = ok=%v err=%v, want absent", ok, err)
	}
}
