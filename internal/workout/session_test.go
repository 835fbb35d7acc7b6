package workout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/store"
)

// quietOptions keeps the auto-save ticker out of the way so tests control
// every store write themselves.
func quietOptions() Options {
	return Options{RestSeconds: 90, AutoSaveInterval: time.Hour}
}

func newTestRecorder(t *testing.T, st *store.Store, opts Options) *Recorder {
	t.Helper()
	rec := NewRecorder(st, NewRegistry(st, testLogger()), opts, testLogger())
	t.Cleanup(rec.Teardown)
	return rec
}

// TestStartFromTemplate verifies a fresh session mirrors the template's
// exercise list and set counts, pre-filled from history where present.
func TestStartFromTemplate(t *testing.T) {
	st := newTestStore(t)
	rec := newTestRecorder(t, st, quietOptions())
	ctx := context.Background()

	err := st.Update(ctx, func(tx *store.RecordTx) error {
		return tx.SetHistory("Bench Press", models.HistoryEntry{Weight: 80, Reps: 8, Date: time.Now()})
	})
	if err != nil {
		t.Fatal(err)
	}

	sess, err := rec.Start(ctx, "Push")
	if err != nil {
		t.Fatal(err)
	}
	if sess.ID == "" || sess.WorkoutType != "Push" || sess.Completed {
		t.Fatalf("unexpected session header: %+v", sess)
	}

	tpl := DefaultTemplates()["Push"]
	if len(sess.Exercises) != len(tpl.Exercises) {
		t.Fatalf("len(exercises) = %d, want %d", len(sess.Exercises), len(tpl.Exercises))
	}
	for i, ex := range sess.Exercises {
		if ex.Name != tpl.Exercises[i].Name {
			t.Errorf("exercise %d = %q, want %q", i, ex.Name, tpl.Exercises[i].Name)
		}
		if len(ex.Sets) != tpl.Exercises[i].TargetSets {
			t.Errorf("%s: %d sets, want %d", ex.Name, len(ex.Sets), tpl.Exercises[i].TargetSets)
		}
	}

	// Bench Press has history and is pre-filled; Overhead Press does not.
	for _, set := range sess.Exercises[0].Sets {
		if set.Weight != 80 || set.Reps != 8 || set.Completed {
			t.Fatalf("bench set = %+v, want prefill 80x8 uncompleted", set)
		}
	}
	for _, set := range sess.Exercises[1].Sets {
		if set.Weight != 0 || set.Reps != 0 {
			t.Fatalf("ohp set = %+v, want zero prefill", set)
		}
	}
}

// TestStartUnknownTemplate verifies a session for an unknown workout type
// starts with no exercises instead of failing.
func TestStartUnknownTemplate(t *testing.T) {
	st := newTestStore(t)
	rec := newTestRecorder(t, st, quietOptions())

	sess, err := rec.Start(context.Background(), "Mystery Day")
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.Exercises) != 0 {
		t.Errorf("len(exercises) = %d, want 0", len(sess.Exercises))
	}
}

// TestStartRestoresAutoSave verifies a valid auto-saved session for the
// same workout type is restored verbatim instead of re-initialized.
func TestStartRestoresAutoSave(t *testing.T) {
	st := newTestStore(t)
	rec := newTestRecorder(t, st, quietOptions())
	ctx := context.Background()

	saved := models.WorkoutSession{
		ID:          "abandoned",
		Timestamp:   time.Now().Add(-2 * time.Hour),
		WorkoutType: "Push",
		Exercises: []models.SessionExercise{
			{Name: "Bench Press", Sets: []models.SetEntry{{Weight: 100, Reps: 5, Completed: true}}},
		},
	}
	raw, err := json.Marshal(saved)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.AutoSave(ctx, "workout-Push", raw); err != nil {
		t.Fatal(err)
	}

	sess, err := rec.Start(ctx, "Push")
	if err != nil {
		t.Fatal(err)
	}
	if sess.ID != "abandoned" {
		t.Fatalf("session id = %q, want restored %q", sess.ID, "abandoned")
	}
	if len(sess.Exercises) != 1 || !sess.Exercises[0].Sets[0].Completed {
		t.Errorf("restored exercises = %+v, want the saved state", sess.Exercises)
	}
}

// TestCompleteSetValidation verifies sets with zero weight or reps cannot
// be completed and remain uncompleted.
func TestCompleteSetValidation(t *testing.T) {
	st := newTestStore(t)
	rec := newTestRecorder(t, st, quietOptions())
	ctx := context.Background()

	if _, err := rec.Start(ctx, "Push"); err != nil {
		t.Fatal(err)
	}

	// Weight set, reps still zero.
	if err := rec.UpdateSet(ctx, 0, 0, FieldWeight, 60); err != nil {
		t.Fatal(err)
	}
	if err := rec.CompleteSet(ctx, 0, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("CompleteSet with zero reps = %v, want ErrValidation", err)
	}
	sess, ok := rec.Current()
	if !ok {
		t.Fatal("no current session")
	}
	if sess.Exercises[0].Sets[0].Completed {
		t.Error("rejected set was marked completed")
	}

	if err := rec.UpdateSet(ctx, 0, 0, FieldReps, 10); err != nil {
		t.Fatal(err)
	}
	if err := rec.CompleteSet(ctx, 0, 0); err != nil {
		t.Fatalf("CompleteSet = %v", err)
	}
	sess, _ = rec.Current()
	if !sess.Exercises[0].Sets[0].Completed {
		t.Error("valid set was not marked completed")
	}
	if rec.RestRemaining() <= 0 {
		t.Error("rest countdown did not start after completing a set")
	}

	// Index bounds.
	if err := rec.CompleteSet(ctx, 99, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("out-of-range exercise = %v, want ErrValidation", err)
	}
	if err := rec.UpdateSet(ctx, 0, 99, FieldWeight, 10); !errors.Is(err, ErrValidation) {
		t.Errorf("out-of-range set = %v, want ErrValidation", err)
	}
}

// TestFinalize verifies finalizing writes the session, overwrites history
// with the last completed set, bumps the streak by one, advances the
// active split and clears the auto-save slot.
func TestFinalize(t *testing.T) {
	st := newTestStore(t)
	rec := newTestRecorder(t, st, quietOptions())
	eng := NewSplitEngine(st, testLogger())
	ctx := context.Background()

	split, err := eng.Create(ctx, "PPL", []string{"Push", "Pull", "Legs"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := rec.Start(ctx, "Push"); err != nil {
		t.Fatal(err)
	}
	// Two completed sets on Bench Press; history must hold the second.
	for i, set := range []models.SetEntry{{Weight: 100, Reps: 5}, {Weight: 95, Reps: 8}} {
		if err := rec.UpdateSet(ctx, 0, i, FieldWeight, set.Weight); err != nil {
			t.Fatal(err)
		}
		if err := rec.UpdateSet(ctx, 0, i, FieldReps, float64(set.Reps)); err != nil {
			t.Fatal(err)
		}
		if err := rec.CompleteSet(ctx, 0, i); err != nil {
			t.Fatal(err)
		}
	}

	done, err := rec.Finalize(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !done.Completed {
		t.Error("finalized session not marked completed")
	}
	if _, ok := rec.Current(); ok {
		t.Error("session still current after finalize")
	}

	sessions, err := st.Sessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].ID != done.ID || !sessions[0].Completed {
		t.Errorf("stored sessions = %+v, want the finalized one", sessions)
	}

	entry, err := st.History(ctx, "Bench Press")
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || entry.Weight != 95 || entry.Reps != 8 {
		t.Errorf("history = %+v, want last completed set 95x8", entry)
	}

	streak, err := st.Streak(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if streak != 1 {
		t.Errorf("streak = %d, want 1", streak)
	}

	active, err := eng.ActiveSplit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if active.CurrentDay != 1 {
		t.Errorf("currentDay = %d, want 1 after one finalize", active.CurrentDay)
	}
	if active.LastWorkout == nil {
		t.Error("LastWorkout not stamped on the active split")
	}
	if active.ID != split.ID {
		t.Errorf("active id = %s, want %s", active.ID, split.ID)
	}

	if _, ok, err := st.GetAutoSave(ctx, "workout-Push"); err != nil || ok {
		t.Errorf("autosave after finalize: ok=%v err=%v, want cleared", ok, err)
	}

	if _, err := rec.Finalize(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("second finalize = %v, want ErrNoActiveSession", err)
	}
}

// TestFinalizeOneRepMax verifies a finalized 100x5 set yields an Epley
// estimate of 117 through the analytics top-lifts view.
func TestFinalizeOneRepMax(t *testing.T) {
	st := newTestStore(t)
	rec := newTestRecorder(t, st, quietOptions())
	ctx := context.Background()

	if _, err := rec.Start(ctx, "Push"); err != nil {
		t.Fatal(err)
	}
	if err := rec.UpdateSet(ctx, 0, 0, FieldWeight, 100); err != nil {
		t.Fatal(err)
	}
	if err := rec.UpdateSet(ctx, 0, 0, FieldReps, 5); err != nil {
		t.Fatal(err)
	}
	if err := rec.CompleteSet(ctx, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.Finalize(ctx); err != nil {
		t.Fatal(err)
	}

	lifts, err := NewAnalytics(st).TopLifts(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(lifts) != 1 {
		t.Fatalf("len(lifts) = %d, want 1", len(lifts))
	}
	if lifts[0].Exercise != "Bench Press" || lifts[0].OneRepMax != 117 {
		t.Errorf("top lift = %+v, want Bench Press with 1RM 117", lifts[0])
	}
}

// TestStreakOncePerDay verifies the once-per-day option suppresses the
// second same-day increment while the default counts every finalize.
func TestStreakOncePerDay(t *testing.T) {
	ctx := context.Background()

	finalizeTwice := func(t *testing.T, opts Options) int {
		t.Helper()
		st := newTestStore(t)
		rec := newTestRecorder(t, st, opts)
		eng := NewSplitEngine(st, testLogger())
		if _, err := eng.Create(ctx, "PPL", []string{"Push", "Pull"}); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 2; i++ {
			if _, err := rec.Start(ctx, "Push"); err != nil {
				t.Fatal(err)
			}
			if err := rec.UpdateSet(ctx, 0, 0, FieldWeight, 60); err != nil {
				t.Fatal(err)
			}
			if err := rec.UpdateSet(ctx, 0, 0, FieldReps, 5); err != nil {
				t.Fatal(err)
			}
			if err := rec.CompleteSet(ctx, 0, 0); err != nil {
				t.Fatal(err)
			}
			if _, err := rec.Finalize(ctx); err != nil {
				t.Fatal(err)
			}
		}
		streak, err := st.Streak(ctx)
		if err != nil {
			t.Fatal(err)
		}
		return streak
	}

	if got := finalizeTwice(t, quietOptions()); got != 2 {
		t.Errorf("default streak after two same-day finalizes = %d, want 2", got)
	}
	opts := quietOptions()
	opts.StreakOncePerDay = true
	if got := finalizeTwice(t, opts); got != 1 {
		t.Errorf("once-per-day streak after two same-day finalizes = %d, want 1", got)
	}
}
