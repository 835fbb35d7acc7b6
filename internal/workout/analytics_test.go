package workout

import (
	"context"
	"testing"
	"time"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/store"
)

// TestStreakTier verifies the tier boundaries, including the green color
// accent at 3 days that does not leave the base tier.
func TestStreakTier(t *testing.T) {
	tests := []struct {
		streak int
		name   string
		color  string
	}{
		{0, "base", "gray"},
		{2, "base", "gray"},
		{3, "base", "green"},
		{6, "base", "green"},
		{7, "momentum", "orange"},
		{13, "momentum", "orange"},
		{14, "on fire", "red"},
		{29, "on fire", "red"},
		{30, "champion", "gold"},
		{365, "champion", "gold"},
	}
	for _, tt := range tests {
		got := StreakTier(tt.streak)
		if got.Name != tt.name || got.Color != tt.color {
			t.Errorf("StreakTier(%d) = %+v, want %s/%s", tt.streak, got, tt.name, tt.color)
		}
	}
}

// TestEstimateOneRepMax verifies the Epley estimate, with rounding, and
// the zero result for non-positive inputs.
func TestEstimateOneRepMax(t *testing.T) {
	tests := []struct {
		weight float64
		reps   int
		want   int
	}{
		{100, 5, 117},
		{100, 1, 103},
		{60, 12, 84},
		{82.5, 8, 105},
		{100, 30, 200},
		{0, 5, 0},
		{100, 0, 0},
		{-50, 5, 0},
	}
	for _, tt := range tests {
		if got := EstimateOneRepMax(tt.weight, tt.reps); got != tt.want {
			t.Errorf("EstimateOneRepMax(%v, %d) = %d, want %d", tt.weight, tt.reps, got, tt.want)
		}
	}
}

// TestWeeklyView verifies the 7-slot row fills left to right and saturates
// at seven.
func TestWeeklyView(t *testing.T) {
	tests := []struct {
		streak int
		done   int
	}{
		{0, 0},
		{1, 1},
		{4, 4},
		{7, 7},
		{12, 7},
	}
	for _, tt := range tests {
		week := WeeklyView(tt.streak)
		for i, slot := range week {
			want := i < tt.done
			if slot != want {
				t.Errorf("WeeklyView(%d)[%d] = %v, want %v", tt.streak, i, slot, want)
			}
		}
	}
}

// seedHistory writes one history entry per lift in a single transaction.
func seedHistory(t *testing.T, st *store.Store, lifts map[string]models.HistoryEntry) {
	t.Helper()
	err := st.Update(context.Background(), func(tx *store.RecordTx) error {
		for name, e := range lifts {
			if err := tx.SetHistory(name, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

// TestTopLifts verifies ordering by descending estimated 1RM, name
// tiebreak, and truncation to the limit.
func TestTopLifts(t *testing.T) {
	st := newTestStore(t)
	now := time.Now()
	seedHistory(t, st, map[string]models.HistoryEntry{
		"Deadlift":       {Weight: 180, Reps: 3, Date: now}, // 198
		"Squat":          {Weight: 150, Reps: 5, Date: now}, // 175
		"Bench Press":    {Weight: 100, Reps: 5, Date: now}, // 117
		"Barbell Row":    {Weight: 90, Reps: 9, Date: now},  // 117, ties bench
		"Overhead Press": {Weight: 60, Reps: 8, Date: now},  // 76
		"Bicep Curl":     {Weight: 20, Reps: 12, Date: now}, // 28
	})

	lifts, err := NewAnalytics(st).TopLifts(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Deadlift", "Squat", "Barbell Row", "Bench Press", "Overhead Press"}
	if len(lifts) != len(want) {
		t.Fatalf("len(lifts) = %d, want %d", len(lifts), len(want))
	}
	for i, name := range want {
		if lifts[i].Exercise != name {
			t.Errorf("lifts[%d] = %s, want %s", i, lifts[i].Exercise, name)
		}
	}
	if lifts[0].OneRepMax != 198 {
		t.Errorf("top 1RM = %d, want 198", lifts[0].OneRepMax)
	}
}

// TestProgress verifies the report ties streak, tier, achievements and
// weekly view together.
func TestProgress(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	err := st.Update(ctx, func(tx *store.RecordTx) error {
		return tx.SetStreak(14)
	})
	if err != nil {
		t.Fatal(err)
	}

	report, err := NewAnalytics(st).Progress(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.Streak != 14 || report.Tier.Name != "on fire" {
		t.Errorf("report = streak %d tier %s, want 14/on fire", report.Streak, report.Tier.Name)
	}
	for _, slot := range report.WeeklyView {
		if !slot {
			t.Error("weekly view not saturated at streak 14")
			break
		}
	}

	unlocked := map[string]bool{}
	for _, a := range report.Achievements {
		unlocked[a.ID] = a.Unlocked
	}
	if !unlocked["streak-7"] || !unlocked["streak-14"] {
		t.Error("streak-7 and streak-14 should be unlocked at streak 14")
	}
	if unlocked["streak-30"] || unlocked["exercises-50"] {
		t.Error("streak-30 and exercises-50 should stay locked")
	}
}

// TestStats verifies the aggregate counters over stored sessions.
func TestStats(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sessions := []models.WorkoutSession{
		{
			ID: "s1", WorkoutType: "Push", Completed: true,
			Exercises: []models.SessionExercise{
				{Name: "Bench Press", Sets: []models.SetEntry{
					{Weight: 100, Reps: 5, Completed: true},
					{Weight: 100, Reps: 5, Completed: true},
				}},
				{Name: "Overhead Press", Sets: []models.SetEntry{
					{Weight: 0, Reps: 0}, // never completed, not recorded
				}},
			},
		},
		{
			ID: "s2", WorkoutType: "Pull", Completed: true,
			Exercises: []models.SessionExercise{
				{Name: "Deadlift", Sets: []models.SetEntry{
					{Weight: 180, Reps: 3, Completed: true},
				}},
			},
		},
		{ID: "s3", WorkoutType: "Push"},
	}
	err := st.Update(ctx, func(tx *store.RecordTx) error {
		for _, s := range sessions {
			if err := tx.UpsertSession(s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := NewAnalytics(st).Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, want 3", stats.TotalSessions)
	}
	if stats.CompletedSets != 3 {
		t.Errorf("CompletedSets = %d, want 3", stats.CompletedSets)
	}
	if stats.RecordedExercises != 2 {
		t.Errorf("RecordedExercises = %d, want 2", stats.RecordedExercises)
	}
	if stats.SessionsByType["Push"] != 2 || stats.SessionsByType["Pull"] != 1 {
		t.Errorf("SessionsByType = %v", stats.SessionsByType)
	}
}
