package workout

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/meltforce/liftlog/internal/store"
)

// Tier is a streak bucket with its presentation hints.
type Tier struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Streak tier boundaries. The 3-day mark changes the base tier's color
// without leaving it; tier changes happen at 7, 14 and 30.
const (
	streakAccent   = 3
	streakMomentum = 7
	streakOnFire   = 14
	streakChampion = 30
)

// StreakTier maps a streak count to its tier.
func StreakTier(streak int) Tier {
	switch {
	case streak >= streakChampion:
		return Tier{Name: "champion", Color: "gold"}
	case streak >= streakOnFire:
		return Tier{Name: "on fire", Color: "red"}
	case streak >= streakMomentum:
		return Tier{Name: "momentum", Color: "orange"}
	case streak >= streakAccent:
		return Tier{Name: "base", Color: "green"}
	default:
		return Tier{Name: "base", Color: "gray"}
	}
}

// EstimateOneRepMax estimates the maximum single-rep lift from a
// weight × reps pair using the Epley formula:
// round(weight * (1 + reps/30)).
func EstimateOneRepMax(weight float64, reps int) int {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	return int(math.Round(weight * (1 + float64(reps)/30)))
}

// Lift is one exercise's latest history entry with its estimated 1RM.
type Lift struct {
	Exercise  string    `json:"exercise"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	OneRepMax int       `json:"oneRepMax"`
	Date      time.Time `json:"date"`
}

// Achievement is a purely derived unlock; nothing is persisted.
type Achievement struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
	Unlocked  bool   `json:"unlocked"`
}

// ProgressReport is the read-side progress view: streak, tier,
// achievements and the 7-slot weekly completion row.
type ProgressReport struct {
	Streak       int           `json:"streak"`
	Tier         Tier          `json:"tier"`
	Achievements []Achievement `json:"achievements"`
	WeeklyView   [7]bool       `json:"weeklyView"`
}

// Stats holds aggregate counts over all stored sessions.
type Stats struct {
	TotalSessions     int            `json:"totalSessions"`
	CompletedSets     int            `json:"completedSets"`
	RecordedExercises int            `json:"recordedExercises"`
	SessionsByType    map[string]int `json:"sessionsByType"`
}

// Analytics derives progress metrics from stored history. Read-only.
type Analytics struct {
	store *store.Store
}

// NewAnalytics creates an Analytics over the store.
func NewAnalytics(st *store.Store) *Analytics {
	return &Analytics{store: st}
}

// TopLifts returns history entries sorted by descending estimated 1RM,
// truncated to limit.
func (a *Analytics) TopLifts(ctx context.Context, limit int) ([]Lift, error) {
	history, err := a.store.AllHistory(ctx)
	if err != nil {
		return nil, err
	}
	lifts := make([]Lift, 0, len(history))
	for name, e := range history {
		lifts = append(lifts, Lift{
			Exercise:  name,
			Weight:    e.Weight,
			Reps:      e.Reps,
			OneRepMax: EstimateOneRepMax(e.Weight, e.Reps),
			Date:      e.Date,
		})
	}
	sort.Slice(lifts, func(i, j int) bool {
		if lifts[i].OneRepMax != lifts[j].OneRepMax {
			return lifts[i].OneRepMax > lifts[j].OneRepMax
		}
		return lifts[i].Exercise < lifts[j].Exercise
	})
	if limit > 0 && len(lifts) > limit {
		lifts = lifts[:limit]
	}
	return lifts, nil
}

// Progress computes the full progress report from current state.
func (a *Analytics) Progress(ctx context.Context) (*ProgressReport, error) {
	streak, err := a.store.Streak(ctx)
	if err != nil {
		return nil, err
	}
	recorded, err := a.recordedExercises(ctx)
	if err != nil {
		return nil, err
	}
	return &ProgressReport{
		Streak:       streak,
		Tier:         StreakTier(streak),
		Achievements: achievements(streak, recorded),
		WeeklyView:   WeeklyView(streak),
	}, nil
}

// Stats aggregates counts over all stored sessions.
func (a *Analytics) Stats(ctx context.Context) (*Stats, error) {
	sessions, err := a.store.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{SessionsByType: make(map[string]int)}
	for _, s := range sessions {
		stats.TotalSessions++
		stats.SessionsByType[s.WorkoutType]++
		for _, ex := range s.Exercises {
			recorded := false
			for _, set := range ex.Sets {
				if set.Completed {
					stats.CompletedSets++
					recorded = true
				}
			}
			if recorded {
				stats.RecordedExercises++
			}
		}
	}
	return stats, nil
}

// recordedExercises counts exercise entries with at least one completed
// set across all stored sessions.
func (a *Analytics) recordedExercises(ctx context.Context) (int, error) {
	stats, err := a.Stats(ctx)
	if err != nil {
		return 0, err
	}
	return stats.RecordedExercises, nil
}

// WeeklyView returns the 7-slot completion row: slot i is done when
// i < min(streak, 7).
func WeeklyView(streak int) [7]bool {
	var week [7]bool
	done := streak
	if done > 7 {
		done = 7
	}
	for i := 0; i < done; i++ {
		week[i] = true
	}
	return week
}

func achievements(streak, recordedExercises int) []Achievement {
	return []Achievement{
		{ID: "streak-7", Name: "One Week Strong", Threshold: streakMomentum, Unlocked: streak >= streakMomentum},
		{ID: "streak-14", Name: "Two Week Fire", Threshold: streakOnFire, Unlocked: streak >= streakOnFire},
		{ID: "streak-30", Name: "Monthly Champion", Threshold: streakChampion, Unlocked: streak >= streakChampion},
		{ID: "exercises-50", Name: "Volume Veteran", Threshold: 50, Unlocked: recordedExercises >= 50},
	}
}
