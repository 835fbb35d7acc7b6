package models

import (
	"encoding/json"
	"time"
)

// DayRest is the reserved split day label meaning "no workout today".
// The split engine stores it like any other label; the session recorder
// and analytics treat it as a sentinel.
const DayRest = "Rest"

// Exercise is one entry in a workout template: a named movement with a
// target set count and the last recorded weight/reps for pre-filling.
type Exercise struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	TargetSets int        `json:"targetSets"`
	LastWeight float64    `json:"lastWeight,omitempty"`
	LastReps   int        `json:"lastReps,omitempty"`
	LastDate   *time.Time `json:"lastDate,omitempty"`
}

// WorkoutTemplate is a named, ordered list of exercises for one workout
// type. The name doubles as the lookup key in the template mapping.
type WorkoutTemplate struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// WorkoutSplit is a cyclic schedule of named days with a pointer to the
// current day. CurrentDay is always kept in [0, len(Days)) by the engine.
type WorkoutSplit struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Days        []string   `json:"days"`
	CurrentDay  int        `json:"currentDay"`
	LastWorkout *time.Time `json:"lastWorkout,omitempty"`
}

// CurrentDayLabel returns the label of the split's current day.
func (s WorkoutSplit) CurrentDayLabel() string {
	if len(s.Days) == 0 {
		return ""
	}
	return s.Days[s.CurrentDay%len(s.Days)]
}

// SplitState is the normalized split record: the full split list plus the
// id of the active split. Both are written in a single store transaction
// so the active reference can never point at stale content.
type SplitState struct {
	Splits   []WorkoutSplit `json:"splits"`
	ActiveID string         `json:"activeId,omitempty"`
}

// Active returns the active split, or nil when none is activated.
func (st SplitState) Active() *WorkoutSplit {
	if st.ActiveID == "" {
		return nil
	}
	for i := range st.Splits {
		if st.Splits[i].ID == st.ActiveID {
			return &st.Splits[i]
		}
	}
	return nil
}

// SetEntry is one set within a session: the only fields that mutate once
// a session has started.
type SetEntry struct {
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
}

// SessionExercise is an exercise within a session with its fixed-length
// set list.
type SessionExercise struct {
	ExerciseID string     `json:"exerciseId"`
	Name       string     `json:"name"`
	Sets       []SetEntry `json:"sets"`
}

// WorkoutSession is one recorded attempt at a workout. Re-saving with the
// same ID overwrites the stored record in place.
type WorkoutSession struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	WorkoutType string            `json:"workoutType"`
	Exercises   []SessionExercise `json:"exercises"`
	Completed   bool              `json:"completed"`
}

// HistoryEntry is the latest-value projection for one exercise name:
// the most recent completed set's weight/reps and when it happened.
type HistoryEntry struct {
	Weight float64   `json:"weight"`
	Reps   int       `json:"reps"`
	Date   time.Time `json:"date"`
}

// AutoSaveEnvelope wraps an opaque auto-saved payload with its write
// timestamp. Envelopes older than the store's TTL are treated as absent.
type AutoSaveEnvelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}
