package workout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/store"
)

// SetField names a mutable per-set field for UpdateSet.
type SetField string

// The two fields UpdateSet can overwrite.
const (
	FieldWeight SetField = "weight"
	FieldReps   SetField = "reps"
)

// Options tunes the session recorder.
type Options struct {
	// RestSeconds is the fixed rest countdown started when a set is
	// completed. Defaults to 90.
	RestSeconds int
	// AutoSaveInterval is the periodic auto-save cadence. Defaults to 30s.
	AutoSaveInterval time.Duration
	// StreakOncePerDay suppresses streak increments for repeated
	// finalizations on the same calendar day. Off by default.
	StreakOncePerDay bool
}

func (o Options) withDefaults() Options {
	if o.RestSeconds <= 0 {
		o.RestSeconds = 90
	}
	if o.AutoSaveInterval <= 0 {
		o.AutoSaveInterval = 30 * time.Second
	}
	return o
}

// Recorder drives a single workout attempt through
// not-started → in-progress → completed. One session is in progress at a
// time; its rest countdown and auto-save ticker are owned by the session
// lifecycle and cancelled on teardown.
type Recorder struct {
	store *store.Store
	reg   *Registry
	log   *slog.Logger
	opts  Options
	clock func() time.Time

	mu       sync.Mutex
	current  *models.WorkoutSession
	rest     *Countdown
	saveStop chan struct{}
}

// NewRecorder creates a Recorder over the store and template registry.
func NewRecorder(st *store.Store, reg *Registry, opts Options, log *slog.Logger) *Recorder {
	return &Recorder{
		store: st,
		reg:   reg,
		log:   log,
		opts:  opts.withDefaults(),
		clock: time.Now,
	}
}

// autoSaveKey is the auto-save slot for an in-progress session of the
// given workout type.
func autoSaveKey(workoutType string) string {
	return "workout-" + workoutType
}

// Start begins a session for the given workout type. A valid auto-saved
// payload for the same type is restored verbatim; otherwise the session
// is initialized from the template, each set pre-filled with the
// exercise's last recorded weight/reps. A missing template yields a
// session with no exercises rather than an error.
func (r *Recorder) Start(ctx context.Context, workoutType string) (models.WorkoutSession, error) {
	sess, restored, err := r.loadOrInit(ctx, workoutType)
	if err != nil {
		return models.WorkoutSession{}, err
	}

	r.mu.Lock()
	r.teardownLocked()
	r.current = &sess
	r.saveStop = make(chan struct{})
	go r.autoSaveLoop(r.saveStop)
	r.mu.Unlock()

	r.log.Info("session started", "id", sess.ID, "type", workoutType, "restored", restored)
	return sess, nil
}

func (r *Recorder) loadOrInit(ctx context.Context, workoutType string) (models.WorkoutSession, bool, error) {
	raw, ok, err := r.store.GetAutoSave(ctx, autoSaveKey(workoutType))
	if err != nil {
		return models.WorkoutSession{}, false, err
	}
	if ok {
		var sess models.WorkoutSession
		if err := json.Unmarshal(raw, &sess); err == nil && sess.ID != "" {
			return sess, true, nil
		}
		// Unreadable auto-save falls through to a fresh session.
		r.log.Warn("discarding unreadable autosave", "type", workoutType)
	}

	sess := models.WorkoutSession{
		ID:          uuid.NewString(),
		Timestamp:   r.clock(),
		WorkoutType: workoutType,
	}
	tpl, found, err := r.reg.Template(ctx, workoutType)
	if err != nil {
		return models.WorkoutSession{}, false, err
	}
	if !found {
		return sess, false, nil
	}
	for _, ex := range tpl.Exercises {
		entry, err := r.store.History(ctx, ex.Name)
		if err != nil {
			return models.WorkoutSession{}, false, err
		}
		sets := make([]models.SetEntry, ex.TargetSets)
		if entry != nil {
			for i := range sets {
				sets[i].Weight = entry.Weight
				sets[i].Reps = entry.Reps
			}
		}
		sess.Exercises = append(sess.Exercises, models.SessionExercise{
			ExerciseID: ex.ID,
			Name:       ex.Name,
			Sets:       sets,
		})
	}
	return sess, false, nil
}

// Current returns a copy of the in-progress session, or ok=false when
// none is active.
func (r *Recorder) Current() (models.WorkoutSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return models.WorkoutSession{}, false
	}
	return cloneSession(*r.current), true
}

// UpdateSet overwrites weight or reps on one set. The recorder does not
// guard completed sets; that policy belongs to the caller.
func (r *Recorder) UpdateSet(ctx context.Context, exercise, set int, field SetField, value float64) error {
	r.mu.Lock()
	if r.current == nil {
		r.mu.Unlock()
		return ErrNoActiveSession
	}
	entry, err := r.setAt(exercise, set)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	switch field {
	case FieldWeight:
		entry.Weight = value
	case FieldReps:
		entry.Reps = int(value)
	default:
		r.mu.Unlock()
		return fmt.Errorf("%w: unknown set field %q", ErrValidation, field)
	}
	r.mu.Unlock()

	r.autoSave(ctx)
	return nil
}

// CompleteSet marks a set completed and starts the rest countdown. A set
// with zero weight or zero reps is rejected and left untouched.
func (r *Recorder) CompleteSet(ctx context.Context, exercise, set int) error {
	r.mu.Lock()
	if r.current == nil {
		r.mu.Unlock()
		return ErrNoActiveSession
	}
	entry, err := r.setAt(exercise, set)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	if entry.Weight <= 0 || entry.Reps <= 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: weight and reps must be positive to complete a set", ErrValidation)
	}
	entry.Completed = true
	if r.rest != nil {
		r.rest.Stop()
	}
	r.rest = StartCountdown(r.opts.RestSeconds)
	r.mu.Unlock()

	r.autoSave(ctx)
	return nil
}

// RestRemaining returns the seconds left on the rest countdown, zero when
// no countdown is running.
func (r *Recorder) RestRemaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rest == nil {
		return 0
	}
	return r.rest.Remaining()
}

// Finalize commits the in-progress session: in one store transaction it
// upserts the session record, overwrites the history entry of every
// exercise with a completed set (the last completed set processed wins,
// not the heaviest), increments the streak, and advances the active
// split's day. The auto-save slot for the workout type is then cleared
// and the session timers torn down.
func (r *Recorder) Finalize(ctx context.Context) (models.WorkoutSession, error) {
	r.mu.Lock()
	if r.current == nil {
		r.mu.Unlock()
		return models.WorkoutSession{}, ErrNoActiveSession
	}
	if r.current.Completed {
		r.mu.Unlock()
		return models.WorkoutSession{}, ErrSessionCompleted
	}
	sess := cloneSession(*r.current)
	r.mu.Unlock()

	sess.Completed = true
	now := r.clock()

	err := r.store.Update(ctx, func(tx *store.RecordTx) error {
		if err := tx.UpsertSession(sess); err != nil {
			return err
		}

		for _, ex := range sess.Exercises {
			for _, set := range ex.Sets {
				if !set.Completed {
					continue
				}
				entry := models.HistoryEntry{Weight: set.Weight, Reps: set.Reps, Date: now}
				if err := tx.SetHistory(ex.Name, entry); err != nil {
					return err
				}
			}
		}

		st, err := tx.SplitState()
		if err != nil {
			return err
		}
		active := st.Active()

		countStreak := true
		if r.opts.StreakOncePerDay && active != nil && active.LastWorkout != nil && sameDay(*active.LastWorkout, now) {
			countStreak = false
		}
		if countStreak {
			streak, err := tx.Streak()
			if err != nil {
				return err
			}
			if err := tx.SetStreak(streak + 1); err != nil {
				return err
			}
		}

		if active != nil {
			advanceSplit(active)
			active.LastWorkout = &now
			if err := tx.SetSplitState(st); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.WorkoutSession{}, err
	}

	if err := r.store.ClearAutoSave(ctx, autoSaveKey(sess.WorkoutType)); err != nil {
		r.log.Warn("clearing autosave after finalize", "error", err)
	}

	r.mu.Lock()
	r.current = nil
	r.teardownLocked()
	r.mu.Unlock()

	r.log.Info("session finalized", "id", sess.ID, "type", sess.WorkoutType)
	return sess, nil
}

// Teardown cancels the session timers without finalizing. The in-progress
// state survives in the auto-save slot for later recovery.
func (r *Recorder) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardownLocked()
	r.current = nil
}

func (r *Recorder) teardownLocked() {
	if r.rest != nil {
		r.rest.Stop()
		r.rest = nil
	}
	if r.saveStop != nil {
		close(r.saveStop)
		r.saveStop = nil
	}
}

// setAt returns a pointer into the current session's set grid. Caller
// holds r.mu.
func (r *Recorder) setAt(exercise, set int) (*models.SetEntry, error) {
	if exercise < 0 || exercise >= len(r.current.Exercises) {
		return nil, fmt.Errorf("%w: exercise index %d out of range", ErrValidation, exercise)
	}
	ex := &r.current.Exercises[exercise]
	if set < 0 || set >= len(ex.Sets) {
		return nil, fmt.Errorf("%w: set index %d out of range", ErrValidation, set)
	}
	return &ex.Sets[set], nil
}

func (r *Recorder) autoSaveLoop(stop chan struct{}) {
	ticker := time.NewTicker(r.opts.AutoSaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.autoSave(context.Background())
		}
	}
}

// autoSave persists the in-progress session to its slot. Best effort:
// the authoritative record is only written at finalize time.
func (r *Recorder) autoSave(ctx context.Context) {
	r.mu.Lock()
	if r.current == nil {
		r.mu.Unlock()
		return
	}
	sess := cloneSession(*r.current)
	r.mu.Unlock()

	raw, err := json.Marshal(sess)
	if err != nil {
		r.log.Warn("encoding autosave", "error", err)
		return
	}
	if err := r.store.AutoSave(ctx, autoSaveKey(sess.WorkoutType), raw); err != nil {
		r.log.Warn("writing autosave", "error", err)
	}
}

func cloneSession(s models.WorkoutSession) models.WorkoutSession {
	out := s
	out.Exercises = make([]models.SessionExercise, len(s.Exercises))
	for i, ex := range s.Exercises {
		out.Exercises[i] = ex
		out.Exercises[i].Sets = append([]models.SetEntry(nil), ex.Sets...)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
