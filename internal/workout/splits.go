package workout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/store"
)

// SplitEngine manages the rotating workout splits. All mutations rewrite
// the normalized split record in a single store transaction, which is
// what keeps the legacy active-split copy from ever diverging.
type SplitEngine struct {
	store *store.Store
	log   *slog.Logger
}

// NewSplitEngine creates a SplitEngine over the store.
func NewSplitEngine(st *store.Store, log *slog.Logger) *SplitEngine {
	return &SplitEngine{store: st, log: log}
}

// Splits returns every stored split.
func (e *SplitEngine) Splits(ctx context.Context) ([]models.WorkoutSplit, error) {
	st, err := e.store.SplitState(ctx)
	if err != nil {
		return nil, err
	}
	return st.Splits, nil
}

// ActiveSplit returns the active split, or nil when none is activated.
func (e *SplitEngine) ActiveSplit(ctx context.Context) (*models.WorkoutSplit, error) {
	st, err := e.store.SplitState(ctx)
	if err != nil {
		return nil, err
	}
	return st.Active(), nil
}

// Create adds a new split. Empty names and empty day labels are rejected.
// The first split ever created becomes active automatically.
func (e *SplitEngine) Create(ctx context.Context, name string, days []string) (models.WorkoutSplit, error) {
	if strings.TrimSpace(name) == "" {
		return models.WorkoutSplit{}, fmt.Errorf("%w: split name must not be empty", ErrValidation)
	}
	if len(days) == 0 {
		return models.WorkoutSplit{}, fmt.Errorf("%w: split needs at least one day", ErrValidation)
	}
	for _, d := range days {
		if strings.TrimSpace(d) == "" {
			return models.WorkoutSplit{}, fmt.Errorf("%w: day labels must not be empty", ErrValidation)
		}
	}

	split := models.WorkoutSplit{
		ID:   uuid.NewString(),
		Name: name,
		Days: days,
	}
	err := e.store.Update(ctx, func(tx *store.RecordTx) error {
		st, err := tx.SplitState()
		if err != nil {
			return err
		}
		st.Splits = append(st.Splits, split)
		if st.ActiveID == "" {
			st.ActiveID = split.ID
		}
		return tx.SetSplitState(st)
	})
	if err != nil {
		return models.WorkoutSplit{}, err
	}
	e.log.Info("split created", "id", split.ID, "name", name, "days", len(days))
	return split, nil
}

// Delete removes a split by id. Deleting the last remaining split is
// rejected; deleting the active split clears the active reference.
func (e *SplitEngine) Delete(ctx context.Context, id string) error {
	return e.store.Update(ctx, func(tx *store.RecordTx) error {
		st, err := tx.SplitState()
		if err != nil {
			return err
		}
		idx := -1
		for i := range st.Splits {
			if st.Splits[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return fmt.Errorf("split %s: %w", id, ErrNotFound)
		}
		if len(st.Splits) == 1 {
			return ErrLastSplit
		}
		st.Splits = append(st.Splits[:idx], st.Splits[idx+1:]...)
		if st.ActiveID == id {
			st.ActiveID = ""
		}
		return tx.SetSplitState(st)
	})
}

// Activate marks the split with the given id as the active one.
func (e *SplitEngine) Activate(ctx context.Context, id string) error {
	return e.store.Update(ctx, func(tx *store.RecordTx) error {
		st, err := tx.SplitState()
		if err != nil {
			return err
		}
		found := false
		for i := range st.Splits {
			if st.Splits[i].ID == id {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("split %s: %w", id, ErrNotFound)
		}
		st.ActiveID = id
		return tx.SetSplitState(st)
	})
}

// SkipDay advances the active split's current day without recording a
// workout.
func (e *SplitEngine) SkipDay(ctx context.Context) (models.WorkoutSplit, error) {
	var out models.WorkoutSplit
	err := e.store.Update(ctx, func(tx *store.RecordTx) error {
		st, err := tx.SplitState()
		if err != nil {
			return err
		}
		active := st.Active()
		if active == nil {
			return fmt.Errorf("%w: no active split", ErrValidation)
		}
		advanceSplit(active)
		out = *active
		return tx.SetSplitState(st)
	})
	return out, err
}

// advanceSplit moves a split's current day forward by one, wrapping with
// modulo so the index stays in [0, len(Days)).
func advanceSplit(s *models.WorkoutSplit) {
	if len(s.Days) == 0 {
		s.CurrentDay = 0
		return
	}
	s.CurrentDay = (s.CurrentDay + 1) % len(s.Days)
}
