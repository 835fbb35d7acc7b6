// Package store is the durable key-value layer underneath every other
// component. One logical key holds one JSON-encoded record; composite
// updates run inside a single transaction via Update.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// Logical keys of the persisted records. Per-exercise history and
// auto-save slots use the prefixed forms below.
const (
	KeyTemplates     = "workoutTemplates"
	KeySplits        = "workoutSplits"
	KeyActiveSplit   = "activeSplit"
	KeyCurrentSplit  = "workoutSplit"
	KeySessions      = "workoutSessions"
	KeyStreak        = "workoutStreak"
	ExercisePrefix   = "exercise-"
	autoSavePrefix   = "autosave-"
)

// KV is a synchronous durable key-value namespace. Both the SQLite and
// Postgres backends satisfy it.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// List returns all pairs whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string][]byte, error)
	// Update runs fn inside a transaction; all writes commit together
	// or not at all.
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Tx is the view of the namespace inside an Update transaction.
type Tx interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// Store layers typed record accessors over a KV backend.
type Store struct {
	kv  KV
	now func() time.Time
}

// New creates a Store over the given backend.
func New(kv KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Close closes the underlying backend.
func (s *Store) Close() error { return s.kv.Close() }

// Update runs fn against the typed record transaction. All record writes
// made through the RecordTx commit atomically.
func (s *Store) Update(ctx context.Context, fn func(tx *RecordTx) error) error {
	return s.kv.Update(ctx, func(tx Tx) error {
		return fn(&RecordTx{tx: tx})
	})
}

// Templates returns the stored template mapping. The second result is
// false when nothing has been stored yet.
func (s *Store) Templates(ctx context.Context) (map[string]models.WorkoutTemplate, bool, error) {
	var m map[string]models.WorkoutTemplate
	ok, err := s.getJSON(ctx, KeyTemplates, &m)
	return m, ok, err
}

// SaveTemplates rewrites the entire template mapping.
func (s *Store) SaveTemplates(ctx context.Context, m map[string]models.WorkoutTemplate) error {
	return s.setJSON(ctx, KeyTemplates, m)
}

// SplitState returns the normalized split record, or a zero state when
// none has been stored.
func (s *Store) SplitState(ctx context.Context) (models.SplitState, error) {
	var st models.SplitState
	if _, err := s.getJSON(ctx, KeySplits, &st); err != nil {
		return models.SplitState{}, err
	}
	return st, nil
}

// SaveSplitState writes the normalized record, the active-split id and
// the denormalized active copy in one transaction.
func (s *Store) SaveSplitState(ctx context.Context, st models.SplitState) error {
	return s.Update(ctx, func(tx *RecordTx) error {
		return tx.SetSplitState(st)
	})
}

// Sessions returns every stored session, oldest first.
func (s *Store) Sessions(ctx context.Context) ([]models.WorkoutSession, error) {
	var list []models.WorkoutSession
	if _, err := s.getJSON(ctx, KeySessions, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// History returns the latest history entry for an exercise name, or nil
// when none has been recorded.
func (s *Store) History(ctx context.Context, exerciseName string) (*models.HistoryEntry, error) {
	var e models.HistoryEntry
	ok, err := s.getJSON(ctx, ExercisePrefix+exerciseName, &e)
	if err != nil || !ok {
		return nil, err
	}
	return &e, nil
}

// AllHistory returns every stored history entry keyed by exercise name.
func (s *Store) AllHistory(ctx context.Context) (map[string]models.HistoryEntry, error) {
	pairs, err := s.kv.List(ctx, ExercisePrefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.HistoryEntry, len(pairs))
	for key, raw := range pairs {
		var e models.HistoryEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", key, err)
		}
		out[key[len(ExercisePrefix):]] = e
	}
	return out, nil
}

// Streak returns the streak counter, zero when unset.
func (s *Store) Streak(ctx context.Context) (int, error) {
	var n int
	if _, err := s.getJSON(ctx, KeyStreak, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// RecordTx exposes the typed records inside an Update transaction.
type RecordTx struct {
	tx Tx
}

// Templates reads the template mapping inside the transaction.
func (t *RecordTx) Templates() (map[string]models.WorkoutTemplate, bool, error) {
	var m map[string]models.WorkoutTemplate
	ok, err := txGetJSON(t.tx, KeyTemplates, &m)
	return m, ok, err
}

// SetTemplates rewrites the template mapping inside the transaction.
func (t *RecordTx) SetTemplates(m map[string]models.WorkoutTemplate) error {
	return txSetJSON(t.tx, KeyTemplates, m)
}

// SplitState reads the normalized split record inside the transaction.
func (t *RecordTx) SplitState() (models.SplitState, error) {
	var st models.SplitState
	if _, err := txGetJSON(t.tx, KeySplits, &st); err != nil {
		return models.SplitState{}, err
	}
	return st, nil
}

// SetSplitState writes the normalized record together with the legacy
// activeSplit id and workoutSplit denormalized copy, so readers of the
// old keys can never observe a half-written pair.
func (t *RecordTx) SetSplitState(st models.SplitState) error {
	if err := txSetJSON(t.tx, KeySplits, st); err != nil {
		return err
	}
	active := st.Active()
	if active == nil {
		if err := t.tx.Remove(KeyActiveSplit); err != nil {
			return fmt.Errorf("clearing %s: %w", KeyActiveSplit, err)
		}
		if err := t.tx.Remove(KeyCurrentSplit); err != nil {
			return fmt.Errorf("clearing %s: %w", KeyCurrentSplit, err)
		}
		return nil
	}
	if err := txSetJSON(t.tx, KeyActiveSplit, active.ID); err != nil {
		return err
	}
	return txSetJSON(t.tx, KeyCurrentSplit, *active)
}

// Sessions reads the session list inside the transaction.
func (t *RecordTx) Sessions() ([]models.WorkoutSession, error) {
	var list []models.WorkoutSession
	if _, err := txGetJSON(t.tx, KeySessions, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// UpsertSession appends the session, or overwrites in place when a
// session with the same id already exists.
func (t *RecordTx) UpsertSession(sess models.WorkoutSession) error {
	list, err := t.Sessions()
	if err != nil {
		return err
	}
	replaced := false
	for i := range list {
		if list[i].ID == sess.ID {
			list[i] = sess
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, sess)
	}
	return txSetJSON(t.tx, KeySessions, list)
}

// SetHistory overwrites the latest history entry for an exercise name.
func (t *RecordTx) SetHistory(exerciseName string, e models.HistoryEntry) error {
	return txSetJSON(t.tx, ExercisePrefix+exerciseName, e)
}

// Streak reads the streak counter inside the transaction.
func (t *RecordTx) Streak() (int, error) {
	var n int
	if _, err := txGetJSON(t.tx, KeyStreak, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// SetStreak writes the streak counter.
func (t *RecordTx) SetStreak(n int) error {
	return txSetJSON(t.tx, KeyStreak, n)
}

// ClearAutoSave removes an auto-save slot inside the transaction.
func (t *RecordTx) ClearAutoSave(key string) error {
	if err := t.tx.Remove(autoSavePrefix + key); err != nil {
		return fmt.Errorf("clearing autosave %s: %w", key, err)
	}
	return nil
}

func txGetJSON(tx Tx, key string, v any) (bool, error) {
	raw, ok, err := tx.Get(key)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

func txSetJSON(tx Tx, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := tx.Set(key, raw); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
