package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// AutoSaveTTL is how long an auto-saved payload stays valid after its
// write. Expired envelopes are reported absent but left in place until
// explicitly cleared.
const AutoSaveTTL = 24 * time.Hour

// AutoSave stores an opaque payload under the given slot key, wrapped
// with the current write timestamp.
func (s *Store) AutoSave(ctx context.Context, key string, payload json.RawMessage) error {
	env := models.AutoSaveEnvelope{Data: payload, Timestamp: s.now()}
	if err := s.setJSON(ctx, autoSavePrefix+key, env); err != nil {
		return fmt.Errorf("autosaving %s: %w", key, err)
	}
	return nil
}

// GetAutoSave returns the payload stored under key while it is younger
// than AutoSaveTTL. A stale or missing envelope yields ok=false.
func (s *Store) GetAutoSave(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var env models.AutoSaveEnvelope
	ok, err := s.getJSON(ctx, autoSavePrefix+key, &env)
	if err != nil || !ok {
		return nil, false, err
	}
	if s.now().Sub(env.Timestamp) >= AutoSaveTTL {
		return nil, false, nil
	}
	return env.Data, true, nil
}

// ClearAutoSave removes the slot for key.
func (s *Store) ClearAutoSave(ctx context.Context, key string) error {
	if err := s.kv.Remove(ctx, autoSavePrefix+key); err != nil {
		return fmt.Errorf("clearing autosave %s: %w", key, err)
	}
	return nil
}
