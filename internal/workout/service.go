package workout

import (
	"context"
	"log/slog"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/store"
)

// Service bundles the domain components for the serving surfaces.
type Service struct {
	Registry  *Registry
	Splits    *SplitEngine
	Recorder  *Recorder
	Analytics *Analytics

	store *store.Store
}

// NewService wires the components over one store.
func NewService(st *store.Store, opts Options, log *slog.Logger) *Service {
	reg := NewRegistry(st, log)
	return &Service{
		Registry:  reg,
		Splits:    NewSplitEngine(st, log),
		Recorder:  NewRecorder(st, reg, opts, log),
		Analytics: NewAnalytics(st),
		store:     st,
	}
}

// Sessions returns every stored session record.
func (s *Service) Sessions(ctx context.Context) ([]models.WorkoutSession, error) {
	return s.store.Sessions(ctx)
}

// Templates returns the template mapping, materializing defaults when
// absent.
func (s *Service) Templates(ctx context.Context) (map[string]models.WorkoutTemplate, error) {
	return s.Registry.Templates(ctx)
}

// ActiveSplit returns the active split, or nil when none is activated.
func (s *Service) ActiveSplit(ctx context.Context) (*models.WorkoutSplit, error) {
	return s.Splits.ActiveSplit(ctx)
}

// ExerciseHistory returns the latest history entry for an exercise name,
// or nil when none exists.
func (s *Service) ExerciseHistory(ctx context.Context, name string) (*models.HistoryEntry, error) {
	return s.store.History(ctx, name)
}

// Progress delegates to the analytics component.
func (s *Service) Progress(ctx context.Context) (*ProgressReport, error) {
	return s.Analytics.Progress(ctx)
}

// TopLifts delegates to the analytics component.
func (s *Service) TopLifts(ctx context.Context, limit int) ([]Lift, error) {
	return s.Analytics.TopLifts(ctx, limit)
}

// Stats delegates to the analytics component.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.Analytics.Stats(ctx)
}
