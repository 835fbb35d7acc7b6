package workout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/store"
)

// Registry manages the workout templates: named exercise lists keyed by
// workout-type name.
type Registry struct {
	store *store.Store
	log   *slog.Logger
}

// NewRegistry creates a Registry over the store.
func NewRegistry(st *store.Store, log *slog.Logger) *Registry {
	return &Registry{store: st, log: log}
}

// DefaultTemplates returns the built-in six-template catalog covering the
// common split days. Computed fresh on every call so callers can mutate
// the result.
func DefaultTemplates() map[string]models.WorkoutTemplate {
	catalog := []struct {
		name      string
		exercises []string
		sets      []int
	}{
		{"Push", []string{"Bench Press", "Overhead Press", "Incline Dumbbell Press", "Tricep Pushdown"}, []int{4, 3, 3, 3}},
		{"Pull", []string{"Deadlift", "Barbell Row", "Lat Pulldown", "Bicep Curl"}, []int{3, 4, 3, 3}},
		{"Legs", []string{"Squat", "Romanian Deadlift", "Leg Press", "Calf Raise"}, []int{4, 3, 3, 4}},
		{"Upper", []string{"Bench Press", "Barbell Row", "Overhead Press", "Lat Pulldown"}, []int{4, 4, 3, 3}},
		{"Lower", []string{"Squat", "Deadlift", "Leg Curl", "Calf Raise"}, []int{4, 3, 3, 4}},
		{"Full Body", []string{"Squat", "Bench Press", "Barbell Row"}, []int{3, 3, 3}},
	}

	out := make(map[string]models.WorkoutTemplate, len(catalog))
	for _, c := range catalog {
		tpl := models.WorkoutTemplate{
			ID:   Slugify(c.name),
			Name: c.name,
		}
		for i, name := range c.exercises {
			tpl.Exercises = append(tpl.Exercises, models.Exercise{
				ID:         Slugify(name),
				Name:       name,
				TargetSets: c.sets[i],
			})
		}
		out[c.name] = tpl
	}
	return out
}

// Slugify derives an exercise/template id from its name. Ids are not
// guaranteed globally unique across templates.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// EnsureDefaults materializes the default catalog when no templates have
// been stored yet. Called once at startup so the first-run behavior is
// explicit rather than hidden inside a getter.
func (r *Registry) EnsureDefaults(ctx context.Context) error {
	_, ok, err := r.store.Templates(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	defaults := DefaultTemplates()
	if err := r.store.SaveTemplates(ctx, defaults); err != nil {
		return err
	}
	r.log.Info("default templates materialized", "count", len(defaults))
	return nil
}

// Templates returns the stored mapping, materializing the defaults when
// nothing has been stored yet.
func (r *Registry) Templates(ctx context.Context) (map[string]models.WorkoutTemplate, error) {
	m, ok, err := r.store.Templates(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		m = DefaultTemplates()
		if err := r.store.SaveTemplates(ctx, m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Template looks up one template by name. The bool result is false when
// no template of that name exists.
func (r *Registry) Template(ctx context.Context, name string) (models.WorkoutTemplate, bool, error) {
	m, err := r.Templates(ctx)
	if err != nil {
		return models.WorkoutTemplate{}, false, err
	}
	tpl, ok := m[name]
	return tpl, ok, nil
}

// Update writes one template back into the mapping. The whole mapping is
// read and rewritten; there is no partial update.
func (r *Registry) Update(ctx context.Context, name string, tpl models.WorkoutTemplate) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: template name must not be empty", ErrValidation)
	}
	for _, ex := range tpl.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return fmt.Errorf("%w: exercise name must not be empty", ErrValidation)
		}
	}
	m, err := r.Templates(ctx)
	if err != nil {
		return err
	}
	m[name] = tpl
	return r.store.SaveTemplates(ctx, m)
}

// Reset restores the original default template for name. A name outside
// the default catalog is a no-op.
func (r *Registry) Reset(ctx context.Context, name string) error {
	def, ok := DefaultTemplates()[name]
	if !ok {
		return nil
	}
	m, err := r.Templates(ctx)
	if err != nil {
		return err
	}
	m[name] = def
	return r.store.SaveTemplates(ctx, m)
}
