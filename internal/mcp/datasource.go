package mcp

import (
	"context"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/workout"
)

// DataSource abstracts the data layer for MCP tools. *workout.Service
// satisfies it.
type DataSource interface {
	Progress(ctx context.Context) (*workout.ProgressReport, error)
	TopLifts(ctx context.Context, limit int) ([]workout.Lift, error)
	Sessions(ctx context.Context) ([]models.WorkoutSession, error)
	Templates(ctx context.Context) (map[string]models.WorkoutTemplate, error)
	ActiveSplit(ctx context.Context) (*models.WorkoutSplit, error)
	ExerciseHistory(ctx context.Context, name string) (*models.HistoryEntry, error)
	Stats(ctx context.Context) (*workout.Stats, error)
}

// Compile-time check: *workout.Service satisfies DataSource.
var _ DataSource = (*workout.Service)(nil)
