package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetProgress = mcp.NewTool("get_progress",
	mcp.WithDescription("Current workout progress: streak count, streak tier, achievement unlocks and the 7-slot weekly completion view."),
)

var toolGetTopLifts = mcp.NewTool("get_top_lifts",
	mcp.WithDescription("Best lifts by estimated one-rep max (Epley formula), computed from each exercise's latest recorded set."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of lifts to return. Defaults to 5.")),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("All recorded workout sessions with per-set weight, reps and completion flags."),
)

var toolGetTemplates = mcp.NewTool("get_templates",
	mcp.WithDescription("Workout templates: named exercise lists with target set counts, keyed by workout type."),
)

var toolGetActiveSplit = mcp.NewTool("get_active_split",
	mcp.WithDescription("The active workout split with its day rotation and current day. Errors with 'no active split' when none is activated."),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Latest recorded weight/reps for one exercise by name."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (exact match, e.g. 'Bench Press')")),
)

var toolGetStats = mcp.NewTool("get_stats",
	mcp.WithDescription("Aggregate counts over all sessions: totals and per-workout-type session counts."),
)

// --- Tool handlers ---

func (h *handlers) getProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.ds.Progress(ctx)
	if err != nil {
		h.log.Error("mcp get_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(report)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTopLifts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 5)
	lifts, err := h.ds.TopLifts(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_top_lifts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(lifts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.ds.Sessions(ctx)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := h.ds.Templates(ctx)
	if err != nil {
		h.log.Error("mcp get_templates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(templates)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getActiveSplit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	split, err := h.ds.ActiveSplit(ctx)
	if err != nil {
		h.log.Error("mcp get_active_split", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if split == nil {
		return mcp.NewToolResultError("no active split"), nil
	}
	result, err := mcp.NewToolResultJSON(split)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	entry, err := h.ds.ExerciseHistory(ctx, name)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if entry == nil {
		return mcp.NewToolResultError("no history for exercise " + name), nil
	}
	result, err := mcp.NewToolResultJSON(entry)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.Stats(ctx)
	if err != nil {
		h.log.Error("mcp get_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
