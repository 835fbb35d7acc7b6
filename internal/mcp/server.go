package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog workout tracker. Query workout progress, streaks, top lifts, session history, templates and the active split. All data belongs to the single local user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetProgress, Handler: h.getProgress},
		server.ServerTool{Tool: toolGetTopLifts, Handler: h.getTopLifts},
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetTemplates, Handler: h.getTemplates},
		server.ServerTool{Tool: toolGetActiveSplit, Handler: h.getActiveSplit},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
		server.ServerTool{Tool: toolGetStats, Handler: h.getStats},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resWeeklyView, Handler: h.weeklyView},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resWeeklyView = mcp.NewResource(
	"liftlog://weekly_view",
	"Weekly View",
	mcp.WithResourceDescription("The 7-slot weekly completion row derived from the current streak"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) weeklyView(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	report, err := h.ds.Progress(ctx)
	if err != nil {
		h.log.Error("mcp weekly_view", "error", err)
		return nil, err
	}
	raw, err := json.Marshal(map[string]any{
		"streak":     report.Streak,
		"weeklyView": report.WeeklyView,
	})
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(raw),
		},
	}, nil
}
