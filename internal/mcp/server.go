package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/matthiashuenaerts/prodplan/internal/db"
	"github.com/matthiashuenaerts/prodplan/internal/scheduler"
	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// NewServer creates a new MCP server exposing the planner to agents.
func NewServer(database *db.DB, engine *scheduler.Engine) *server.MCPServer {
	s := server.NewMCPServer("ProdPlan", "0.1.0")

	s.AddTool(mcp.NewTool("run_schedule",
		mcp.WithDescription("Run the scheduling engine over the most urgent projects and commit the resulting plan."),
		mcp.WithString("from", mcp.Description("Start instant, RFC 3339 (defaults to now)")),
	), runScheduleHandler(database, engine))

	s.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects, most urgent first."),
	), listProjectsHandler(database))

	s.AddTool(mcp.NewTool("project_status",
		mcp.WithDescription("Get a project with its completion estimate."),
		mcp.WithString("project_id", mcp.Description("Project ID"), mcp.Required()),
	), projectStatusHandler(database))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks with optional filters."),
		mcp.WithString("project_id", mcp.Description("Filter by project")),
		mcp.WithString("status", mcp.Description("Filter by status (todo|in_progress|hold|completed)")),
	), listTasksHandler(database))

	s.AddTool(mcp.NewTool("update_task_status",
		mcp.WithDescription("Update a task's lifecycle status."),
		mcp.WithString("task_id", mcp.Description("Task ID"), mcp.Required()),
		mcp.WithString("status", mcp.Description("New status (todo|in_progress|hold|completed)"), mcp.Required()),
	), updateTaskStatusHandler(database))

	s.AddTool(mcp.NewTool("list_slots",
		mcp.WithDescription("List committed schedule slots, optionally for one day."),
		mcp.WithString("day", mcp.Description("Calendar date, YYYY-MM-DD")),
	), listSlotsHandler(database))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func runScheduleHandler(database *db.DB, engine *scheduler.Engine) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		from := time.Now().UTC()
		if v := mcp.ParseString(request, "from", ""); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("'from' must be RFC 3339: %v", err)), nil
			}
			from = t
		}

		result, err := engine.Run(ctx, from)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := database.ReplaceSlots(ctx, result.Slots); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := database.ReplaceCompletions(ctx, result.Completions); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]any{
			"slots":       len(result.Slots),
			"unscheduled": result.Unscheduled,
			"warnings":    result.Warnings,
			"completions": result.Completions,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func listProjectsHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projects, err := database.ListProjects(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]any{"projects": projects})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func projectStatusHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID := mcp.ParseString(request, "project_id", "")

		p, err := database.GetProject(ctx, projectID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if p == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Project '%s' not found", projectID)), nil
		}

		var completion *models.ProjectCompletion
		completions, err := database.ListCompletions(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		for _, c := range completions {
			if c.ProjectID == projectID {
				completion = c
				break
			}
		}

		data, err := json.Marshal(map[string]any{"project": p, "completion": completion})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func listTasksHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var status *models.TaskStatus
		if v := mcp.ParseString(request, "status", ""); v != "" {
			ts := models.TaskStatus(v)
			status = &ts
		}
		var projectID *string
		if v := mcp.ParseString(request, "project_id", ""); v != "" {
			projectID = &v
		}

		tasks, err := database.ListTasks(ctx, status, projectID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]any{"tasks": tasks})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func updateTaskStatusHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID := mcp.ParseString(request, "task_id", "")
		status := mcp.ParseString(request, "status", "")

		if err := database.UpdateTaskStatus(ctx, taskID, models.TaskStatus(status)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("Task status updated successfully"), nil
	}
}

func listSlotsHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var (
			slots []*models.ScheduleSlot
			err   error
		)
		if v := mcp.ParseString(request, "day", ""); v != "" {
			day, perr := time.Parse("2006-01-02", v)
			if perr != nil {
				return mcp.NewToolResultError("'day' must be YYYY-MM-DD"), nil
			}
			slots, err = database.SlotsForDay(ctx, day)
		} else {
			slots, err = database.ListSlots(ctx)
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]any{"slots": slots})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}
