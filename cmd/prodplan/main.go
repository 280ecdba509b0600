package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matthiashuenaerts/prodplan/internal/config"
	"github.com/matthiashuenaerts/prodplan/internal/db"
	"github.com/matthiashuenaerts/prodplan/internal/logging"
	"github.com/matthiashuenaerts/prodplan/internal/mcp"
	"github.com/matthiashuenaerts/prodplan/internal/scheduler"
	"github.com/matthiashuenaerts/prodplan/internal/server"
	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

var (
	configPath string
	dbPath     string
)

func main() {
	flag.StringVar(&configPath, "config", "", "Path to config file (defaults to $PRODPLAN_HOME/config.toml)")
	flag.StringVar(&dbPath, "db-path", "", "Path to database file (overrides config)")
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}
	command := flag.Arg(0)
	args := flag.Args()[1:]

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	switch command {
	case "init":
		err = runInit(cfg, args)
	case "seed":
		err = runSeed(cfg, args)
	case "plan":
		err = runPlan(cfg, args)
	case "status":
		err = runStatus(cfg, args)
	case "list-projects":
		err = runListProjects(cfg, args)
	case "list-tasks":
		err = runListTasks(cfg, args)
	case "web":
		err = runWeb(cfg, args)
	case "mcp":
		err = runMCP(cfg, args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: prodplan [flags] <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  init           Initialize the database")
	fmt.Println("  seed           Load demo floor data into an empty database")
	fmt.Println("  plan           Run the scheduling engine and commit the plan")
	fmt.Println("  status         Show project completion estimates")
	fmt.Println("  list-projects  List projects, most urgent first")
	fmt.Println("  list-tasks     List tasks with optional filters")
	fmt.Println("  web            Serve the HTTP API")
	fmt.Println("  mcp            Serve the planner over MCP on stdio")
}

// openDatabase opens and initializes the store, wiring the plan file export
// when enabled.
func openDatabase(cfg config.Config) (*db.DB, error) {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.Init(context.Background()); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if cfg.Export.Enabled {
		database.EnableAutoExport(cfg.Export.Path)
	}
	return database, nil
}

func newEngine(cfg config.Config, database *db.DB, log *logging.Logger) *scheduler.Engine {
	engine := scheduler.New(database, scheduler.Config{
		StepMinutes:  cfg.Scheduler.StepMinutes,
		HorizonDays:  cfg.Scheduler.HorizonDays,
		MaxSweeps:    cfg.Scheduler.MaxSweeps,
		ProjectLimit: cfg.Scheduler.ProjectLimit,
		DefaultTeam:  cfg.Scheduler.DefaultTeam,
	})
	engine.Logf = log.Printf
	return engine
}

func runInit(cfg config.Config, args []string) error {
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Printf("Initialized database at %s\n", cfg.Database.Path)
	return nil
}

func runSeed(cfg config.Config, args []string) error {
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	projects, err := database.ListProjects(ctx)
	if err != nil {
		return err
	}
	if len(projects) > 0 {
		return fmt.Errorf("database already has %d projects, refusing to seed", len(projects))
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if err := database.Seed(ctx, today); err != nil {
		return err
	}
	fmt.Println("Seeded demo floor data")
	return nil
}

func runPlan(cfg config.Config, args []string) error {
	planFlags := flag.NewFlagSet("plan", flag.ContinueOnError)
	fromFlag := planFlags.String("from", "", "Start instant, RFC 3339 (defaults to now)")
	projectsFlag := planFlags.Int("projects", 0, "Maximum projects to plan (overrides config)")
	exportFlag := planFlags.String("export", "", "Write the committed plan to this JSONL file")
	if err := planFlags.Parse(args); err != nil {
		return err
	}

	from := time.Now().UTC()
	if *fromFlag != "" {
		t, err := time.Parse(time.RFC3339, *fromFlag)
		if err != nil {
			return fmt.Errorf("invalid -from: %w", err)
		}
		from = t
	}
	if *projectsFlag > 0 {
		cfg.Scheduler.ProjectLimit = *projectsFlag
	}
	if *exportFlag != "" {
		cfg.Export.Enabled = true
		cfg.Export.Path = *exportFlag
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	log, err := logging.New(cfg.Logging.Dir)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx := context.Background()
	engine := newEngine(cfg, database, log)
	result, err := engine.Run(ctx, from)
	if err != nil {
		return err
	}
	if err := database.ReplaceSlots(ctx, result.Slots); err != nil {
		return err
	}
	if err := database.ReplaceCompletions(ctx, result.Completions); err != nil {
		return err
	}
	log.Printf("plan committed: %d slots, %d unscheduled", len(result.Slots), len(result.Unscheduled))

	fmt.Printf("Scheduled %d slots across %d projects\n", len(result.Slots), len(result.Projects))
	if len(result.Unscheduled) > 0 {
		fmt.Printf("Unscheduled tasks: %d\n", len(result.Unscheduled))
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return nil
}

func runStatus(cfg config.Config, args []string) error {
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	recs, err := database.ListCompletions(context.Background())
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("No completion estimates yet. Run 'prodplan plan' first.")
		return nil
	}

	fmt.Printf("%-25s %-12s %-20s %-10s %s\n", "PROJECT", "INSTALL", "ESTIMATED END", "STATUS", "DAYS LEFT")
	fmt.Println("--------------------------------------------------------------------------------")
	for _, c := range recs {
		end := "-"
		if c.EstimatedEnd != nil {
			end = c.EstimatedEnd.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-25s %-12s %-20s %-10s %d\n",
			c.ProjectName, c.InstallationDate.Format("2006-01-02"), end, c.Status, c.DaysRemaining)
	}
	return nil
}

func runListProjects(cfg config.Config, args []string) error {
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	projects, err := database.ListProjects(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("%-25s %-15s %-15s %-12s\n", "NAME", "CLIENT", "STATUS", "INSTALL")
	fmt.Println("----------------------------------------------------------------------")
	for _, p := range projects {
		fmt.Printf("%-25s %-15s %-15s %-12s\n", p.Name, p.Client, p.Status, p.InstallationDate.Format("2006-01-02"))
	}
	return nil
}

func runListTasks(cfg config.Config, args []string) error {
	taskFlags := flag.NewFlagSet("list-tasks", flag.ContinueOnError)
	statusFilter := taskFlags.String("status", "", "Filter by status (todo, in_progress, hold, completed)")
	projectFilter := taskFlags.String("project", "", "Filter by project ID")
	if err := taskFlags.Parse(args); err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	var status *models.TaskStatus
	if *statusFilter != "" {
		s := models.TaskStatus(*statusFilter)
		status = &s
	}
	var projectID *string
	if *projectFilter != "" {
		projectID = projectFilter
	}

	tasks, err := database.ListTasks(context.Background(), status, projectID)
	if err != nil {
		return err
	}

	fmt.Printf("%-35s %-25s %-12s %-8s\n", "TITLE", "PROJECT", "STATUS", "MINUTES")
	fmt.Println("--------------------------------------------------------------------------------")
	for _, t := range tasks {
		fmt.Printf("%-35s %-25s %-12s %-8d\n", t.Title, t.ProjectName, t.Status, t.DurationMinutes)
	}
	return nil
}

func runWeb(cfg config.Config, args []string) error {
	webFlags := flag.NewFlagSet("web", flag.ContinueOnError)
	port := webFlags.Int("port", cfg.API.Port, "Port to listen on")
	if err := webFlags.Parse(args); err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	log, err := logging.New(cfg.Logging.Dir)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := newEngine(cfg, database, log)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.API.Host, *port),
		Handler: server.New(database, engine, log).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Serving API on %s\n", srv.Addr)
	log.Printf("api listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func runMCP(cfg config.Config, args []string) error {
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	log, err := logging.New(cfg.Logging.Dir)
	if err != nil {
		return err
	}
	defer log.Close()

	engine := newEngine(cfg, database, log)
	s := mcp.NewServer(database, engine)
	return mcp.Serve(s)
}
