package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/castellanhq/castellan/pkg/audit"
	"github.com/castellanhq/castellan/pkg/config"
	"github.com/castellanhq/castellan/pkg/core"
	"github.com/castellanhq/castellan/pkg/manifest"
	"github.com/castellanhq/castellan/pkg/pipeline"
	"github.com/castellanhq/castellan/pkg/prompt"
	"github.com/castellanhq/castellan/pkg/spawn"
	"github.com/castellanhq/castellan/pkg/telemetry"
)

const version = "0.3.0"

type globalFlags struct {
	ConfigPath string
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args := parseGlobalFlags(os.Args[1:])
	if global.Help || len(args) == 0 {
		printUsage()
		if len(args) == 0 && !global.Help {
			os.Exit(2)
		}
		return
	}

	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		fatal(fmt.Errorf("load config: %w", err))
	}
	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	switch args[0] {
	case "run":
		err = cmdRun(ctx, cfg, global, args[1:])
	case "roles":
		err = cmdRoles(cfg, global)
	case "audit":
		err = cmdAudit(ctx, cfg, global, args[1:])
	case "version":
		fmt.Println(version)
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil {
		fatal(err)
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string) {
	var global globalFlags
	fs := flag.NewFlagSet("castellan", flag.ExitOnError)
	fs.StringVar(&global.ConfigPath, "config", "", "path to config file")
	fs.BoolVar(&global.JSON, "json", false, "emit JSON output")
	fs.BoolVar(&global.Help, "help", false, "show usage")
	_ = fs.Parse(args)
	return global, fs.Args()
}

func buildRegistry(cfg *config.Config) (manifest.Registry, error) {
	if cfg.Pipeline.ManifestFile != "" {
		return manifest.LoadRegistry(cfg.Pipeline.ManifestFile)
	}
	return manifest.Default(), nil
}

func buildAuditLog(cfg *config.Config) (audit.Log, func() string, error) {
	switch cfg.Audit.Backend {
	case "", "jsonl":
		log := audit.NewFileLog(cfg.Audit.Dir, nil)
		return log, func() string { return cfg.Audit.Dir }, nil
	case "sqlite":
		log, err := audit.OpenSQLiteLog(cfg.Audit.SQLitePath, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite audit log: %w", err)
		}
		return log, func() string { return cfg.Audit.SQLitePath }, nil
	default:
		return nil, nil, fmt.Errorf("unknown audit backend %q", cfg.Audit.Backend)
	}
}

func cmdRun(ctx context.Context, cfg *config.Config, global globalFlags, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	typeHint := fs.String("type", "", "operator type hint: technical, product, or ambiguous")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("run: task description is required")
	}
	body := fs.Arg(0)

	shutdown, err := telemetry.InitWithConfig("castellan", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	auditLog, streamLocation, err := buildAuditLog(cfg)
	if err != nil {
		return err
	}

	prompts := prompt.FallbackStore{
		Primary:   prompt.NewFileStore(cfg.Prompts.Dir),
		Secondary: prompt.Builtin(),
	}
	spawner := spawn.New(prompts, cfg.Workspace.Root)

	metrics, err := telemetry.NewPipelineMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	orchestrator := pipeline.New(registry, spawner, auditLog,
		pipeline.WithMetrics(metrics),
	)

	task := core.NewTask(body, core.TaskType(*typeHint))
	result, runErr := orchestrator.Run(ctx, task)

	if global.JSON {
		printRunJSON(cfg, task, result, runErr, streamLocation())
	} else {
		printRunText(cfg, task, result, runErr, streamLocation())
	}
	if runErr != nil {
		return fmt.Errorf("task %s %s: %w", task.ID, result.Status, runErr)
	}
	return nil
}

func printRunText(cfg *config.Config, task *core.Task, result *pipeline.Result, runErr error, auditLocation string) {
	fmt.Printf("Task:            %s\n", task.ID)
	fmt.Printf("Classification:  %s (route %s, %s, rule %s)\n",
		result.Classification.Category, result.Classification.Route,
		result.Classification.Confidence, result.Classification.RuleID)
	if result.Spec != nil {
		fmt.Printf("Spec:            %s — %d requirement(s), %d constraint(s)\n",
			result.Spec.ID, len(result.Spec.Requirements), len(result.Spec.Constraints))
	}
	if result.Execution != nil {
		fmt.Printf("Execution:       %s, %d artifact(s)\n",
			result.Execution.Status, len(result.Execution.Artifacts))
	}
	if result.Report != nil {
		fmt.Printf("Validation:      %s (%d/%d requirements satisfied)\n",
			result.Report.Verdict,
			result.Report.Summary.RequirementsSatisfied,
			result.Report.Summary.RequirementsTotal)
	}
	fmt.Printf("Status:          %s\n", result.Status)
	if runErr != nil {
		fmt.Printf("Error:           %v\n", runErr)
	}
	fmt.Printf("Audit stream:    %s (backend %s, task %s)\n", auditLocation, auditBackend(cfg), task.ID)
}

func auditBackend(cfg *config.Config) string {
	if cfg.Audit.Backend == "" {
		return "jsonl"
	}
	return cfg.Audit.Backend
}

func printRunJSON(cfg *config.Config, task *core.Task, result *pipeline.Result, runErr error, auditLocation string) {
	out := map[string]any{
		"task_id":        task.ID,
		"status":         string(result.Status),
		"classification": result.Classification,
		"audit": map[string]any{
			"backend":  auditBackend(cfg),
			"location": auditLocation,
		},
	}
	if result.Spec != nil {
		out["spec"] = result.Spec
	}
	if result.Execution != nil {
		out["execution"] = result.Execution
	}
	if result.Report != nil {
		out["validation"] = result.Report
	}
	if runErr != nil {
		out["error"] = runErr.Error()
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(encoded))
}

func cmdRoles(cfg *config.Config, global globalFlags) error {
	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	roles := registry.Roles()
	sort.Strings(roles)

	if global.JSON {
		manifests := make([]core.AgentManifest, 0, len(roles))
		for _, role := range roles {
			if m, ok := registry.Get(role); ok {
				manifests = append(manifests, m)
			}
		}
		encoded, err := json.MarshalIndent(manifests, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tNETWORK\tFILESYSTEM\tTIME LIMIT\tCOST CAP\tTOOLS")
	for _, role := range roles {
		m, ok := registry.Get(role)
		if !ok {
			continue
		}
		network := "denied"
		if m.Permissions.AllowNetwork {
			if len(m.Permissions.NetworkAllowlist) > 0 {
				network = fmt.Sprintf("allowlist(%d)", len(m.Permissions.NetworkAllowlist))
			} else {
				network = "open (collapses to none)"
			}
		}
		filesystem := "denied"
		if m.Permissions.AllowFilesystem {
			filesystem = "workspace"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t$%.2f\t%d\n",
			m.Role, network, filesystem, m.Permissions.MaxExecutionTime, m.Permissions.MaxCostUSD, len(m.Tools))
	}
	return w.Flush()
}

func cmdAudit(ctx context.Context, cfg *config.Config, global globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("audit: task id is required")
	}
	taskID := args[0]

	auditLog, _, err := buildAuditLog(cfg)
	if err != nil {
		return err
	}
	events, err := auditLog.List(ctx, taskID)
	if err != nil {
		return fmt.Errorf("read audit stream: %w", err)
	}
	if len(events) == 0 {
		return fmt.Errorf("no audit stream for task %q", taskID)
	}

	if global.JSON {
		encoded, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tEVENT\tAGENT")
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ev.Timestamp.Format(time.RFC3339), ev.Type, ev.AgentID)
	}
	return w.Flush()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `castellan %s — deterministic agent control plane

Usage:
  castellan [flags] run [-type hint] "task description"
  castellan [flags] roles
  castellan [flags] audit <task-id>
  castellan version

Flags:
  -config path   config file (YAML); env vars use the CASTELLAN_ prefix
  -json          emit JSON output
`, version)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "castellan: %v\n", err)
	os.Exit(1)
}
