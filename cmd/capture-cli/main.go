package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"uicapture/internal/adapters/downloader"
	"uicapture/internal/adapters/execagent"
	"uicapture/internal/adapters/localstorage"
	"uicapture/internal/adapters/remoteagent"
	"uicapture/internal/catalog"
	"uicapture/internal/config"
	"uicapture/internal/console"
	"uicapture/internal/core/domain"
	"uicapture/internal/core/ports"
	"uicapture/internal/service"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// app bundles what a single CLI invocation needs.
type app struct {
	prog     string
	jobs     []domain.Job
	runner   *service.BatchRunner
	printer  *console.Printer
	logger   *log.Logger
	headless bool

	datasetDir string
	reportPath string
}

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, envLoaded, err := config.Load()
	if !envLoaded {
		logger.Println("No .env file found")
	}
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	jobs := catalog.Default()
	if cfg.CatalogFile != "" {
		if jobs, err = catalog.LoadFile(cfg.CatalogFile); err != nil {
			logger.Fatalf("Failed to load catalog: %v", err)
		}
	}

	// Initialize adapters
	storage := localstorage.NewLocalStorage(cfg.DatasetDir, cfg.ReportPath)
	agent, err := newAgent(cfg, storage, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize agent: %v", err)
	}

	a := &app{
		prog:       filepath.Base(os.Args[0]),
		jobs:       jobs,
		runner:     service.NewBatchRunner(agent, storage, logger, cfg.TaskDelay),
		printer:    console.NewPrinter(os.Stdout),
		logger:     logger,
		headless:   cfg.Headless,
		datasetDir: cfg.DatasetDir,
		reportPath: storage.ReportPath(),
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Println("Received interrupt signal, cancelling...")
		cancel()
	}()

	code := a.run(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

func newAgent(cfg *config.Config, storage *localstorage.LocalStorage, logger *log.Logger) (ports.Agent, error) {
	switch cfg.AgentMode {
	case config.AgentModeHTTP:
		dl := downloader.NewHTTPDownloader(cfg.AgentAPIToken)
		return remoteagent.NewClient(cfg.AgentURL, cfg.AgentAPIToken, cfg.AgentPollInterval, dl, storage, logger)
	default:
		return execagent.NewAgent(cfg.AgentBinary, cfg.AgentTaskTimeout, logger), nil
	}
}

// run dispatches on the command-line arguments and returns the exit code.
func (a *app) run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.printer.Usage(a.prog, a.jobs)
		return exitOK
	}

	if args[0] == "all" {
		return a.runAll(ctx)
	}

	index, ok := parseIndex(args[0])
	if !ok {
		a.printer.UsageLines(a.prog)
		return exitUsage
	}
	return a.runSingle(ctx, index)
}

func (a *app) runAll(ctx context.Context) int {
	a.printer.Banner(len(a.jobs))

	report, err := a.runner.RunAll(ctx, a.jobs, a.headless)

	var initErr *domain.SessionInitError
	if errors.As(err, &initErr) {
		a.logger.Printf("Batch aborted: %v", err)
		return exitError
	}

	for i, o := range report.Tasks {
		a.printer.Outcome(i+1, o)
	}
	a.printer.Summary(report, a.datasetDir, a.reportPath)

	if err != nil {
		a.logger.Printf("Batch finished but the summary report was not saved: %v", err)
		return exitError
	}
	return exitOK
}

func (a *app) runSingle(ctx context.Context, index int) int {
	outcome, err := a.runner.RunSingle(ctx, a.jobs, index, a.headless)

	var sel *domain.InvalidSelectionError
	switch {
	case errors.As(err, &sel):
		a.printer.InvalidSelection(sel)
		return exitUsage
	case err != nil:
		a.logger.Printf("Task aborted: %v", err)
		return exitError
	}

	a.printer.Outcome(index, outcome)
	return exitOK
}

// parseIndex accepts only non-negative decimal integers.
func parseIndex(arg string) (int, bool) {
	if arg == "" {
		return 0, false
	}
	for _, r := range arg {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, false
	}
	return n, true
}
