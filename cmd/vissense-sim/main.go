// Command vissense-sim simulates a page and a visibility monitor.
//
// It either runs YAML scenario files and reports PASS/FAIL per scenario, or
// opens an interactive shell where elements are moved, the window is
// scrolled and the monitor's events are printed as they happen.
//
// Usage:
//
//	vissense-sim [flags]
//
// Flags:
//
//	-scenario string    Scenario file or directory to run
//	-interactive        Open the interactive shell (default when no -scenario)
//	-trace string       Write monitor trace events to a CBOR file
//	-listen string      Serve /ws, /history, /healthz and /metrics on this address
//	-metrics            Expose Prometheus metrics on /metrics (requires -listen)
//	-mock-clock         Use a mock clock in interactive mode (enables advance)
//	-strategy string    Interactive monitor strategy: none, polling, event, default
//	-interval string    Polling interval (default "1s")
//	-throttle string    Event throttle window (default "50ms")
//	-log-level string   Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Run every scenario in a directory
//	vissense-sim -scenario pkg/scenario/testdata
//
//	# Interactive session with a trace file for vissense-log
//	vissense-sim -trace hero.vlog
//
//	# Interactive session streaming events to websocket clients
//	vissense-sim -listen :8080 -metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/facebookgo/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vissense/vissense-go/cmd/vissense-sim/interactive"
	vlog "github.com/vissense/vissense-go/pkg/log"
	"github.com/vissense/vissense-go/pkg/metrics"
	"github.com/vissense/vissense-go/pkg/monitor"
	"github.com/vissense/vissense-go/pkg/scenario"
	"github.com/vissense/vissense-go/pkg/stream"
)

// Config holds the simulator configuration.
type Config struct {
	Scenario    string
	Interactive bool
	Trace       string
	Listen      string
	Metrics     bool
	MockClock   bool
	Strategy    string
	Interval    string
	Throttle    string
	LogLevel    string
}

var config Config

func init() {
	flag.StringVar(&config.Scenario, "scenario", "", "Scenario file or directory to run")
	flag.BoolVar(&config.Interactive, "interactive", false, "Open the interactive shell (default when no -scenario)")
	flag.StringVar(&config.Trace, "trace", "", "Write monitor trace events to a CBOR file")
	flag.StringVar(&config.Listen, "listen", "", "Serve /ws, /history, /healthz and /metrics on this address")
	flag.BoolVar(&config.Metrics, "metrics", false, "Expose Prometheus metrics on /metrics (requires -listen)")
	flag.BoolVar(&config.MockClock, "mock-clock", false, "Use a mock clock in interactive mode (enables advance)")
	flag.StringVar(&config.Strategy, "strategy", scenario.StrategyDefault, "Interactive monitor strategy: none, polling, event, default")
	flag.StringVar(&config.Interval, "interval", "1s", "Polling interval")
	flag.StringVar(&config.Throttle, "throttle", "50ms", "Event throttle window")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	if config.Metrics && config.Listen == "" {
		log.Fatalf("Invalid configuration: -metrics requires -listen")
	}
	if config.Scenario == "" {
		config.Interactive = true
	}
	if config.Scenario != "" && config.Interactive {
		log.Fatalf("Invalid configuration: -scenario and -interactive are exclusive")
	}

	if config.Interactive {
		os.Exit(runInteractive())
	}
	os.Exit(runScenarios())
}

func setupLogging(level string) slog.Level {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
		return slog.LevelDebug
	case "warn":
		log.SetFlags(log.Ltime)
		return slog.LevelWarn
	case "error":
		log.SetFlags(log.Ltime)
		return slog.LevelError
	}
	return slog.LevelInfo
}

// sessionConfig builds the shared session configuration. The returned
// cleanup closes the trace file and the HTTP server.
func sessionConfig(logger *slog.Logger, level slog.Level) (scenario.Config, func(), error) {
	cfg := scenario.DefaultConfig()
	cfg.Logger = logger
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Only set Trace when a logger exists; a nil *FileLogger in the
	// interface would not compare equal to nil.
	var traceFile *vlog.FileLogger
	if config.Trace != "" {
		var err error
		traceFile, err = vlog.NewFileLogger(config.Trace)
		if err != nil {
			return cfg, cleanup, fmt.Errorf("failed to create trace file: %w", err)
		}
		cleanups = append(cleanups, func() { _ = traceFile.Close() })
		log.Printf("Trace logging to: %s", config.Trace)
	}
	switch {
	case traceFile != nil && level == slog.LevelDebug:
		cfg.Trace = vlog.NewMultiLogger(traceFile, vlog.NewSlogAdapter(logger))
	case traceFile != nil:
		cfg.Trace = traceFile
	case level == slog.LevelDebug:
		cfg.Trace = vlog.NewSlogAdapter(logger)
	}

	if config.Listen != "" {
		hubCfg := stream.DefaultConfig()
		hubCfg.Logger = logger
		hub := stream.NewHubWithConfig(hubCfg)
		cfg.Observers = append(cfg.Observers, func(m *monitor.Monitor) { hub.Attach(m) })

		var gatherer prometheus.Gatherer
		if config.Metrics {
			m := metrics.NewMetrics()
			gatherer = prometheus.DefaultGatherer
			cfg.Observers = append(cfg.Observers, func(mon *monitor.Monitor) { m.Attach(mon) })
		}

		srv := &http.Server{
			Addr:              config.Listen,
			Handler:           newRouter(hub, gatherer),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP server error: %v", err)
			}
		}()
		log.Printf("Listening on %s", config.Listen)

		cleanups = append(cleanups, func() {
			_ = hub.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		})
	}

	return cfg, cleanup, nil
}

func runScenarios() int {
	level := setupLogging(config.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	scenarios, err := loadScenarios(config.Scenario)
	if err != nil {
		log.Printf("Failed to load scenarios: %v", err)
		return 1
	}
	if len(scenarios) == 0 {
		log.Printf("No scenarios found in %s", config.Scenario)
		return 1
	}

	cfg, cleanup, err := sessionConfig(logger, level)
	defer cleanup()
	if err != nil {
		log.Printf("Setup failed: %v", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := scenario.NewRunnerWithConfig(cfg)
	failed := 0
	for _, result := range runner.RunAll(ctx, scenarios) {
		printResult(result)
		if !result.Passed {
			failed++
		}
	}

	fmt.Printf("\n%d scenarios, %d passed, %d failed\n", len(scenarios), len(scenarios)-failed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func loadScenarios(path string) ([]*scenario.Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return scenario.LoadDirectory(path)
	}
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	return []*scenario.Scenario{sc}, nil
}

func printResult(result *scenario.Result) {
	if result.Passed {
		fmt.Printf("PASS  %s (%d steps, %s)\n", result.Scenario.Name, len(result.StepResults), result.Duration.Round(time.Microsecond))
		return
	}
	fmt.Printf("FAIL  %s: %v\n", result.Scenario.Name, result.Error)
	for _, sr := range result.StepResults {
		mark := "ok"
		if !sr.Passed {
			mark = "FAILED"
		}
		fmt.Printf("      %2d %-12s %-6s events=[%s] state=%s\n",
			sr.Index+1, sr.Step.Action, mark, strings.Join(sr.Events, " "), sr.State)
	}
}

// defaultScenario is the page used by the interactive shell: a tall page
// with one element below the fold.
func defaultScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Name:     "interactive",
		Viewport: scenario.Viewport{Width: 800, Height: 600},
		Elements: []scenario.Element{
			{ID: "page", Width: 800, Height: 2000},
			{ID: "hero", Parent: "page", Top: 700, Left: 100, Width: 200, Height: 200},
		},
		Monitor: scenario.MonitorSpec{
			Element:  "hero",
			Strategy: config.Strategy,
			Interval: config.Interval,
			Throttle: config.Throttle,
			Start:    true,
		},
	}
}

func runInteractive() int {
	level := setupLogging(config.LogLevel)

	shell, err := interactive.New()
	if err != nil {
		log.Printf("Failed to start shell: %v", err)
		return 1
	}
	log.SetOutput(shell.Stdout())
	logger := slog.New(slog.NewTextHandler(shell.Stderr(), &slog.HandlerOptions{Level: level}))

	cfg, cleanup, err := sessionConfig(logger, level)
	defer cleanup()
	if err != nil {
		log.Printf("Setup failed: %v", err)
		return 1
	}
	if config.MockClock {
		cfg.Clock = clock.NewMock()
	} else {
		cfg.Clock = clock.New()
	}
	cfg.Observers = append(cfg.Observers, shell.Observe)

	session, err := scenario.NewSession(defaultScenario(), cfg)
	if err != nil {
		log.Printf("Failed to create session: %v", err)
		return 1
	}
	defer session.Close()
	shell.SetSession(session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go shell.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}
	return 0
}
