package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cursorcrm/birthday-office/internal/config"
	"github.com/cursorcrm/birthday-office/internal/engine"
	"github.com/cursorcrm/birthday-office/internal/export"
	"github.com/cursorcrm/birthday-office/internal/i18n"
	"github.com/cursorcrm/birthday-office/internal/registry"
	"github.com/cursorcrm/birthday-office/internal/server"
	"github.com/cursorcrm/birthday-office/internal/view"
)

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
// os.Exit() does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	configPath := flag.String(config.FlagConfig, config.DefaultConfigPath, config.FlagDescConfig)
	listenAddr := flag.String(config.FlagListen, "", config.FlagDescListen)
	importPath := flag.String(config.FlagImport, "", config.FlagDescImport)
	setKey := flag.Bool(config.FlagSetKey, false, config.FlagDescSetKey)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	// We configure structured logging (slog) early to capture startup issues.
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if *setKey {
		return runSetKey(*configPath)
	}

	if err := run(ctx, *configPath, *listenAddr, *importPath); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run loads configuration, wires dependencies, starts the refresh scheduler
// and blocks on the HTTP server until the context is cancelled.
func run(ctx context.Context, configPath, listenOverride, importPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenOverride != "" {
		cfg.Listen = listenOverride
	}

	// Dependency Injection.
	clock := engine.RealClock{}
	translator := i18n.New(cfg.Language)

	fetcher, err := newFetcher(cfg, importPath)
	if err != nil {
		return err
	}

	state := view.New(clock)
	state.SetOrder(engine.SortOrder(cfg.SortOrder))

	srv := server.New(cfg.Listen, state, clock, translator)

	// Month navigation anywhere refreshes the badges elsewhere; here that is
	// a log line plus whatever the listener owner attaches later.
	state.OnMonthChange(func(month int) {
		slog.Info(config.MsgMonthChanged,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyMonth, month,
		)
	})

	sync := newSyncer(fetcher, srv, state, clock, translator)

	if err := startScheduler(ctx, cfg.RefreshCron, sync); err != nil {
		return err
	}

	// First sync before serving, so the feed is warm when clients connect.
	// A failure is logged, not fatal; the scheduler will retry.
	sync(ctx)

	return srv.Start(ctx)
}

// newFetcher selects the roster source: a local vCard file in import mode,
// otherwise the hosted registry with the keyring-stored service key.
func newFetcher(cfg *config.FileConfig, importPath string) (registry.RosterFetcher, error) {
	if importPath != "" {
		fetcher, err := registry.NewFileFetcher(importPath)
		if err != nil {
			return nil, err
		}
		slog.Info(config.MsgImportMode,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyFile, importPath,
		)
		return fetcher, nil
	}

	serviceKey, err := registry.Credentials{}.ServiceKey(cfg.Registry.User)
	if err != nil {
		slog.Warn(config.ErrKeyringGet,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
	}
	return registry.NewHTTPFetcher(cfg.Registry.BaseURL, serviceKey), nil
}

// runSetKey provisions the registry service key for the configured user and
// exits; the serving process only ever reads the keyring.
func runSetKey(configPath string) int {
	if err := storeServiceKey(configPath, os.Stdin); err != nil {
		slog.Error(config.ErrKeyringSet,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}
	slog.Info(config.MsgKeyStored, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// storeServiceKey reads the key as the first line of r (stdin, so the secret
// never appears in argv or shell history) and stores it in the OS keyring.
func storeServiceKey(configPath string, r io.Reader) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(r)
	scanner.Scan()
	if err := scanner.Err(); err != nil {
		return err
	}
	key := strings.TrimSpace(scanner.Text())
	if key == "" {
		return errors.New(config.ErrKeyEmpty)
	}

	return registry.Credentials{}.SetServiceKey(cfg.Registry.User, key)
}

// syncFunc runs one fetch → encode → publish cycle.
type syncFunc func(ctx context.Context)

// newSyncer builds the pipeline shared by the startup sync and the cron
// schedule: fetch the roster, refresh the server snapshot, regenerate the
// ICS feed, and log the stats.
func newSyncer(fetcher registry.RosterFetcher, srv *server.Server, state *view.State, clock engine.Clock, translator *i18n.Translator) syncFunc {
	return func(ctx context.Context) {
		log := slog.With(config.LogKeyComponent, config.CompWorker)
		log.Info(config.MsgSyncStarted)
		start := time.Now()

		clients, err := fetcher.FetchClients(ctx)
		if err != nil {
			log.Error(config.MsgSyncFailed, config.LogKeyError, err)
			return
		}

		srv.UpdateRoster(clients)

		now := clock.Now()
		feed, err := export.ToICS(clients, now, translator)
		if err != nil {
			log.Error(config.MsgSyncFailed, config.LogKeyError, err)
			return
		}
		srv.UpdateFeed(feed)

		stats := engine.Summarize(clients, state.Snapshot().Month, now)
		stats.Log()
		log.Info(config.MsgSyncSuccess,
			config.LogKeyCount, len(clients),
			config.LogKeyDuration, time.Since(start).Milliseconds(),
		)
	}
}

// startScheduler arms the cron-driven periodic roster refresh.
func startScheduler(ctx context.Context, spec string, sync syncFunc) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { sync(ctx) }); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCronSchedule, err)
	}
	c.Start()

	slog.Info(config.MsgWorkerStart,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyCron, spec,
	)

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgWorkerStop, config.LogKeyComponent, config.CompWorker)
		c.Stop()
	}()
	return nil
}

// printVersion outputs the build information to stdout and exits.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyDate, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	// 1. Always write to Stdout.
	writers = append(writers, os.Stdout)

	// 2. Attempt to set up a file writer in the user's cache directory.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
