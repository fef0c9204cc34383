package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/sync/errgroup"

	"codraft/ai"
	"codraft/auth"
	"codraft/domain"
	"codraft/domain/policy"
	"codraft/infrastructure/http"
	"codraft/internal"
	"codraft/moderation"
	"codraft/observability"
	"codraft/projection"
	"codraft/repositories"
	"codraft/runtime"
	"codraft/runtime/workers"
	"codraft/services"
	"codraft/sink"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// main is a thin wrapper: run() owns the lifecycle, main owns the exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. Defers run before the process exits, which
// keeps database cleanup out of main.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	pattern, err := policy.NewMentionPattern(config.MentionPattern)
	if err != nil {
		return exitConfig, fmt.Errorf("invalid mention pattern: %w", err)
	}

	agentID, err := domain.NewUserID(config.AgentUserID)
	if err != nil {
		return exitConfig, fmt.Errorf("invalid agent user id: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Repositories & domain collaborators
	documentRepository := repositories.NewDocumentRepository(db, logger)
	sessionRepository := repositories.NewSessionRepository(db, logger)
	userRepository := repositories.NewUserRepository(db)
	searchRepository := repositories.NewSearchRepository(blugeWriter, logger, config.SearchBatchSize)

	moderator, err := moderation.NewModerator(config.CensoredWords, charReplacement, logger)
	if err != nil {
		return exitConfig, fmt.Errorf("moderator init failed: %w", err)
	}

	agentOpts := []func(o *ai.Options){ai.WithAPIKey(config.AgentAPIKey)}
	if config.AgentModel != "" {
		agentOpts = append(agentOpts, ai.WithModel(anthropic.Model(config.AgentModel)))
	}
	agent := ai.NewAgent(agentOpts...)

	// 4. Supervision & Orchestration
	monitor := observability.NewMonitoringManager(logger)
	sup := workers.NewSupervisor(logger)
	registry := runtime.NewRegistry()
	timeline := projection.NewTimeline(config.TimelineCapacity)

	orchestrator := runtime.NewOrchestrator(
		logger, sup, registry,
		documentRepository, sessionRepository,
		moderator, pattern,
		agent, agentID,
		runtime.Options{
			BufferSize:      config.BufferSize,
			MaxCapacity:     config.MaxSessionCapacity,
			MentionDebounce: config.MentionDebounce,
			AgentTimeout:    config.AgentTimeout,
		},
	)
	orchestrator.SetMonitor(monitor)
	orchestrator.Add(
		sink.NewDiskSink(documentRepository, logger),
		sink.NewIndexSink(searchRepository, logger),
		sink.NewMetricsSink(monitor),
		timeline,
	)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orchestrator.Start(ctx); err != nil {
		return exitRuntime, fmt.Errorf("orchestrator start failed: %w", err)
	}

	if config.DebugPort > 0 {
		url := fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort)
		logger.Info("Debug inspector available", "url", url)
		internal.StartDebugServer(db, config.DebugPort, "/inspect", nil, func() map[string]any {
			stats := monitor.AsMap()
			stats["recent_activity"] = timeline.Entries()
			return stats
		})
	}

	// 6. HTTP surface
	tokens := auth.NewTokenManager(config.AuthSigningKey, config.AuthTokenDuration)
	collabService := services.NewCollabService(orchestrator, documentRepository, searchRepository)
	authService := services.NewAuthService(userRepository, tokens)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := http.NewServer(address, collabService, authService, tokens,
		config.ConnectionBufferSize, logger)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(server.Start)
	group.Go(func() error {
		monitor.Listen(groupCtx, config.MetricInterval)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("Shutting down gracefully...")
		shutdownCtx := context.Background()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown failed", "error", err)
		}
		orchestrator.Stop()
		if err := searchRepository.Flush(); err != nil {
			logger.Error("Final search flush failed", "error", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return exitRuntime, err
	}

	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
