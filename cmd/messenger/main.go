package main

import (
	"bufio"
	"fmt"
	"os"

	env "github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"messenger-lab/internal"
	"messenger-lab/moderation"
	"messenger-lab/observability"
	"messenger-lab/repositories"
	"messenger-lab/search"
	"messenger-lab/services"
)

// Exit codes to provide meaningful status to the operating system or a
// service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "messenger terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, hands control to the REPL, and
// centralizes error reporting so deferred cleanups always execute.
func run() (int, error) {
	// 1. Configuration & logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	replacement, err := config.CharacterRune()
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Local stores (BadgerDB + Bluge)
	options := badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := search.Open(config.BlugeFilepath, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open search index: %w", err)
	}
	defer func() {
		logger.Info("Closing search index...")
		_ = index.Close()
	}()

	// 3. Core wiring
	moderator, err := moderation.NewModerator(config.CensoredWordList(), replacement)
	if err != nil {
		return exitConfig, fmt.Errorf("building moderator: %w", err)
	}

	users := repositories.NewUserRepository(db)
	messages := repositories.NewMessageRepository(db, logger)
	sessions := repositories.NewSessionRepository(db)
	preferences := repositories.NewPreferenceRepository(db)

	authService := services.NewAuthService(users, sessions, config.SessionTokenDuration, logger)
	chatService := services.NewChatService(authService, users, messages, index, moderator, logger)

	if err := authService.SeedDemoAccounts(); err != nil {
		return exitRuntime, fmt.Errorf("seeding demo accounts: %w", err)
	}

	monitor := observability.NewMonitor(logger)

	// 4. Optional store inspector
	if config.DebugPort > 0 {
		url := fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort)
		logger.Info("Store inspector available", "url", url)
		internal.StartDebugServer(db, config.DebugPort, "/inspect", internal.StoreMapper, monitor.Fields)
	}

	// 5. Session restore, then the REPL
	if restored, err := chatService.Restore(); err != nil {
		return exitRuntime, fmt.Errorf("restoring session: %w", err)
	} else if restored {
		logger.Info("Session restored", "username", chatService.Session().Username)
	}

	repl := newREPL(chatService, preferences, monitor, config.SearchLimit, logger)
	repl.Run(bufio.NewScanner(os.Stdin))
	return exitOK, nil
}
