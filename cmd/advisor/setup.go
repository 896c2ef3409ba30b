package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/policyadvisor/internal/config"
	"github.com/sandevgo/policyadvisor/internal/providers/backend"
	"github.com/sandevgo/policyadvisor/internal/service/command"
	"github.com/sandevgo/policyadvisor/internal/service/conversation"
	"github.com/sandevgo/policyadvisor/internal/service/dispatch"
	"github.com/sandevgo/policyadvisor/internal/service/selection"
	"github.com/sandevgo/policyadvisor/internal/service/session"
	"github.com/sandevgo/policyadvisor/internal/storage/sqlite"
	"github.com/sandevgo/policyadvisor/internal/transport/cli"
	"github.com/sandevgo/policyadvisor/pkg/log"
	"github.com/sandevgo/policyadvisor/pkg/srv"
)

// NewServices wires the full client: config → storage → backend client →
// session machinery → dispatcher → chat transport. The transport runs in
// the foreground; background services only hold cleanups.
func NewServices(ctx context.Context) (*cli.ReadLine, []srv.Service) {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	backendCfg := config.NewBackendConfig(ctx)

	// 2. Durable slot storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))
	slot := sqlite.NewSlotRepo(db)

	// 3. Backend client
	client := backend.NewClient(backendCfg)

	// 4. Conversation state
	store := conversation.NewStore()
	sel := selection.NewSet()
	directory := session.NewDirectory(client)
	manager := session.NewManager(client, slot, store, sel, directory)

	// 5. Dispatch
	router := dispatch.NewRouter(client, manager, store, sel, appCfg.ReplayWindow)

	// 6. In-chat commands
	commands := command.New(command.NewCommands(client, manager, directory, router, store, sel))

	// 7. Chat transport
	transport, err := cli.NewReadLine(appCfg, manager, router, commands, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize chat transport")
	}

	return transport, services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
