package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/huddle-app/huddle/internal/adapters/http"
	signalws "github.com/huddle-app/huddle/internal/adapters/signal"
	"github.com/huddle-app/huddle/internal/app"
	"github.com/huddle-app/huddle/internal/config"
	"github.com/huddle-app/huddle/internal/store"
	memorystore "github.com/huddle-app/huddle/internal/store/memory"
	mongostore "github.com/huddle-app/huddle/internal/store/mongo"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	roomStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open room store")
	}
	defer closeStore()

	// The process-scoped state bundle: presence, buffers, grants and the
	// gateway live exactly as long as the process.
	ctl := signalws.NewController(cfg)
	presence := app.NewPresence()
	gateway := app.NewGateway(roomStore)
	grants := app.NewGrantTable(cfg.ApprovalGrace)
	buffer := app.NewSignalBuffer(presence, ctl, cfg.SignalRetryInterval, cfg.SignalMaxAge)
	coord := app.NewCoordinator(presence, gateway, grants, buffer, ctl)
	ctl.Coord = coord
	defer coord.Close()

	rooms := &router.RoomsHandler{Gateway: gateway, Grants: grants}
	r := router.SetupRouter(ctx, cfg, ctl, rooms)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Huddle coordinator started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

func openStore(ctx context.Context, cfg *config.Config) (store.RoomStore, func(), error) {
	switch cfg.Store {
	case "mongo":
		st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("db", cfg.MongoDatabase).Msg("using mongo room store")
		return st, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := st.Close(closeCtx); err != nil {
				log.Error().Err(err).Msg("mongo disconnect")
			}
		}, nil
	default:
		log.Info().Msg("using in-memory room store")
		return memorystore.New(), func() {}, nil
	}
}
