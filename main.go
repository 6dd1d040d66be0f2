// Command battleship-server runs the real-time battleship match
// coordinator: anonymous clients connect over WebSocket, are paired by
// the matchmaking queue, place their fleets, and play turn-based
// matches in private two-player rooms.
//
// All state is process-memory and lost on restart. Flags and
// environment variables (optionally from a .env file) control the
// listen address, logging, and the game's timers and capacity.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/gridstrike/battleship/api"
	"github.com/gridstrike/battleship/game/config"
	"github.com/gridstrike/battleship/game/match"
	"github.com/gridstrike/battleship/game/presence"
	"github.com/gridstrike/battleship/game/room"
	"github.com/gridstrike/battleship/game/service"
	"github.com/gridstrike/battleship/game/state"
	"github.com/gridstrike/battleship/transport/websocket"
)

const (
	Version = "1.0.0"
	AppName = "Battleship Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cmd := &cli.Command{
		Name:    "battleship-server",
		Usage:   "real-time two-player battleship match coordinator",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "listen host (overrides HOST)"},
			&cli.IntFlag{Name: "port", Usage: "listen port (overrides PORT)"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// run wires the coordinator and serves until interrupted.
func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := config.FromEnv()
	if h := cmd.String("host"); h != "" {
		cfg.Host = h
	}
	if p := int(cmd.Int("port")); p != 0 {
		cfg.Port = p
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	gate := state.NewGate()
	queue := match.NewQueue()
	registry := room.NewRegistry(cfg.MaxConcurrentRooms, cfg.RoomCooldown)
	tracker := presence.NewTracker(cfg.GracePeriod)
	defer tracker.Stop()

	hub := websocket.NewHub()
	svc := service.NewGameService(cfg, queue, registry, tracker, gate, hub)
	hub.Bind(svc)
	go hub.Run()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewServer(svc, hub),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("version", Version).Msg("starting " + AppName)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
