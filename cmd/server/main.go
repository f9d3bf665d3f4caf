package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lastseenhq/lastseen/authflow"
	"github.com/lastseenhq/lastseen/directory/sqlite"
	"github.com/lastseenhq/lastseen/internal/config"
	"github.com/lastseenhq/lastseen/location"
	"github.com/lastseenhq/lastseen/server"
	"github.com/lastseenhq/lastseen/session"
)

// sessionSweepInterval controls how often sessions that expired but
// were never presented again are reclaimed.
const sessionSweepInterval = 15 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	// Startup-time failures are fatal by design: the server must not
	// start half-configured.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configureLogging(cfg)
	displayAppname(cfg.AppName)

	dir, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening directory: %w", err)
	}
	defer dir.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flow, err := authflow.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building auth flow: %w", err)
	}

	sessions := session.NewStore(cfg.SessionIdleTTL, cfg.SessionAbsoluteTTL)
	go sessions.RunSweeper(ctx, sessionSweepInterval)

	locations := location.NewStore()

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: server.New(cfg, flow, sessions, locations, dir),
	}

	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func configureLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
