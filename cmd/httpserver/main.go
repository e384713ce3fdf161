package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"httpserve/internal/router"
	"httpserve/internal/server"
)

func main() {
	defaults := server.DefaultConfig()

	addr := flag.String("addr", defaults.Addr, "listen address")
	directory := flag.String("directory", defaults.FilesRoot, "publish directory for /files routes")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if *debug {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	cfg := defaults
	cfg.Addr = *addr
	cfg.FilesRoot = *directory

	rt := router.New(cfg.FilesRoot)
	srv := server.New(cfg, rt.Route, log)
	srv.Use(server.LoggingMiddleware(log))

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
		return
	case sig := <-sigc:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}

	stats := srv.Stats()
	log.Info().
		Int64("requests", stats.RequestsTotal).
		Int64("errors_4xx", stats.Errors4xx).
		Int64("errors_5xx", stats.Errors5xx).
		Dur("avg_latency", stats.AverageLatency).
		Msg("server stopped")
}
