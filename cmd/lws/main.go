// Command lws serves the built-in endpoints over TCP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"lite-web-server/application/http"
	"lite-web-server/application/http/actor/server"
	"lite-web-server/application/lws/plugin"
	"lite-web-server/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// LevelSystem is above every other level so that it always shows up.
const LevelSystem = slog.LevelError + 4

type config struct {
	port      uint
	verbosity int
	static    string
}

func main() {
	var cfg config
	flag.UintVar(&cfg.port, "port", 8000, "port to listen on")
	flag.IntVar(&cfg.verbosity, "v", 4, "log verbosity: 1 system, 2 error, 3 warn, 4 debug")
	flag.StringVar(&cfg.static, "static", "./load", "directory of static files")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-port N] [-v 1..4] [-static DIR]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalln(err)
	}
}

func run(cfg config) error {
	level, err := levelOf(cfg.verbosity)
	if err != nil {
		return err
	}
	if cfg.port > 0xFFFF {
		return errors.Errorf("invalid port: %d", cfg.port)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := server.NewRegistry()
	if err := plugin.Register(registry, os.DirFS(cfg.static), http.DefaultEncodeOptions.ServerVersion); err != nil {
		return errors.Wrap(err, "registering endpoints")
	}

	dispatcher, err := server.NewDispatcher(registry, logger, server.DispatcherOptions{})
	if err != nil {
		return errors.Wrap(err, "creating dispatcher")
	}

	lis, err := tcp.Listen(uint16(cfg.port))
	if err != nil {
		return errors.Wrap(err, "listening")
	}

	s := server.New(lis, dispatcher, logger, clock.New(), server.DefaultOptions())
	s.Start(ctx)
	logger.Log(ctx, LevelSystem, "lws is running", "port", cfg.port, "static", cfg.static)

	<-ctx.Done()
	logger.Log(context.Background(), LevelSystem, "shutting down")

	return s.Close()
}

// levelOf maps verbosity onto the lowest level logged.
func levelOf(verbosity int) (slog.Level, error) {
	switch verbosity {
	case 1:
		return LevelSystem, nil
	case 2:
		return slog.LevelError, nil
	case 3:
		return slog.LevelWarn, nil
	case 4:
		return slog.LevelDebug, nil
	}
	return 0, errors.Errorf("verbosity must be in 1..4, got %d", verbosity)
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level == LevelSystem {
		a.Value = slog.StringValue("SYSTEM")
	}
	return a
}
