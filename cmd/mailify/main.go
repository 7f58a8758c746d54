// Command mailify serves the template rendering and delivery API.
//
// Configuration comes from the environment. An env file can be named with
// -config or MAILIFY_CONFIG; otherwise an optional ./.env is read.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/mailify/internal/server"
	"github.com/dmitrymomot/mailify/pkg/clientip"
	"github.com/dmitrymomot/mailify/pkg/config"
	"github.com/dmitrymomot/mailify/pkg/engine"
	"github.com/dmitrymomot/mailify/pkg/httpserver"
	"github.com/dmitrymomot/mailify/pkg/logger"
	"github.com/dmitrymomot/mailify/pkg/requestid"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "mailify: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mailify", flag.ContinueOnError)
	envFile := fs.String("config", os.Getenv("MAILIFY_CONFIG"), "path to an env file with the service configuration")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *envFile != "" {
		if err := config.LoadEnv(*envFile); err != nil {
			return err
		}
	}

	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	logOpts, err := cfg.loggerOptions()
	if err != nil {
		return err
	}
	log := logger.New(append(logOpts, logger.WithContextExtractors(
		requestid.LoggerExtractor(),
		clientip.LoggerExtractor(),
	))...)
	logger.SetAsDefault(log)

	src, err := newSource(ctx, cfg.Templates)
	if err != nil {
		return err
	}
	sender, err := newSender(cfg)
	if err != nil {
		return err
	}

	eng := engine.New(src,
		engine.WithDefaultFrom(cfg.MailFrom),
		engine.WithMaxSize(cfg.Templates.MaxSize),
	)
	api := server.New(eng, sender,
		server.WithLogger(log),
		server.WithVersion(cfg.Version),
		server.WithProxyHeaders(cfg.ProxyHeaders...),
	)

	return httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("mailify ready",
				slog.String("version", cfg.Version),
				logger.Transport(cfg.Transport),
			)
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("mailify stopped", slog.String("version", cfg.Version))
		}),
	).Run(ctx, api.Routes())
}
