package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/mailify/pkg/engine/loader"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/bucket"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/local"
	"github.com/dmitrymomot/mailify/pkg/engine/loader/remote"
	"github.com/dmitrymomot/mailify/pkg/engine/source"
	"github.com/dmitrymomot/mailify/pkg/environment"
	"github.com/dmitrymomot/mailify/pkg/httpserver"
	"github.com/dmitrymomot/mailify/pkg/logger"
	"github.com/dmitrymomot/mailify/pkg/transport"
	"github.com/dmitrymomot/mailify/pkg/transport/dev"
	"github.com/dmitrymomot/mailify/pkg/transport/postmark"
	"github.com/dmitrymomot/mailify/pkg/transport/smtp"
)

// Config is the service configuration, read from the environment.
type Config struct {
	Env         environment.Environment `env:"APP_ENV" envDefault:"development"`
	ServiceName string                  `env:"SERVICE_NAME" envDefault:"mailify"`
	Version     string                  `env:"APP_VERSION" envDefault:"dev"`
	LogLevel    string                  `env:"LOG_LEVEL"`  // preset of APP_ENV when empty
	LogFormat   logger.Format           `env:"LOG_FORMAT"` // json or text, preset of APP_ENV when empty

	MailFrom  string `env:"MAIL_FROM"`
	Transport string `env:"MAIL_TRANSPORT" envDefault:"dev"`
	DevDir    string `env:"MAIL_DEV_DIR" envDefault:"./tmp/mail"`

	HTTP         httpserver.Config
	ProxyHeaders []string `env:"HTTP_PROXY_HEADERS" envSeparator:","`
	Templates    TemplatesConfig
	SMTP         smtp.Config
	Postmark     postmark.Config
}

// TemplatesConfig selects the template sources. They are tried in the order
// local, remote, bucket.
type TemplatesConfig struct {
	LocalDir      string        `env:"TEMPLATES_LOCAL_DIR"`
	RemoteURL     string        `env:"TEMPLATES_REMOTE_URL"`
	RemoteToken   string        `env:"TEMPLATES_REMOTE_TOKEN"`
	RemoteTimeout time.Duration `env:"TEMPLATES_REMOTE_TIMEOUT" envDefault:"10s"`
	MaxSize       int           `env:"TEMPLATE_MAX_SIZE" envDefault:"1048576"`
	S3            bucket.Config
}

func (c Config) loggerOptions() ([]logger.Option, error) {
	opts := []logger.Option{
		logger.WithEnvironment(c.Env, c.ServiceName),
		logger.WithFormat(c.LogFormat),
	}
	if c.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		opts = append(opts, logger.WithLevel(level))
	}
	return opts, nil
}

// newSource combines every configured template source.
func newSource(ctx context.Context, cfg TemplatesConfig) (source.Source, error) {
	var sources []source.Source

	if cfg.LocalDir != "" {
		sources = append(sources, local.New(cfg.LocalDir))
	}

	if cfg.RemoteURL != "" {
		opts := []remote.Option{
			remote.WithTimeout(cfg.RemoteTimeout),
			remote.WithMaxSize(int64(cfg.MaxSize)),
		}
		if cfg.RemoteToken != "" {
			opts = append(opts, remote.WithHeader("Authorization", "Bearer "+cfg.RemoteToken))
		}
		r, err := remote.New(cfg.RemoteURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("TEMPLATES_REMOTE_URL: %w", err)
		}
		sources = append(sources, r)
	}

	if cfg.S3.Bucket != "" {
		b, err := bucket.New(ctx, cfg.S3, bucket.WithMaxSize(int64(cfg.MaxSize)))
		if err != nil {
			return nil, fmt.Errorf("TEMPLATES_S3_BUCKET: %w", err)
		}
		sources = append(sources, b)
	}

	return loader.New(sources...)
}

// newSender builds the transport named by MAIL_TRANSPORT.
func newSender(cfg Config) (transport.Sender, error) {
	switch strings.ToLower(cfg.Transport) {
	case "smtp":
		s, err := smtp.New(cfg.SMTP)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postmark":
		s, err := postmark.New(cfg.Postmark)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "dev", "":
		return dev.New(cfg.DevDir), nil
	}
	return nil, fmt.Errorf("%w: unknown MAIL_TRANSPORT %q", transport.ErrInvalidConfig, cfg.Transport)
}
