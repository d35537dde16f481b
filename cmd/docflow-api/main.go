package main

import (
	"context"
	"os"
	"time"

	"github.com/dukex/docflow/pkg/cmd"
	"github.com/dukex/docflow/pkg/directory"
	"github.com/dukex/docflow/pkg/log"
	"github.com/dukex/docflow/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
)

const (
	serviceName          = "docflow-api"
	defaultPort          = 9091
	defaultRegistrarRole = "ROLE_VSM_DOCFLOW_REGISTRATOR"
)

func main() {
	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Create, route and register correspondence",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL (postgres:// or sqlite://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "users-service-url",
				Usage:   "Base URL of the user directory service",
				Value:   directory.DefaultBaseURL,
				Sources: cli.EnvVars("USERS_SERVICE_URL"),
			},
			&cli.DurationFlag{
				Name:    "directory-connect-timeout",
				Usage:   "Connect timeout for user directory requests",
				Value:   directory.DefaultConnectTimeout,
				Sources: cli.EnvVars("DIRECTORY_CONNECT_TIMEOUT"),
			},
			&cli.DurationFlag{
				Name:    "directory-read-timeout",
				Usage:   "Read timeout for user directory requests",
				Value:   directory.DefaultReadTimeout,
				Sources: cli.EnvVars("DIRECTORY_READ_TIMEOUT"),
			},
			&cli.DurationFlag{
				Name:    "directory-write-timeout",
				Usage:   "Write timeout for user directory requests",
				Value:   directory.DefaultWriteTimeout,
				Sources: cli.EnvVars("DIRECTORY_WRITE_TIMEOUT"),
			},
			&cli.IntFlag{
				Name:    "directory-pool-limit",
				Usage:   "Maximum open connections to the user directory",
				Value:   directory.DefaultPoolLimit,
				Sources: cli.EnvVars("DIRECTORY_POOL_LIMIT"),
			},
			&cli.StringFlag{
				Name:    "registrar-role",
				Usage:   "Directory role allowed to register documents",
				Value:   defaultRegistrarRole,
				Sources: cli.EnvVars("ROLE_VSM_DOCFLOW_REGISTRATOR"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the session cache; caching is off when empty",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.DurationFlag{
				Name:    "session-cache-ttl",
				Usage:   "How long a resolved session stays cached",
				Value:   300 * time.Second,
				Sources: cli.EnvVars("SESSION_CACHE_TTL"),
			},
			&cli.StringFlag{
				Name:    "session-cache-namespace",
				Usage:   "Key prefix for cached sessions",
				Value:   "docflow",
				Sources: cli.EnvVars("SESSION_CACHE_NAMESPACE"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing Docflow API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			publisher, err := cmd.NewEventPublisher(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := publisher.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event publisher", "error", err)
				}
			}()

			var dir directory.Directory = directory.NewClient(directory.Config{
				BaseURL:        command.String("users-service-url"),
				ConnectTimeout: command.Duration("directory-connect-timeout"),
				ReadTimeout:    command.Duration("directory-read-timeout"),
				WriteTimeout:   command.Duration("directory-write-timeout"),
				PoolLimit:      command.Int("directory-pool-limit"),
			}, logger)

			if redisURL := command.String("redis-url"); redisURL != "" {
				client, err := directory.NewRedisClient(ctx, redisURL)
				if err != nil {
					return err
				}

				defer func() { _ = client.Close() }()

				dir = directory.NewSessionCache(dir, client, command.String("session-cache-namespace"), command.Duration("session-cache-ttl"), logger)
			}

			tracer := otelhelper.NoopTracer()
			if command.Bool("tracing") {
				tracer, err = otelhelper.NewTracer(ctx, serviceName)
				if err != nil {
					return err
				}
			}

			api := NewAPI(
				logger,
				persistence,
				dir,
				publisher,
				tracer,
				command.String("registrar-role"),
			)

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
