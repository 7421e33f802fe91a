package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/auditflow/auditflow/pkg/cmd"
	"github.com/auditflow/auditflow/pkg/gateway"
	"github.com/auditflow/auditflow/pkg/log"
	"github.com/auditflow/auditflow/pkg/otelhelper"
	"github.com/auditflow/auditflow/pkg/poller"
	"github.com/auditflow/auditflow/pkg/session"
	"github.com/auditflow/auditflow/pkg/workflow"
)

const (
	defaultPort       = 9080
	defaultSessionTTL = 24 * time.Hour
)

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "auditflow",
		Usage:                 "Run the repository audit pipeline engine",
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
				Name:     "engine-url",
				Usage:    "Base URL of the remote audit services",
				Required: true,
				Sources:  cli.EnvVars("ENGINE_URL"),
			},
			&cli.StringFlag{
				Name:    "session-url",
				Usage:   "Session store URL (file://, redis://, postgres:// or memory://)",
				Value:   "file://./data/session",
				Sources: cli.EnvVars("SESSION_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Usage:   "Age after which an untouched session is purged",
				Value:   defaultSessionTTL,
				Sources: cli.EnvVars("SESSION_TTL"),
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

			logger.InfoContext(ctx, "Initializing AuditFlow API")

			store, err := cmd.NewSessionStore(ctx, command.String("session-url"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close session store", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			tracer, err := otelhelper.NewTracer(ctx, "auditflow")
			if err != nil {
				logger.WarnContext(ctx, "Tracing disabled", "error", err)
			}

			client := gateway.NewHTTPClient(command.String("engine-url"), logger, tracer)
			sessions := session.NewRepository(store)
			jobPoller := poller.New(client, logger)

			controller := workflow.NewController(client, sessions, jobPoller, eventBus, logger)
			if err := controller.Resume(ctx); err != nil {
				logger.WarnContext(ctx, "Could not resume previous session", "error", err)
			}

			janitor := session.NewJanitor(sessions, command.Duration("session-ttl"), logger)
			if err := janitor.Start(ctx, session.DefaultJanitorSchedule); err != nil {
				return err
			}
			defer janitor.Stop()

			api := NewAPI(logger, controller)

			return api.Start(command.Int("port"))
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
