package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/topcoder-platform/playoff-processor/internal/adapters/mq/kafka"
	app "github.com/topcoder-platform/playoff-processor/internal/app"
	"github.com/topcoder-platform/playoff-processor/internal/config"
	"github.com/topcoder-platform/playoff-processor/internal/players"
	"github.com/topcoder-platform/playoff-processor/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	httpClient := &http.Client{}
	client := app.PlayoffClient(cfg, app.PlayoffTokens(cfg, httpClient), httpClient)

	root := players.NewRootCommand(players.Deps{
		Config: cfg,
		Connect: func(ctx context.Context) (players.PlayerAPI, error) {
			session, err := client.Session(ctx)
			if err != nil {
				return nil, err
			}
			return session, nil
		},
		NewPublisher: func() (players.Publisher, error) {
			pub, err := kafka.NewPublisher(kafka.Config{
				Brokers:    cfg.KafkaBrokers(),
				Topic:      cfg.KafkaTopic,
				ClientCert: cfg.KafkaClientCert,
				ClientKey:  cfg.KafkaClientCertKey,
			})
			if err != nil {
				return nil, err
			}
			return pub, nil
		},
	})

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error(ctx, "command failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
	log.Info(ctx, "done")
}
