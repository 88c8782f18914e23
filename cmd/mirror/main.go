package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"model-mirror-service/internal/adapters/secondary/awsclient"
	"model-mirror-service/internal/adapters/secondary/localfs"
	"model-mirror-service/internal/config"
	"model-mirror-service/internal/core/services"
	"model-mirror-service/internal/logger"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := newApp(cfg).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the CLI. Flags default to the environment backed config, so
// either source can drive the agent.
func newApp(cfg *config.Config) *cli.App {
	return &cli.App{
		Name:            "model-mirror",
		Usage:           "Keep a local folder in step with the central model bucket.",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "queue-url",
				Usage: "URL of the queue receiving the bucket's event notifications",
				Value: cfg.Mirror.QueueURL,
			},
			&cli.StringFlag{
				Name:  "local-folder",
				Usage: "folder mirrored objects are written to",
				Value: cfg.Mirror.LocalFolder,
			},
			&cli.IntFlag{
				Name:  "wait-seconds",
				Usage: "long poll duration, at most 20",
				Value: int(cfg.Mirror.WaitTime / time.Second),
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "messages fetched per poll, at most 10",
				Value: int(cfg.Mirror.BatchSize),
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "region of the queue and bucket; defaults to the AWS config chain",
				Value: cfg.AWS.Region,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: trace/debug/info/warn/error",
				Value: cfg.Logger.Level,
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format: json/text",
				Value: cfg.Logger.Format,
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "write logs to this file, rotated daily",
				Value: cfg.Logger.File,
			},
		},
		Action: run,
	}
}

var errMissingFlag = errors.New("required flag not set")

func run(c *cli.Context) error {
	for _, name := range []string{"queue-url", "local-folder"} {
		if c.String(name) == "" {
			return fmt.Errorf("%w: --%s", errMissingFlag, name)
		}
	}

	err := logger.Init(logger.Options{
		Level:  c.String("log-level"),
		Format: c.String("log-format"),
		File:   c.String("log-file"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsclient.LoadEngineConfig(ctx, c.String("region"))
	if err != nil {
		return err
	}

	local, err := localfs.NewStore(c.String("local-folder"))
	if err != nil {
		return fmt.Errorf("local folder: %w", err)
	}

	mirror := services.NewLocalMirror(
		awsclient.NewMessageQueue(awsCfg, c.String("queue-url")),
		awsclient.NewObjectReader(awsCfg),
		local,
		services.LocalMirrorConfig{
			Wait:  time.Duration(c.Int("wait-seconds")) * time.Second,
			Batch: int32(c.Int("batch-size")),
		},
	)

	log.WithFields(log.Fields{
		"queue":  c.String("queue-url"),
		"folder": c.String("local-folder"),
	}).Info("polling for model events")
	return mirror.Run(ctx)
}
