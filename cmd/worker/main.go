package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/caseworks/entitygraph/internal/metrics"
	"github.com/caseworks/entitygraph/internal/queue"
	"github.com/caseworks/entitygraph/internal/util"
	"github.com/caseworks/entitygraph/pkg/logger"
	"github.com/caseworks/entitygraph/pkg/logger/console"
	"github.com/caseworks/entitygraph/pkg/match"
	"github.com/caseworks/entitygraph/pkg/screen"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	metrics.InitFromEnv()

	cmp := match.NewComparator(match.ConfigFromEnv())
	screener := screen.NewScreener(cmp, screen.FileLoader{
		Path: util.GetEnvString("REFERENCE_LIST_PATH", "data/reference.json"),
	})

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	// Init rabbitmq queues if not exist
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	// One job at a time per worker process
	if err := ch.Qos(1, 0, true); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	logger.Info("Listening for messages")

	if err := queue.ConsumeJobs(ctx, ch, cmp, screener); err != nil {
		logger.Fatal("Consumer failed", "err", err)
	}

	logger.Info("Shutdown signal received, exiting...")
}
