package main

import (
	"github.com/caseworks/entitygraph/internal/server"
	"github.com/caseworks/entitygraph/internal/util"
	"github.com/caseworks/entitygraph/pkg/logger"
	"github.com/caseworks/entitygraph/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
