package main

import (
	"github.com/lumen-atj/lumen/backend/internal/server"
	"github.com/lumen-atj/lumen/backend/internal/util"
	"github.com/lumen-atj/lumen/backend/pkg/logger"
	"github.com/lumen-atj/lumen/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
		JSON:  util.GetEnvBool("LOG_JSON", false),
	})
	logger.Init(consoleLogger)

	server.Init()
}
