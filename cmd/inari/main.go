package main

import (
	"os"

	"go.uber.org/zap"

	"inari-web/internal/command"
	"inari-web/internal/logger"
)

func main() {
	zl, err := logger.New(os.Getenv("ENV"))
	if err != nil {
		panic(err)
	}
	defer zl.Sync()

	app := command.NewApp(os.Stdout, nil)
	if err := app.Run(os.Args); err != nil {
		zl.Error("failed to run cli app", zap.Error(err))
		os.Exit(1)
	}
}
