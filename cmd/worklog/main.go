package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/safad/worklog/internal/cli"
	"github.com/safad/worklog/internal/infrastructure/config"
	"github.com/safad/worklog/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 2
	}

	logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
		App:    "worklog",
	})

	return cli.Execute(ctx, cli.Deps{Config: cfg, Log: logger.Component("cli")}, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
