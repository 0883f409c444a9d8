package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ghost-Author/fish-game/internal/app"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "path to the TOML config file")
	flag.Parse()

	path := *cfgPath
	if path == "" {
		if p := os.Getenv("FISHSERVER_CONFIG"); p != "" {
			path = p
		} else if _, err := os.Stat("config/server.toml"); err == nil {
			path = "config/server.toml"
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, path)
}
