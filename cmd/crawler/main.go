package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"lkcrawl/cmd/crawler/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := commands.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
