package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// @title Glider Ops API
// @version 1.0.0
// @description Field season lifecycle and station offload status engine for ocean glider missions.
// @BasePath /api/v1
// @schemes http

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
