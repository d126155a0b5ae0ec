// Package main is the entry point for the content bot service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/tdlm/content-bot/internal/app"
)

var (
	// version can be set at build time via -ldflags
	version = "dev"
)

func main() {
	// A missing .env file is the normal case in deployment.
	_ = godotenv.Load()

	ctx := context.Background()

	application, err := app.New(ctx, app.Options{Version: version})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to close application: %v\n", closeErr)
		}
	}()

	if runErr := application.Run(ctx); runErr != nil {
		application.Logger().Error("Application error")
		os.Exit(1)
	}
}
