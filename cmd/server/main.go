package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/brvnobarreto/activity-log-controller/internal/app"
)

// @title       Activity Log Controller API
// @version     1.0
// @description Fiscalization activity tracking: activities, photos, employees, reports.
// @BasePath    /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}
