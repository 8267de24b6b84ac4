package cmd

import (
	"context"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stock-insight/internal/delivery/http"
	"stock-insight/internal/repository"
	"stock-insight/internal/service"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the stock-insight API server",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repos, err := repository.New(appDep.cfg, appDep.log, appDep.cache)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}

	services := service.New(appDep.cfg, appDep.log, repos, appDep.tasks)
	if err := services.Task.StartSweeper(); err != nil {
		log.Fatalf("Failed to start task sweeper: %v", err)
	}

	httpHandler := http.NewHttpAPIHandler(ctx, appDep.echo, appDep.validator, services)

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	services.Task.StopSweeper()

	if err := apiServer.Stop(); err != nil {
		log.Fatalf("Failed to stop HTTP server: %v", err)
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
