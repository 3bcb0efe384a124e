package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/fikalearn/paperweek/internal/app"
	"github.com/fikalearn/paperweek/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start service: %v", err)
	}
	defer service.Close()

	paperHandler := handlers.NewPaperHandler(service)
	schedulerHandler := handlers.NewSchedulerHandler(service)

	http.HandleFunc("POST /api/v1/papers/generate", paperHandler.HandleGenerate)
	http.HandleFunc("GET /api/v1/papers", paperHandler.HandleList)
	http.HandleFunc("GET /api/v1/papers/{id}", paperHandler.HandleGet)
	http.HandleFunc("GET /api/v1/chapters", paperHandler.HandleChapters)
	http.HandleFunc("GET /api/v1/health", paperHandler.HandleHealth)

	http.HandleFunc("POST /api/v1/scheduler/start", schedulerHandler.HandleStart)
	http.HandleFunc("POST /api/v1/scheduler/stop", schedulerHandler.HandleStop)
	http.HandleFunc("POST /api/v1/scheduler/trigger", schedulerHandler.HandleTrigger)
	http.HandleFunc("GET /api/v1/scheduler/status", schedulerHandler.HandleStatus)

	http.Handle("/metrics", promhttp.Handler())

	service.EnsureSchedulerStarted()

	logger.Info.Printf("Starting paperweek server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Paperweek server failed: %v", err)
	}
}
