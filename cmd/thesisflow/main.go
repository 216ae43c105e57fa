package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shokrpour/thesisflow/internal/app"
	"github.com/shokrpour/thesisflow/internal/cli"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start: %v", err)
	}
	defer service.Close()

	if port := service.Config.Metrics.Port; port != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info.Printf("Serving metrics on %s", port)
			if err := http.ListenAndServe(port, mux); err != nil {
				logger.Error.Printf("Metrics server failed: %v", err)
			}
		}()
	}

	logger.Info.Printf("Thesis management system starting, data dir %s", service.Config.Storage.DataDir)
	if err := cli.New(service).Run(); err != nil {
		logger.Error.Fatalf("Session ended with error: %v", err)
	}
}
