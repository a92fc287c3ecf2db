package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mcdev12/livequiz/go/internal/config"
	"github.com/mcdev12/livequiz/go/internal/gateway"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(cfg *config.Config, services *Services) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedHeaders: []string{"*"},
	})

	// Register streaming and REST routes
	services.Gateway.RegisterRoutes(mux)

	// Add health check endpoint
	mux.HandleFunc("GET /health", gateway.HandleHealth)
	mux.Handle("GET /health/ready", services.Health)
	mux.HandleFunc("GET /metrics", services.Health.MetricsHandler())

	handler := gateway.RequestLogger(c.Handler(mux))

	// Setup HTTP/2 server. No WriteTimeout: streams set per-write deadlines.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	server.RegisterOnShutdown(services.Gateway.CloseAll)
	return server
}
