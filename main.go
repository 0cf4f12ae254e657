package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tracerdata/cotracer/src/config"
	"github.com/tracerdata/cotracer/src/database"
	"github.com/tracerdata/cotracer/src/handlers"
	"github.com/tracerdata/cotracer/src/logger"
	"github.com/tracerdata/cotracer/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.L.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String())
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	database.InitDB(config.Cfg.DatabasePath)

	reportService := services.NewReportService(services.ServiceConfig{
		BaseURL:           config.Cfg.TracerBaseURL,
		FetchTimeout:      config.Cfg.FetchTimeout,
		FetchRateInterval: config.Cfg.FetchRateInterval,
	})
	reportHandler := handlers.NewReportHandler(reportService)

	r := chi.NewRouter()
	r.Use(rateLimitMiddleware)
	r.Use(requestLogMiddleware)

	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/{year}", reportHandler.HandleGetReport)
		r.Post("/{year}/sync", reportHandler.HandleSyncReport)
	})

	server := &http.Server{
		Addr:         ":" + config.Cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // report downloads can be slow
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Starting cotracer service", "port", config.Cfg.Port)
	if err := server.ListenAndServe(); err != nil {
		logger.L.Error("Server stopped", "error", err)
	}
}
