package api

import (
	"io"
	"net/http"
	"time"

	"github.com/alexivanou/citylist-api/internal/service"
	"github.com/alexivanou/citylist-api/internal/stats"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates the HTTP handler with CORS and access logging applied
func NewRouter(
	service service.ServiceInterface,
	initializer DBInitializer,
	statsCollector *stats.Collector,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	handler := NewHandler(service, initializer, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	cities := router.PathPrefix("/city-list").Subrouter()
	cities.HandleFunc("/get", handler.GetByPage).Methods("GET")
	cities.HandleFunc("/search", handler.Search).Methods("GET")
	cities.HandleFunc("/images/{id}", handler.GetImage).Methods("GET")
	cities.HandleFunc("/update/{id}", handler.Update).Methods("PUT")

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "PUT", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	return handlers.CustomLoggingHandler(io.Discard, cors(router), accessLog(logger))
}

func accessLog(logger *zap.Logger) handlers.LogFormatter {
	return func(_ io.Writer, params handlers.LogFormatterParams) {
		logger.Info("HTTP request",
			zap.String("method", params.Request.Method),
			zap.String("path", params.URL.Path),
			zap.Int("status", params.StatusCode),
			zap.Int("size", params.Size),
			zap.Duration("duration", time.Since(params.TimeStamp)),
		)
	}
}
