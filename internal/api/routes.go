package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Market data and analysis
	api.HandleFunc("/market-data/{symbol}", handler.GetMarketData).Methods("GET")
	api.HandleFunc("/indicators/{symbol}/{kind}", handler.GetIndicator).Methods("GET")
	api.HandleFunc("/analysis/{symbol}", handler.RunAnalysis).Methods("GET")
	api.HandleFunc("/sentiment/{symbol}", handler.GetSentiment).Methods("GET")

	// Reports
	api.HandleFunc("/reports", handler.CreateReport).Methods("POST")
	api.HandleFunc("/reports", handler.ListReports).Methods("GET")
	api.HandleFunc("/reports/{id}", handler.GetReport).Methods("GET")
	api.HandleFunc("/reports/{id}/html", handler.GetReportHTML).Methods("GET")

	return r
}
