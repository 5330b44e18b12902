package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func newRouter() *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", home)
	router.HandleFunc("GET /api/lookup/{ip}", lookupIP)
	router.HandleFunc("GET /api/search/netname", searchNetname)
	router.HandleFunc("GET /api/search/description", searchDescription)
	router.HandleFunc("GET /api/search/country", searchCountry)
	router.HandleFunc("GET /api/stats", getStats)

	return router
}

func OpenRoutes(port int) error {
	router := newRouter()

	limiter := NewRateLimiterFromEnv()
	handler := enableCORS(limiter.Middleware(router))

	addr := fmt.Sprintf(":%d", port)
	log.Infof("Starting API server on %s", addr)
	return http.ListenAndServe(addr, handler)
}
