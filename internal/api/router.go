package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/aegis/momentum/internal/api/handlers"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
// jobHandler may be nil when no scheduler is running. rps <= 0 disables rate limiting.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(runHandler *handlers.RunHandler, jobHandler *handlers.JobHandler, rps int, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Runs
	api.HandleFunc("/runs", runHandler.ListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", runHandler.GetRun).Methods(http.MethodGet)

	// Scheduler
	if jobHandler != nil {
		api.HandleFunc("/jobs", jobHandler.ListJobs).Methods(http.MethodGet)
		api.HandleFunc("/jobs/{name}/run", jobHandler.TriggerJob).Methods(http.MethodPost)
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	if rps > 0 {
		api.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(rps), rps)))
	}

	return r
}

// rateLimitMiddleware rejects requests over the limiter's budget with 429
func rateLimitMiddleware(limiter *rate.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				handlers.RespondError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					handlers.RespondError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
