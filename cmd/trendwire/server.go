package main

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Router builds the HTTP routes
func (a *App) Router() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.Use(a.rateLimitMiddleware)
	api.HandleFunc("/topics", a.handleTopics).Methods("GET")
	api.Handle("/topics/refresh", a.requireAdmin(http.HandlerFunc(a.handleRefresh))).Methods("POST")
	api.HandleFunc("/recent_tags", a.handleRecentTags).Methods("GET")
	api.HandleFunc("/today", a.handleToday).Methods("GET")
	api.HandleFunc("/articles", a.handleArticles).Methods("GET")
	api.HandleFunc("/sources", a.handleSources).Methods("GET")
	api.HandleFunc("/sources/{source}", a.handleSource).Methods("GET")
	api.HandleFunc("/coverage", a.handleCoverage).Methods("GET")
	api.Handle("/ws", a.hub)

	router.HandleFunc("/healthcheck", a.handleHealthCheck).Methods("GET")
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
	})
	return router
}

// Serve runs the API until ctx is cancelled, then shuts down gracefully
func (a *App) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer RecoverFromPanic("http")
		Logger().Info("Starting API on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %v", err)
		}
		return nil
	case <-ctx.Done():
	}

	Logger().Info("Shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	a.hub.Close()
	return server.Shutdown(shutdownCtx)
}

func (a *App) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.limiter.Allow() {
			respondWithError(w, http.StatusTooManyRequests, ErrMsgRateLimit)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin checks the admin token header when a token is configured
func (a *App) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.cfg.Server.AdminToken
		if token != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(HeaderAdminToken)), []byte(token)) != 1 {
			respondWithError(w, http.StatusUnauthorized, ErrMsgAuthFailed)
			return
		}
		next.ServeHTTP(w, r)
	})
}
