package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"signalboard/src/handler"
	"signalboard/src/session"
)

// NewRouter assembles the read-only presentation surface: health probe, JSON
// state endpoints and the websocket event stream.
func NewRouter(sess *session.Session) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck write error")
		}
	})

	r.Mount("/api", handler.NewSessionHandler(sess).Routes())
	r.Get("/ws/events", EventsStream(sess))

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, port string, h http.Handler) error {
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: h,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
		return err
	}
	return nil
}
