package servici

import (
	"context"
	"errors"
	"net/http"
	"time"

	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
)

const shutdownTimeout = 5 * time.Second

// Serve atende em addr até ctx ser cancelado e então encerra o servidor com prazo de 5s.
func Serve(ctx context.Context, addr string, handler http.Handler, logger pkgApp.AppLogger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		pkgApp.LogInfo(ctx, logger, "server starting", map[string]interface{}{"addr": addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			pkgApp.LogError(ctx, logger, "server failed", err, nil)
		}
		return err
	case <-ctx.Done():
	}

	pkgApp.LogInfo(context.Background(), logger, "shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		pkgApp.LogError(shutdownCtx, logger, "error shutting down server", err, nil)
		return err
	}

	pkgApp.LogInfo(context.Background(), logger, "server stopped", nil)
	return nil
}
