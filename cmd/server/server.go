package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// Run serves HTTP and runs the sweeps until ctx is cancelled or either of
// them fails, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(app.config.Server.Port)),
		Handler:           newRouter(app.recitationService, app.jwtService, app.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return app.serve(ctx, server, nil)
}

// serve runs server and the sweep runner in one errgroup. A nil listener
// makes the server listen on its Addr.
func (app *application) serve(ctx context.Context, server *http.Server, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("starting server", slog.String("addr", server.Addr))
		var err error
		if ln != nil {
			err = server.Serve(ln)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return app.sweepRunner.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.Server.ShutdownTimeout())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.Server.ShutdownTimeout())
	defer cancel()
	app.cleanup(cleanupCtx)

	if err != nil {
		return err
	}
	app.logger.Info("server shutdown completed")
	return nil
}
