package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/firebreak"
	httpadapter "github.com/aretw0/firebreak/pkg/adapters/http"
)

// ServeOptions configures the inspection server.
type ServeOptions struct {
	Flags

	Addr            string
	ShutdownTimeout time.Duration
}

// InspectionHandler is the read-only API over the app's store.
func InspectionHandler(app *App) (http.Handler, error) {
	store, err := app.Inspection()
	if err != nil {
		return nil, err
	}
	g, err := StaticGraph()
	if err != nil {
		return nil, err
	}
	return httpadapter.NewHandler(store,
		httpadapter.WithGraph(g),
		httpadapter.WithVersion(firebreak.Version),
		httpadapter.WithLogger(app.Logger),
		httpadapter.WithMetrics(app.Metrics.Handler()),
	), nil
}

// Serve runs the inspection API until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, opts ServeOptions, w io.Writer) error {
	app, err := OpenApp(opts.Flags)
	if err != nil {
		return err
	}
	defer app.Close()

	handler, err := InspectionHandler(app)
	if err != nil {
		return err
	}
	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Fprintf(w, "Starting firebreak inspection API on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("graceful shutdown did not complete", "timeout", timeout, "err", err)
			return srv.Close()
		}
		fmt.Fprintln(w, "firebreak server stopped gracefully")
		return nil
	})
	return g.Wait()
}
