package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/logging"
	"github.com/lyonms2/avatar-arena/internal/service"
)

const shutdownTimeout = 10 * time.Second

// serve runs the HTTP server until ctx is cancelled, then drains it.
func serve(ctx context.Context, g *errgroup.Group, addr string, handler http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(handler, constants.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
}

// startSweepers deletes expired finished rooms and idle training sessions
// on their own tickers.
func startSweepers(ctx context.Context, g *errgroup.Group, rooms *service.Sweeper, roomEvery time.Duration, training *service.Training) {
	g.Go(func() error {
		ticker := time.NewTicker(roomEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if _, err := rooms.Sweep(ctx); err != nil && ctx.Err() == nil {
					logging.Error("room cleanup failed", err, nil)
				}
			}
		}
	})
	g.Go(func() error {
		ticker := time.NewTicker(constants.TrainingSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				training.Sweep()
			}
		}
	})
}
