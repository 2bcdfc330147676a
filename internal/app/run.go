package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront-sync/internal/broker"
	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Run serves srv and feeds queue to h until ctx is cancelled or either side
// fails. The HTTP server is always shut down before Run returns.
func Run(ctx context.Context, log *zap.Logger, srv *http.Server, ch broker.Channel, queue broker.Destination, h broker.Handler) error {
	log = logging.OrNop(log)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		return ch.Subscribe(ctx, queue, h)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
