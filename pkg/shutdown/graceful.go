package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeycarbs/tenuretrack/pkg/logging"
)

// Signals are the process signals that trigger a graceful stop
var Signals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP}

type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// NotifyContext returns a context cancelled on the first shutdown signal
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, Signals...)
}

// Graceful blocks until ctx is done and then stops s within timeout
func Graceful(ctx context.Context, s Stoppable, timeout time.Duration, log *logging.Logger) error {
	<-ctx.Done()
	log.Info("shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.Shutdown(stopCtx); err != nil {
		log.Warn("graceful shutdown completed with error", "err", err)
		return err
	}

	log.Info("graceful shutdown completed successfully")
	return nil
}
