package ontap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/janskibh/netapp-exporter/internal/config"
)

// workers bounds how many resource kinds are swept at once.
const workers = 3

// Exporter runs one collection pass per scrape against a resolved target.
type Exporter struct {
	transport  http.RoundTripper
	timeout    time.Duration
	rec        Recorder
	collectors []Collector
}

// NewExporter returns an Exporter that sweeps the default collectors through
// transport, bounding every request by timeout.
func NewExporter(transport http.RoundTripper, timeout time.Duration, rec Recorder) *Exporter {
	return &Exporter{
		transport:  transport,
		timeout:    timeout,
		rec:        rec,
		collectors: Collectors(),
	}
}

// Collect sweeps every collector concurrently and returns once all of them
// finished. Failures are logged and counted, never returned. Cancelling ctx
// does not abort a pass in flight: requests are bounded by the per-request
// timeout instead.
func (e *Exporter) Collect(ctx context.Context, target config.Target, log *slog.Logger) []Stats {
	ctx = context.WithoutCancel(ctx)
	client := newClient(e.transport, target, e.timeout, e.rec, log)

	stats := make([]Stats, len(e.collectors))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, col := range e.collectors {
		i, col := i, col
		g.Go(func() (err error) {
			klog := log.With("kind", col.Kind())
			defer func() {
				if r := recover(); r != nil {
					klog.Error("ontap: collector panicked", "panic", fmt.Sprint(r))
					stats[i] = Stats{Kind: col.Kind(), ListFailed: true}
				}
			}()
			stats[i] = sweep(ctx, client, col, klog)
			return nil
		})
	}
	_ = g.Wait()
	return stats
}
