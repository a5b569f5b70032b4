package debug

// Periodic memory logger enabled by the debug flag. Every preview frame is a full
// copy of the display image, so heap growth during long drags shows up here.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"sync"
	"time"
)

// StartMemLogger logs heap, goroutine and peak RSS figures every interval until ctx is
// done. The returned func blocks until the logger goroutine has exited.
func StartMemLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) (wait func()) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			rss, err := peakRSS()
			if err != nil && !rssErrLogged {
				logger.Warn("memlog: rss query failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			logger.Info("memstats",
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
				slog.Uint64("heap_inuse", ms.HeapInuse),
				slog.Uint64("heap_sys", ms.HeapSys),
				slog.Uint64("stack_inuse", ms.StackInuse),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
				slog.Uint64("peak_rss", rss),
			)
		}
	}()
	return wg.Wait
}
