// Package poller mirrors the NZBGet status document into Prometheus gauges.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tinoosan/nzbget-exporter/internal/metrics"
	"github.com/tinoosan/nzbget-exporter/internal/nzbget"
)

// DefaultInterval is the pause between the end of one poll and the start
// of the next.
const DefaultInterval = 30 * time.Second

// ErrNotPolled is returned by Ping until the first poll has completed.
var ErrNotPolled = errors.New("no completed poll yet")

// StatusSource is implemented by *nzbget.Client.
type StatusSource interface {
	Status(ctx context.Context) (*nzbget.Status, error)
	StatusURL() string
}

// Poller fetches status on a fixed delay and overwrites the gauges in m.
type Poller struct {
	src      StatusSource
	m        *metrics.Metrics
	interval time.Duration
	log      *slog.Logger

	polled atomic.Bool
}

// New returns a Poller using DefaultInterval.
func New(log *slog.Logger, src StatusSource, m *metrics.Metrics) *Poller {
	if log == nil {
		log = slog.Default()
	}
	return &Poller{src: src, m: m, interval: DefaultInterval, log: log}
}

// SetInterval overrides the delay between polls. Non-positive values are ignored.
func (p *Poller) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval = d
	}
}

// Run polls until ctx is cancelled or a poll fails. Failures are returned
// unchanged and are not retried; cancellation returns nil.
func (p *Poller) Run(ctx context.Context) error {
	lg := p.log.With("operation_id", uuid.NewString())
	lg.Info("poller started", "url", p.src.StatusURL(), "interval", p.interval)

	for {
		if err := p.poll(ctx, lg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			lg.Error("poll failed", "err", err)
			return err
		}

		t := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			lg.Info("poller stopped")
			return nil
		case <-t.C:
		}
	}
}

// Poll performs a single iteration.
func (p *Poller) Poll(ctx context.Context) error {
	return p.poll(ctx, p.log)
}

func (p *Poller) poll(ctx context.Context, lg *slog.Logger) error {
	lg.Debug("querying nzbget", "url", p.src.StatusURL())
	st, err := p.src.Status(ctx)
	if err != nil {
		return err
	}
	lg.Debug("got download rate", "rate", st.DownloadRate)

	p.apply(st)
	p.polled.Store(true)
	return nil
}

func (p *Poller) apply(st *nzbget.Status) {
	p.m.DownloadRate.Set(st.DownloadRate)
	p.m.ThreadCount.Set(math.Trunc(st.ThreadCount))
	p.m.UpTimeSeconds.Set(math.Trunc(st.UpTimeSec))
	p.m.DownloadTimeSeconds.Set(math.Trunc(st.DownloadTimeSec))
	// NZBGet reports MB; x1024 yields KB although the gauge names say bytes.
	p.m.RemainingSize.Set(st.RemainingSizeMB * 1024)
	p.m.ForcedSize.Set(st.ForcedSizeMB * 1024)
	p.m.DownloadedSize.Set(st.DownloadedSizeMB * 1024)
	p.m.ArticleCache.Set(st.ArticleCacheMB * 1024)
	p.m.PostJobCount.Set(st.PostJobCount)
	p.m.LastPollTimestamp.SetToCurrentTime()
}

// Ping reports readiness: nil once at least one poll has completed.
func (p *Poller) Ping(context.Context) error {
	if !p.polled.Load() {
		return ErrNotPolled
	}
	return nil
}
