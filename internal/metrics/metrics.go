package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics owns the exporter's registry. The poller writes the status gauges
// and the HTTP handler gathers from Registry concurrently.
type Metrics struct {
	Registry *prometheus.Registry

	DownloadRate        prometheus.Gauge
	ThreadCount         prometheus.Gauge
	UpTimeSeconds       prometheus.Gauge
	DownloadTimeSeconds prometheus.Gauge
	RemainingSize       prometheus.Gauge
	ForcedSize          prometheus.Gauge
	DownloadedSize      prometheus.Gauge
	ArticleCache        prometheus.Gauge
	PostJobCount        prometheus.Gauge

	RPCErrors         *prometheus.CounterVec
	RPCLatency        *prometheus.HistogramVec
	LastPollTimestamp prometheus.Gauge
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, into a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		DownloadRate:        gauge("download_rate_bytes", "Current download rate in bytes per second"),
		ThreadCount:         gauge("thread_count", "Thread Count"),
		UpTimeSeconds:       gauge("up_time_seconds", "Seconds servers has been up"),
		DownloadTimeSeconds: gauge("download_time_seconds", "Seconds servers has been downloading"),
		RemainingSize:       gauge("remaining_size_bytes", "Remaining size of all entries in download queue"),
		ForcedSize:          gauge("forced_size_bytes", "Remaining size of entries with FORCE priority"),
		DownloadedSize:      gauge("downloaded_size_bytes", "Amount of data downloaded since server start"),
		ArticleCache:        gauge("article_cache_bytes", "Current usage of article cache"),
		PostJobCount: gauge("post_job_count",
			"Number of Par-Jobs or Post-processing script jobs in the post-processing queue (including current file)"),

		RPCErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nzbget_exporter",
				Name:      "rpc_errors_total",
				Help:      "Errors from NZBGet JSON-RPC calls.",
			},
			[]string{"method"},
		),
		RPCLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nzbget_exporter",
				Name:      "rpc_latency_seconds",
				Help:      "Latency of NZBGet JSON-RPC calls.",
			},
			[]string{"method"},
		),
		LastPollTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nzbget_exporter",
			Name:      "last_poll_timestamp_seconds",
			Help:      "Unix time of the last completed poll.",
		}),
	}

	m.Registry.MustRegister(m.statusCollectors()...)
	m.Registry.MustRegister(
		m.RPCErrors,
		m.RPCLatency,
		m.LastPollTimestamp,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) statusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DownloadRate,
		m.ThreadCount,
		m.UpTimeSeconds,
		m.DownloadTimeSeconds,
		m.RemainingSize,
		m.ForcedSize,
		m.DownloadedSize,
		m.ArticleCache,
		m.PostJobCount,
	}
}
