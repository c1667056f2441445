package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// syncBuffer guards a bytes.Buffer written from several goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

const statusBody = `{"version":"1.1","result":{"DownloadRate":1048576,"ThreadCount":4,"UpTimeSec":3600,
"DownloadTimeSec":1800,"RemainingSizeMB":10,"ForcedSizeMB":2,"DownloadedSizeMB":500,
"ArticleCacheMB":1,"PostJobCount":3}}`

func stubUpstream(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(statusBody))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func setTestGlobals(t *testing.T, addr string, interval time.Duration) {
	t.Helper()
	oldAddr, oldInterval := listenAddr, pollInterval
	listenAddr, pollInterval = addr, interval
	t.Cleanup(func() { listenAddr, pollInterval = oldAddr, oldInterval })
}

func setNZBGetEnv(t *testing.T, url string) {
	t.Helper()
	t.Setenv("NZBGET_URL", url)
	t.Setenv("NZBGET_USERNAME", "nzbget")
	t.Setenv("NZBGET_PASSWORD", "tegbzn6789")
	t.Setenv("NZBGET_DEBUG", "")
	t.Setenv("NZBGET_LOG_FILE", "")
	t.Setenv("NZBGET_EXPORTER_TOKEN", "")
	t.Setenv("NZBGET_TIMEOUT_MS", "")
}

func TestExecuteMissingEnvExitsTwo(t *testing.T) {
	for _, name := range []string{"NZBGET_USERNAME", "NZBGET_PASSWORD", "NZBGET_URL"} {
		t.Run(name, func(t *testing.T) {
			upstream, hits := stubUpstream(t, http.StatusOK)
			setNZBGetEnv(t, upstream.URL)
			t.Setenv(name, "")

			// Hold the listen address: binding before validating config
			// would turn this into a bind failure with exit code 1.
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			require.NoError(t, err)
			defer ln.Close()
			setTestGlobals(t, ln.Addr().String(), time.Millisecond)

			var stderr syncBuffer
			code := execute(context.Background(), nil, &stderr)

			require.Equal(t, 2, code)
			require.Equal(t, int32(0), hits.Load())
			require.Contains(t, stderr.String(), "haven't set "+name)
		})
	}
}

func TestExecuteUpstreamFailureExitsOne(t *testing.T) {
	upstream, hits := stubUpstream(t, http.StatusUnauthorized)
	setNZBGetEnv(t, upstream.URL)
	setTestGlobals(t, "127.0.0.1:0", time.Millisecond)

	var stderr syncBuffer
	code := execute(context.Background(), nil, &stderr)

	require.Equal(t, 1, code)
	require.Equal(t, int32(1), hits.Load())
	require.Contains(t, stderr.String(), "nzbget http 401")
}

func TestExecuteConnectionRefusedExitsOne(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	setNZBGetEnv(t, url)
	setTestGlobals(t, "127.0.0.1:0", time.Millisecond)

	require.Equal(t, 1, execute(context.Background(), nil, &syncBuffer{}))
}

func TestExecuteBindFailureExitsOne(t *testing.T) {
	upstream, hits := stubUpstream(t, http.StatusOK)
	setNZBGetEnv(t, upstream.URL)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	setTestGlobals(t, ln.Addr().String(), time.Millisecond)

	var stderr syncBuffer
	code := execute(context.Background(), nil, &stderr)

	require.Equal(t, 1, code)
	require.Equal(t, int32(0), hits.Load())
	require.Contains(t, stderr.String(), "start metrics endpoint")
}

func TestExecuteStopsCleanlyOnCancel(t *testing.T) {
	upstream, hits := stubUpstream(t, http.StatusOK)
	setNZBGetEnv(t, upstream.URL)
	setTestGlobals(t, "127.0.0.1:0", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	var stderr syncBuffer
	go func() { done <- execute(ctx, []string{"--verbose"}, &stderr) }()

	require.Eventually(t, func() bool {
		return strings.Contains(stderr.String(), "got download rate")
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case code := <-done:
		require.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("execute did not return after cancel")
	}
	out := stderr.String()
	require.Contains(t, out, "level=DEBUG")
	require.Contains(t, out, "querying nzbget")
	require.Equal(t, int32(1), hits.Load())
	require.Contains(t, out, "exporter stopped")
}

func TestExecuteUsageErrors(t *testing.T) {
	for _, args := range [][]string{{"--bogus"}, {"extra"}} {
		t.Run(args[0], func(t *testing.T) {
			upstream, hits := stubUpstream(t, http.StatusOK)
			setNZBGetEnv(t, upstream.URL)
			setTestGlobals(t, "127.0.0.1:0", time.Millisecond)

			require.Equal(t, 2, execute(context.Background(), args, &syncBuffer{}))
			require.Equal(t, int32(0), hits.Load())
		})
	}
}
