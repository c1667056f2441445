package reqid

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithFrom(t *testing.T) {
	if _, ok := From(context.Background()); ok {
		t.Fatalf("expected no id in empty context")
	}
	ctx := With(context.Background(), "abc123")
	id, ok := From(ctx)
	if !ok || id != "abc123" {
		t.Fatalf("got %q/%v, want abc123/true", id, ok)
	}
	if _, ok := From(With(context.Background(), "")); ok {
		t.Fatalf("empty id should not be reported")
	}
}

func TestLoggerTagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	Logger(With(context.Background(), "abc123"), base).Info("scrape")
	if !strings.Contains(buf.String(), "request_id=abc123") {
		t.Fatalf("missing request_id in %q", buf.String())
	}

	buf.Reset()
	Logger(context.Background(), base).Info("scrape")
	if strings.Contains(buf.String(), "request_id") {
		t.Fatalf("unexpected request_id in %q", buf.String())
	}
}
