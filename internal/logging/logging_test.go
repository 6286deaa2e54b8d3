package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	t.Run("returns the attached logger", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		ctx := ContextWithLogger(context.Background(), logger)

		if got := FromContext(ctx); got != logger {
			t.Fatalf("expected the attached logger, got %v", got)
		}
	})

	t.Run("returns nil when nothing is attached", func(t *testing.T) {
		if got := FromContext(context.Background()); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})

	t.Run("attaching nil is a no-op", func(t *testing.T) {
		ctx := ContextWithLogger(context.Background(), nil)
		if got := FromContext(ctx); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})
}

func TestOperation(t *testing.T) {
	t.Run("prefers the context logger over the base logger", func(t *testing.T) {
		var contextBuf, baseBuf bytes.Buffer
		contextLogger := slog.New(slog.NewTextHandler(&contextBuf, nil))
		baseLogger := slog.New(slog.NewTextHandler(&baseBuf, nil))

		ctx := ContextWithLogger(context.Background(), contextLogger)
		Operation(ctx, baseLogger, "publish", "publish_class").Info("hello")

		if contextBuf.Len() == 0 {
			t.Fatalf("expected the context logger to receive the record")
		}
		if baseBuf.Len() != 0 {
			t.Fatalf("expected the base logger to stay silent, got %q", baseBuf.String())
		}
	})

	t.Run("annotates records with service and operation", func(t *testing.T) {
		var buf bytes.Buffer
		base := slog.New(slog.NewTextHandler(&buf, nil))

		Operation(context.Background(), base, "publish", "publish_class", "class_id", "class-1").Info("done")

		out := buf.String()
		for _, fragment := range []string{"service=publish", "operation=publish_class", "class_id=class-1"} {
			if !strings.Contains(out, fragment) {
				t.Fatalf("expected %q in output, got %q", fragment, out)
			}
		}
	})

	t.Run("omits the operation attribute when blank", func(t *testing.T) {
		var buf bytes.Buffer
		base := slog.New(slog.NewTextHandler(&buf, nil))

		Operation(context.Background(), base, "publish", "").Info("done")

		if strings.Contains(buf.String(), "operation=") {
			t.Fatalf("expected no operation attribute, got %q", buf.String())
		}
	})

	t.Run("falls back to the default logger", func(t *testing.T) {
		logger := Operation(context.Background(), nil, "publish", "sweep")
		if logger == nil {
			t.Fatalf("expected a usable logger")
		}
	})
}
