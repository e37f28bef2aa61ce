package testutils

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	slogctx "github.com/veqryn/slog-context"
)

// LogBuffer collects JSON log lines written during a test.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

// ContextWithLogBuffer returns ctx carrying a debug level logger that writes
// into the returned buffer.
func ContextWithLogBuffer(ctx context.Context) (context.Context, *LogBuffer) {
	b := &LogBuffer{}
	logger := slog.New(slog.NewJSONHandler(b, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return slogctx.NewCtx(ctx, logger), b
}
