package glyphbrush

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/glyphbrush/internal/gpu"
	"github.com/gogpu/glyphbrush/text"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for glyphbrush and its sub-packages.
// By default nothing is logged. Pass nil to restore silent logging.
//
// Log levels used by glyphbrush:
//   - [slog.LevelDebug]: per-frame diagnostics (action, vertex count, uploads)
//   - [slog.LevelInfo]: lifecycle events (brush created, brush destroyed)
//   - [slog.LevelWarn]: non-fatal issues (atlas too small, skipped glyphs)
//
// Example:
//
//	glyphbrush.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	text.SetLogger(l)
	gpu.SetLogger(l)
}

// Logger returns the current logger used by glyphbrush.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
