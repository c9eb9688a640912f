package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a logger at debug level. Failed checks
// and HTTP errors are logged as warnings.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l}
}

func (h *LogHooks) OnCheckStart(_ context.Context, app, manifest string) {
	h.Logger.Debug("check started", "app", app, "manifest", manifest)
}

func (h *LogHooks) OnCheckComplete(_ context.Context, app string, gems int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("check finished with error", "app", app, "gems", gems, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("check finished", "app", app, "gems", gems, "duration", d)
}

func (h *LogHooks) OnRender(_ context.Context, format string, size int, d time.Duration, err error) {
	h.Logger.Debug("rendered", "format", format, "bytes", size, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}

var _ AllHooks = (*LogHooks)(nil)
