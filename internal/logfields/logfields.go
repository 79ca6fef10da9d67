package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyHash       = "hash"
	KeyDate       = "date"
	KeyBackend    = "backend"
	KeyPath       = "path"
	KeyFormat     = "format"
	KeyDurationMS = "duration_ms"
	KeyDegraded   = "degraded"
	KeyItems      = "items"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Hash(h string) slog.Attr    { return slog.String(KeyHash, h) }
func Date(d string) slog.Attr    { return slog.String(KeyDate, d) }
func Backend(b string) slog.Attr { return slog.String(KeyBackend, b) }
func Path(p string) slog.Attr    { return slog.String(KeyPath, p) }
func Format(f string) slog.Attr  { return slog.String(KeyFormat, f) }
func Degraded(d bool) slog.Attr  { return slog.Bool(KeyDegraded, d) }
func Items(n int) slog.Attr      { return slog.Int(KeyItems, n) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
