package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyConfigPath = "config_path"
	KeyFormat     = "format"
	KeyComponent  = "component"
	KeyRoutes     = "routes"
	KeyRules      = "rules"
	KeyPlugins    = "plugins"
	KeySnapshot   = "snapshot"
	KeyReloadID   = "reload_id"
	KeyDurationMS = "duration_ms"
	KeyAddr       = "addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func ConfigPath(p string) slog.Attr   { return slog.String(KeyConfigPath, p) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Component(c string) slog.Attr    { return slog.String(KeyComponent, c) }
func Routes(n int) slog.Attr          { return slog.Int(KeyRoutes, n) }
func Rules(n int) slog.Attr           { return slog.Int(KeyRules, n) }
func Plugins(n int) slog.Attr         { return slog.Int(KeyPlugins, n) }
func Snapshot(s string) slog.Attr     { return slog.String(KeySnapshot, short(s)) }
func ReloadID(id string) slog.Attr    { return slog.String(KeyReloadID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }

// Since reports the milliseconds elapsed since start.
func Since(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// short keeps log lines readable; twelve hex digits are plenty to tell
// snapshots apart.
func short(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
