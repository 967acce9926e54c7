// Package logfields keeps log attribute names consistent across packages.
package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStage      = "stage"
	KeyStack      = "stack"
	KeyMethod     = "method"
	KeyRule       = "rule"
	KeyPhase      = "phase"
	KeyDocument   = "document"
	KeyDurationMS = "duration_ms"
	KeyBytes      = "bytes"
	KeyWorker     = "worker"
	KeyError      = "error"
)

func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Stack(name string) slog.Attr     { return slog.String(KeyStack, name) }
func Method(name string) slog.Attr    { return slog.String(KeyMethod, name) }
func Rule(name string) slog.Attr      { return slog.String(KeyRule, name) }
func Phase(name string) slog.Attr     { return slog.String(KeyPhase, name) }
func Document(path string) slog.Attr  { return slog.String(KeyDocument, path) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func Worker(id int) slog.Attr         { return slog.Int(KeyWorker, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
