// Package slog adapts a log/slog logger to optwire.Logger.
package slog

import (
	"context"
	stdslog "log/slog"
	"sort"

	"github.com/unkn0wn-root/optwire"
)

var _ optwire.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

// New groups every attribute under "optwire"; a nil l uses slog.Default().
func New(l *stdslog.Logger) Logger {
	if l == nil {
		l = stdslog.Default()
	}
	return Logger{L: l.WithGroup("optwire")}
}

func (s Logger) log(level stdslog.Level, msg string, f optwire.Fields) {
	ctx := context.Background()
	if !s.L.Enabled(ctx, level) {
		return
	}
	s.L.LogAttrs(ctx, level, msg, attrs(f)...)
}

func (s Logger) Debug(msg string, f optwire.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f optwire.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f optwire.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f optwire.Fields) { s.log(stdslog.LevelError, msg, f) }

func attrs(f optwire.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]stdslog.Attr, 0, len(f))
	for _, k := range keys {
		out = append(out, stdslog.Any(k, f[k]))
	}
	return out
}
