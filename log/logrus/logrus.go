// Package logrus adapts a logrus entry to optwire.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/optwire"
)

type Logger struct{ E *logrus.Entry }

var _ optwire.Logger = Logger{}

// New tags every line with component=optwire.
func New(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return Logger{E: l.WithField("component", "optwire")}
}

func (l Logger) with(f optwire.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	return l.E.WithFields(logrus.Fields(f))
}

func (l Logger) Debug(msg string, f optwire.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f optwire.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f optwire.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f optwire.Fields) { l.with(f).Error(msg) }
