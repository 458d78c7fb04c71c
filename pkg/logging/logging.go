// Package logging builds the console logger shared by every job.
package logging

import (
	"io"

	"github.com/labstack/gommon/log"
)

// Logger is the subset of the gommon logger the jobs write to.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

var _ Logger = (*log.Logger)(nil)

// New returns a plain-text leveled logger writing to w.
// Debug output is enabled only when verbose is set.
func New(w io.Writer, verbose bool) *log.Logger {
	l := log.New("csv-dwh")
	l.SetOutput(w)
	l.SetHeader("${level}")
	l.SetLevel(log.INFO)
	if verbose {
		l.SetLevel(log.DEBUG)
	}
	return l
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	l := log.New("csv-dwh")
	l.SetOutput(io.Discard)
	l.SetLevel(log.OFF)
	return l
}
