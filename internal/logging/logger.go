// Package logging wraps gologger behind a printf-style interface so services
// can take a logger as a dependency.
package logging

import (
	"fmt"

	"github.com/sadlil/gologger"
)

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type goLogger struct {
	l gologger.GoLogger
}

// New logs colored output to the console, or to fileLog when it is set.
func New(fileLog string) Logger {
	if fileLog != "" {
		return &goLogger{l: gologger.GetLogger(gologger.FILE, fileLog)}
	}
	return &goLogger{l: gologger.GetLogger(gologger.CONSOLE, gologger.ColoredLog)}
}

func (g *goLogger) Infof(format string, args ...any) {
	g.l.Info(fmt.Sprintf(format, args...))
}

func (g *goLogger) Warnf(format string, args ...any) {
	g.l.Warn(fmt.Sprintf(format, args...))
}

func (g *goLogger) Errorf(format string, args ...any) {
	g.l.Error(fmt.Sprintf(format, args...))
}

type nop struct{}

// Nop discards everything.
func Nop() Logger { return nop{} }

func (nop) Infof(string, ...any)  {}
func (nop) Warnf(string, ...any)  {}
func (nop) Errorf(string, ...any) {}
