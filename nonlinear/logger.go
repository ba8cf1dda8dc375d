// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nonlinear

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Progress describes one completed iteration.
type Progress struct {
	Iter  int       // Number of completed iterations.
	Alpha float64   // Accepted step length.
	F     float64   // Objective value at the new iterate.
	GNorm float64   // ‖ g ‖∞ at the new iterate.
	X     []float64 // New iterate, valid only during the call.
}

// Report summarizes a finished run.
type Report struct {
	Method  string
	Status  Status
	Iter    int
	NumFunc int
	NumGrad int
	NumSkip int
	F       float64
	GNorm   float64
	X       []float64 // Final iterate, valid only during the call.
}

// Reporter receives the progress of a run.
// Start is called once, Iterate once per completed iteration, Skip on every
// withheld matrix update and Finish once on every exit path.
type Reporter interface {
	Start(method string, n int, f, gnorm float64)
	Iterate(p Progress)
	Skip(iter int, sy float64)
	Finish(r Report)
}

// Silent is a Reporter that discards everything.
type Silent struct{}

// Start does nothing.
func (Silent) Start(string, int, float64, float64) {}

// Iterate does nothing.
func (Silent) Iterate(Progress) {}

// Skip does nothing.
func (Silent) Skip(int, float64) {}

// Finish does nothing.
func (Silent) Finish(Report) {}

// LogLevel controls the frequency and type of logger output
type LogLevel int

const (
	// LogNoop no output is generated (level < 0)
	LogNoop LogLevel = -1
	// LogLast print only the summary of the last iteration
	LogLast LogLevel = 0
	// LogEval print also f and |g| every `level` iterations for any (0 < level < 99)
	LogEval LogLevel = 1
	// LogTrace print details of every iteration except n-vectors
	LogTrace LogLevel = 99
	// LogVerbose print details of every iteration including x (level > 100)
	LogVerbose LogLevel = 101
)

// Logger is the default Reporter.
// Messages go to Msg as structured entries, the iteration table goes to Out.
// Note the writers must be thread-safe when a logger is shared between runs.
type Logger struct {
	Level LogLevel
	Msg   logrus.FieldLogger // Logger for messages, logrus standard logger when nil.
	Out   io.Writer          // Writer for the iteration table, stderr when nil.
}

func (l *Logger) enable(level LogLevel) bool {
	return l != nil && l.Level >= level
}

func (l *Logger) msg() logrus.FieldLogger {
	if l.Msg == nil {
		return logrus.StandardLogger()
	}
	return l.Msg
}

func (l *Logger) out(format string, a ...any) {
	w := l.Out
	if w == nil {
		w = os.Stderr
	}
	if len(a) > 0 {
		_, _ = fmt.Fprintf(w, format, a...)
	} else {
		_, _ = fmt.Fprint(w, format)
	}
}

func (l *Logger) vector(w []float64) string {
	s := ""
	for i, v := range w {
		s += fmt.Sprintf("%.2e ", v)
		if (i+1)%6 == 0 && i+1 < len(w) {
			s += "\n     "
		}
	}
	return s
}

// Start logs the method and the dimension, and the initial point from LogEval on.
func (l *Logger) Start(method string, n int, f, gnorm float64) {
	if !l.enable(LogLast) {
		return
	}
	l.msg().WithFields(logrus.Fields{
		"method": method,
		"n":      n,
	}).Info("running descent")

	if l.enable(LogEval) {
		l.msg().WithFields(logrus.Fields{
			"iter":  0,
			"f":     f,
			"gnorm": gnorm,
		}).Info("initial point")
		l.out("\n%s    N = %d\n", method, n)
		l.out("\n   it      step          f        |g|\n")
		l.out(" %4d         -  %10.3e %10.3e\n", 0, f, gnorm)
	}
}

// Iterate logs every iteration from LogTrace on, below it every Level iterations.
func (l *Logger) Iterate(p Progress) {
	if !l.enable(LogEval) {
		return
	}
	fields := logrus.Fields{
		"iter":  p.Iter,
		"alpha": p.Alpha,
		"f":     p.F,
		"gnorm": p.GNorm,
	}
	switch {
	case l.enable(LogVerbose):
		fields["x"] = l.vector(p.X)
	case l.enable(LogTrace):
	case p.Iter%int(l.Level) == 0:
		delete(fields, "alpha")
	default:
		return
	}
	l.msg().WithFields(fields).Info("iterate")
	l.out(" %4d %9.3e %10.3e %10.3e\n", p.Iter, p.Alpha, p.F, p.GNorm)
}

// Skip warns about a withheld matrix update.
func (l *Logger) Skip(iter int, sy float64) {
	if !l.enable(LogLast) {
		return
	}
	l.msg().WithFields(logrus.Fields{
		"iter": iter,
		"sy":   sy,
	}).Warn("curvature condition failed, matrix not updated")
}

// Finish logs the summary, at warning level unless the run is Satisfied.
func (l *Logger) Finish(r Report) {
	if !l.enable(LogLast) {
		return
	}
	fields := logrus.Fields{
		"method": r.Method,
		"status": r.Status.String(),
		"iter":   r.Iter,
		"nfev":   r.NumFunc,
		"ngev":   r.NumGrad,
		"skip":   r.NumSkip,
		"f":      r.F,
		"gnorm":  r.GNorm,
	}
	if l.enable(LogVerbose) {
		fields["x"] = l.vector(r.X)
	}
	entry := l.msg().WithFields(fields)
	if r.Status == Satisfied {
		entry.Info("descent finished")
	} else {
		entry.Warn("descent stopped")
	}

	if l.enable(LogEval) {
		l.out("\n   N    Tit    Tnf    Tng   Skip      |g|          F\n")
		l.out("%4d %6d %6d %6d %6d %8.2e %10.5e\n",
			len(r.X), r.Iter, r.NumFunc, r.NumGrad, r.NumSkip, r.GNorm, r.F)
		l.out("\n%s\n", r.Status)
	}
}
