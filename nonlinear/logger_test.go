// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nonlinear

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replay(r Reporter, iters int) {
	r.Start("BFGS-H", 2, 10, 4)
	for i := 1; i <= iters; i++ {
		r.Iterate(Progress{Iter: i, Alpha: 1, F: 10 / float64(i), GNorm: 4 / float64(i), X: []float64{1, 2}})
		if i == 2 {
			r.Skip(i, -1e-3)
		}
	}
	r.Finish(Report{Method: "BFGS-H", Status: Satisfied, Iter: iters, NumFunc: 9, NumGrad: 8, NumSkip: 1, X: []float64{1, 2}})
}

func TestLoggerLevels(t *testing.T) {
	// entries counts start and finish, the initial point and the logged iterations
	cases := []struct {
		level   LogLevel
		entries int
		table   bool
	}{
		{LogNoop, 0, false},
		{LogLast, 2, false},
		{LogEval, 2 + 1 + 4, true},
		{2, 2 + 1 + 2, true},
		{LogTrace, 2 + 1 + 4, true},
		{LogVerbose, 2 + 1 + 4, true},
	}
	for _, c := range cases {
		logger, hook := test.NewNullLogger()
		out := new(bytes.Buffer)
		replay(&Logger{Level: c.level, Msg: logger, Out: out}, 4)

		want := c.entries
		if c.level >= LogLast {
			want++ // the skipped update
		}
		assert.Len(t, hook.AllEntries(), want, "level %d", c.level)
		assert.Equal(t, c.table, out.Len() > 0, "level %d", c.level)
	}
}

func TestLoggerTableFollowsInterval(t *testing.T) {
	logger, hook := test.NewNullLogger()
	out := new(bytes.Buffer)
	l := &Logger{Level: 3, Msg: logger, Out: out}
	for i := 1; i <= 7; i++ {
		l.Iterate(Progress{Iter: i, Alpha: 1, F: 1, GNorm: 1})
	}

	var iters []any
	for _, e := range hook.AllEntries() {
		iters = append(iters, e.Data["iter"])
	}
	assert.Equal(t, []any{3, 6}, iters)
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("\n")))
	assert.Contains(t, out.String(), "    3 ")
	assert.Contains(t, out.String(), "    6 ")
}

func TestLoggerFields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	replay(&Logger{Level: LogVerbose, Msg: logger, Out: new(bytes.Buffer)}, 3)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.InfoLevel, last.Level)
	assert.Equal(t, "Satisfied", last.Data["status"])
	assert.Equal(t, 9, last.Data["nfev"])
	assert.Equal(t, 8, last.Data["ngev"])
	assert.Contains(t, last.Data, "x")

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, 2, e.Data["iter"])
		}
	}
	assert.True(t, warned)
}

func TestLoggerNil(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { replay(l, 3) })
	assert.NotPanics(t, func() { replay(Silent{}, 3) })
}

func TestLoggerStopped(t *testing.T) {
	logger, hook := test.NewNullLogger()
	l := &Logger{Level: LogLast, Msg: logger}
	l.Finish(Report{Method: "CG-FR", Status: NoConvergence})
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
