// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroVector(t *testing.T) {
	for _, n := range []int{1, 2, 5, 17, 100} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			d := make([]float64, n)
			assert.Zero(t, Dot(d, d))
			assert.Zero(t, InfinityNorm(d))
			assert.Zero(t, ManhattanNorm(d))
			assert.Zero(t, EuclideanNorm(d))
		})
	}
}

func TestDot(t *testing.T) {
	const n = 10
	x, y := make([]float64, n), make([]float64, n)
	for i := range x {
		x[i] = float64(i - 3)
		y[i] = 1
	}
	assert.Equal(t, 15.0, Dot(x, y))

	for i := range x {
		x[i] = float64(i)
	}
	assert.Equal(t, 45.0, Dot(x, y))

	assert.Panics(t, func() { Dot(x, y[:3]) })
}

func TestNorms(t *testing.T) {
	x := []float64{3, -4, 0, 1}
	assert.Equal(t, 8.0, ManhattanNorm(x))
	assert.InDelta(t, math.Sqrt(26), EuclideanNorm(x), 1e-15)
	assert.Equal(t, 4.0, InfinityNorm(x))

	x = make([]float64, 10)
	y := make([]float64, 10)
	x[5], y[1] = 1, -1
	assert.Equal(t, 1.0, InfinityNorm(x))
	assert.Equal(t, 1.0, InfinityNorm(y))
}

func TestUpdateStep(t *testing.T) {
	const n = 10
	const alpha = 2.5

	x, d := make([]float64, n), make([]float64, n)
	want := make([]float64, n)
	for i := range x {
		x[i] = 1
		d[i] = float64(i)
		want[i] = x[i] + alpha*d[i]
	}
	got := UpdateStep(make([]float64, n), x, alpha, d)
	assert.Equal(t, want, got)

	// a zero step is the identity whatever the direction holds
	d[0], d[1], d[2] = math.Inf(1), math.NaN(), -1e308
	got = UpdateStep(make([]float64, n), x, 0, d)
	assert.Equal(t, x, got)

	// dst may alias x
	UpdateStep(x, x, 1, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	for _, v := range x {
		require.Equal(t, 2.0, v)
	}
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite([]float64{0, -1, math.MaxFloat64}))
	assert.False(t, IsFinite([]float64{0, math.NaN()}))
	assert.False(t, IsFinite([]float64{math.Inf(-1)}))
}

func TestIdentity(t *testing.T) {
	const n = 6
	m := NewIdentity(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			require.Equal(t, want, m.At(i, j), "element [%d,%d]", i, j)
		}
	}

	m.Set(0, 3, 7)
	m.Set(2, 2, -1)
	Identity(m)
	assert.Equal(t, 0.0, m.At(0, 3))
	assert.Equal(t, 1.0, m.At(2, 2))
}
