package stats

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []int
		mean   float64
		stdev  float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Iterations(), len(c.scores))
	}
}

func TestMinMax(t *testing.T) {
	s := &Statistic{}
	for _, v := range []float64{7, 22, 9, 42, 8} {
		s.Push(v)
	}
	assert.Equal(t, 7.0, s.Min())
	assert.Equal(t, 42.0, s.Max())
	assert.Equal(t, 8.0, s.Last())
}

func TestZVal(t *testing.T) {
	assert.InDelta(t, 1.959964, ZVal(95), 1e-5)
	assert.InDelta(t, 2.575829, ZVal(99), 1e-5)
	assert.InDelta(t, 0, ZVal(0), 1e-9)
}

func TestConfidenceInterval(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for i := 0; i < 100; i++ {
		s.Push(float64(i % 2))
	}
	lo, hi := s.ConfidenceInterval(95)
	is.True(lo < 0.5 && hi > 0.5)
	is.True(FuzzyEqual((lo+hi)/2, 0.5))
	is.True(FuzzyEqual(hi-lo, 2*ZVal(95)*s.StandardError()))
}
