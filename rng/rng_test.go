package rng

import (
	"testing"

	"github.com/matryer/is"
)

func TestSeededIsReproducible(t *testing.T) {
	is := is.New(t)
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		is.Equal(a.Intn(1000), b.Intn(1000))
	}
	c := New(43)
	d := New(42)
	same := 0
	for i := 0; i < 100; i++ {
		if c.Uint64n(1<<62) == d.Uint64n(1<<62) {
			same++
		}
	}
	is.True(same < 100)
}
