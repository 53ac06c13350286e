// Package rng builds the random sources the engines draw from.
package rng

import (
	"encoding/binary"

	"lukechampine.com/frand"
)

// New returns a ChaCha12 generator. A zero seed draws fresh entropy; any
// other seed gives a reproducible stream.
func New(seed uint64) *frand.RNG {
	if seed == 0 {
		return frand.New()
	}
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:], seed)
	return frand.NewCustom(b[:], 1024, 12)
}
