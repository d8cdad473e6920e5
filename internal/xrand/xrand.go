// Package xrand provides the dice() helper the example gameplay systems
// use for hit rolls, mirroring a package-level mt19937 seeded once from
// crypto entropy.
package xrand

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

var (
	mu  sync.Mutex
	src = rand.New(rand.NewPCG(seed(), seed()))
)

func seed() uint64 {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// Dice returns a uniformly distributed integer in [min, max].
func Dice(min, max int) int {
	mu.Lock()
	defer mu.Unlock()
	if max <= min {
		return min
	}
	return min + src.IntN(max-min+1)
}

// Coin reports a 50% true, matching dice(0, 1) used for hit checks.
func Coin() bool {
	return Dice(0, 1) == 1
}
