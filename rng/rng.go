package rng

import (
	"math/rand/v2"
	"os"
	"time"
)

// Source is the capability the pipeline needs from a random generator.
// *rand.Rand satisfies it.
type Source interface {
	Uint64() uint64
	IntN(n int) int
}

// streamIncrement is the fixed second PCG word; only the seed varies.
const streamIncrement = 0xda3e39cb94b95bdb

// New returns a PCG-backed generator. Equal seeds yield equal streams.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, streamIncrement))
}

// DefaultSeed derives a seed from the wall clock and process id, for runs
// that do not pin one.
func DefaultSeed() uint64 {
	s := uint64(time.Now().UnixNano()) ^ (uint64(os.Getpid()) << 32)
	// splitmix64 finalizer
	s ^= s >> 30
	s *= 0xbf58476d1ce4e5b9
	s ^= s >> 27
	s *= 0x94d049bb133111eb
	s ^= s >> 31
	return s
}

// Shuffle permutes n elements in place with Fisher-Yates, drawing from src.
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		swap(i, j)
	}
}
