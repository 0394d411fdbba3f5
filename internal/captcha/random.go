package captcha

import (
	"math/rand"
	"time"
)

// Source is the random source every rendering decision draws from.
// *rand.Rand satisfies it. A Source must not be shared between concurrent generators.
type Source interface {
	Intn(n int) int
}

// NewSource returns a deterministic Source for the given seed.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// NewRandomSource returns a Source seeded from the current time.
func NewRandomSource() Source {
	return NewSource(time.Now().UnixNano())
}

// uniform returns a random integer in [lo, hi], both inclusive.
func uniform(src Source, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}
