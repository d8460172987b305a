package agent

import (
	"math/rand"
	"time"
)

// Rand is the source of randomness for reply decisions. Each decision uses
// independent draws: threshold redraw, text/file split, content pick and
// file size. Tests inject deterministic implementations.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type mathRand struct {
	r *rand.Rand
}

func (m *mathRand) IntN(n int) int   { return m.r.Intn(n) }
func (m *mathRand) Float64() float64 { return m.r.Float64() }

// NewRand returns a seeded math/rand source. Not safe for use outside the
// responder, which serializes draws internally.
func NewRand(seed int64) Rand {
	return &mathRand{r: rand.New(rand.NewSource(seed))}
}

// DefaultRand returns a time-seeded source.
func DefaultRand() Rand {
	return NewRand(time.Now().UnixNano())
}
