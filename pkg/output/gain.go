// ABOUTME: Lock-free gain cell for callback-driven backends
// ABOUTME: Audio-thread callbacks read it without taking the stream mutex
package output

import (
	"math"
	"sync/atomic"
)

// atomicGain holds a float64 gain the data callback can read without
// locking. Stopping a device blocks until the in-flight callback
// returns, so the callback must never contend with the stream mutex.
type atomicGain struct {
	bits atomic.Uint64
}

func (g *atomicGain) Store(v float64) { g.bits.Store(math.Float64bits(v)) }

func (g *atomicGain) Load() float64 { return math.Float64frombits(g.bits.Load()) }
