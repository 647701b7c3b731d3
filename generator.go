package uuid47

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"
)

const (
	seqBits uint8  = 12             // rand_a carries a per-millisecond sequence
	seqMask uint64 = 1<<seqBits - 1 // 4095
	tsMask  uint64 = 1<<48 - 1
)

// DefaultGenerator is used by New().
var DefaultGenerator = NewGenerator()

// New generates a version 7 UUID using the DefaultGenerator.
func New() UUID {
	return DefaultGenerator.Generate()
}

// Generator produces version 7 UUIDs whose rand_a field is a monotonic
// per-millisecond sequence, so UUIDs from one Generator sort in creation
// order even within a millisecond. rand_b is 62 fresh random bits per
// UUID. Safe for concurrent use.
type Generator struct {
	state atomic.Uint64 // unix ms << seqBits | seq
}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate() UUID {
	for {
		now := uint64(time.Now().UnixMilli()) & tsMask

		old := g.state.Load()
		oldTime := old >> seqBits
		oldSeq := old & seqMask

		var newTime, seq uint64
		if now > oldTime {
			// Time moved forward, reset sequence
			newTime = now
			seq = 0
		} else {
			// Time is same or went backward, increment sequence
			seq = oldSeq + 1
			if seq > seqMask {
				// Sequence exhausted, spin until time advances
				continue
			}
			newTime = oldTime
		}

		if g.state.CompareAndSwap(old, newTime<<seqBits|seq) {
			return buildV7(newTime, seq, randB62())
		}
	}
}

// buildV7 assembles a version 7 UUID from a 48-bit millisecond timestamp,
// a 12-bit rand_a value and a 62-bit rand_b value.
func buildV7(ms, randA, randB uint64) UUID {
	var u UUID
	u.setTimestamp48(ms)
	u[6] = version7<<4 | byte(randA>>8)&0x0f
	u[7] = byte(randA)
	u[8] = 0x80 | byte(randB>>56)&0x3f
	u[9] = byte(randB >> 48)
	u[10] = byte(randB >> 40)
	u[11] = byte(randB >> 32)
	u[12] = byte(randB >> 24)
	u[13] = byte(randB >> 16)
	u[14] = byte(randB >> 8)
	u[15] = byte(randB)
	return u
}

func randB62() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("uuid47: read random bytes: %w", err))
	}
	return binary.BigEndian.Uint64(b[:]) & (1<<62 - 1)
}

// MinForTime returns the smallest version 7 UUID for t's millisecond.
// With MaxForTime it brackets every UUID this package generates within
// that millisecond, for use as range-scan bounds.
func MinForTime(t time.Time) UUID {
	return buildV7(uint64(t.UnixMilli())&tsMask, 0, 0)
}

// MaxForTime returns the largest version 7 UUID for t's millisecond.
func MaxForTime(t time.Time) UUID {
	return buildV7(uint64(t.UnixMilli())&tsMask, seqMask, 1<<62-1)
}
