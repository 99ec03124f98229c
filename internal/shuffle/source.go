package shuffle

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// Source yields uniformly distributed 32-bit values.
type Source interface {
	Uint32() uint32
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func() uint32

// Uint32 calls f.
func (f SourceFunc) Uint32() uint32 { return f() }

type cryptoSource struct{}

// Crypto returns the production source backed by crypto/rand.
func Crypto() Source {
	return cryptoSource{}
}

func (cryptoSource) Uint32() uint32 {
	var buf [4]byte
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}

type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded returns a deterministic source. It is safe for concurrent use.
func NewSeeded(seed uint64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Uint32() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Uint32()
}

type sequenceSource struct {
	mu     sync.Mutex
	values []uint32
	next   int
}

// Sequence returns a source that replays values in order and wraps around.
// An empty sequence always yields zero.
func Sequence(values ...uint32) Source {
	cp := make([]uint32, len(values))
	copy(cp, values)
	return &sequenceSource{values: cp}
}

func (s *sequenceSource) Uint32() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}
