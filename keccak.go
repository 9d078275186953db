// Package keccak implements the Keccak-256 sponge used to commit to large
// preimages incrementally.
//
// The sponge absorbs input in 136-byte blocks, carrying the 1600-bit state and
// the unabsorbed tail between calls, and applies Keccak's multi-rate padding
// (domain byte 0x01, final bit 0x80) only when the digest is taken. The digest
// is bit-identical to a one-shot Keccak-256 of the concatenated input, which is
// NOT the NIST SHA3-256 variant (domain byte 0x06).
package keccak

import "encoding/binary"

const (
	// Rate is the sponge rate for Keccak-256: (1600 - 2*256) / 8 = 136 bytes.
	Rate = 136

	// Size is the digest length in bytes.
	Size = 32
)

// Sum256 computes the Keccak-256 hash of data. Zero heap allocations.
func Sum256(data []byte) [Size]byte {
	var a [25]uint64

	// Absorb full blocks.
	for len(data) >= Rate {
		xorIn(&a, data[:Rate])
		keccakF1600(&a)
		data = data[Rate:]
	}

	return finalize(a, data)
}

// PadBlock returns the final block for a tail of fewer than Rate bytes: the
// tail, the 0x01 domain byte, zero fill, and the pad10*1 end bit XORed into
// the last byte. With a 135-byte tail both pad bits land in byte 135 (0x81).
// It panics if tail is a full block or longer.
func PadBlock(tail []byte) [Rate]byte {
	if len(tail) >= Rate {
		panic("keccak: tail does not fit in a padded block")
	}
	var block [Rate]byte
	copy(block[:], tail)
	block[len(tail)] ^= 0x01
	block[Rate-1] ^= 0x80
	return block
}

// Sponge is a streaming Keccak-256 sponge. The zero value is ready to use.
//
// A Sponge is not safe for concurrent use.
type Sponge struct {
	a        [25]uint64
	buf      [Rate]byte
	n        int    // valid bytes in buf, always < Rate between calls
	absorbed uint64 // diagnostics only, padding does not encode length
}

// Reset returns the sponge to its zero state.
func (s *Sponge) Reset() {
	*s = Sponge{}
}

// Absorbed reports the total number of bytes passed to Absorb.
func (s *Sponge) Absorbed() uint64 { return s.absorbed }

// Pending reports the number of buffered bytes not yet absorbed into the state.
func (s *Sponge) Pending() int { return s.n }

// Absorb feeds p into the sponge. It reports the number of full blocks that
// were permuted into the state.
func (s *Sponge) Absorb(p []byte) int {
	s.absorbed += uint64(len(p))

	blocks := 0
	if s.n > 0 {
		k := copy(s.buf[s.n:], p)
		s.n += k
		p = p[k:]
		if s.n < Rate {
			return 0
		}
		xorIn(&s.a, s.buf[:])
		keccakF1600(&s.a)
		s.n = 0
		blocks++
	}

	for len(p) >= Rate {
		xorIn(&s.a, p[:Rate])
		keccakF1600(&s.a)
		p = p[Rate:]
		blocks++
	}

	if len(p) > 0 {
		s.n = copy(s.buf[:], p)
	}
	return blocks
}

// Sum256 pads the buffered tail, runs the final permutation and returns the
// 32-byte digest. It does not modify the sponge.
func (s *Sponge) Sum256() [Size]byte {
	return finalize(s.a, s.buf[:s.n])
}

// finalize works on a copy of the state.
func finalize(a [25]uint64, tail []byte) [Size]byte {
	block := PadBlock(tail)
	xorIn(&a, block[:])
	keccakF1600(&a)

	// Squeeze 32 bytes.
	var out [Size]byte
	for i := 0; i < Size/8; i++ {
		binary.LittleEndian.PutUint64(out[8*i:], a[i])
	}
	return out
}

// xorIn XORs data into the leading lanes of the state, little-endian within
// each lane. len(data) must not exceed Rate.
func xorIn(a *[25]uint64, data []byte) {
	n := len(data) >> 3
	for i := 0; i < n; i++ {
		a[i] ^= le64(data[8*i:])
	}
	// Trailing bytes (< 8) of a partial lane.
	for i := n << 3; i < len(data); i++ {
		a[i>>3] ^= uint64(data[i]) << (8 * (i & 7))
	}
}

// le64 reads a little-endian uint64 from at least 8 bytes.
func le64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}
