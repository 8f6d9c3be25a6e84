// Package transcript implements the Fiat-Shamir point hasher used to turn
// the interactive sigma protocols in pkg/proofs/* into non-interactive
// ones: every commitment a verifier would see is absorbed in order, and
// the resulting digest becomes the verifier's challenge.
package transcript

import (
	"encoding/binary"

	"github.com/zeebo/blake3"

	"github.com/luxfi/zkattest/pkg/bigint"
	"github.com/luxfi/zkattest/pkg/curve"
)

// Hasher accumulates a domain-separated transcript and squeezes a 256-bit
// challenge from it.
type Hasher struct {
	h *blake3.Hasher
}

// NewHasher starts a transcript tagged with domain, so that transcripts
// built for different proof types (e.g. "exp-proof" vs "membership-proof")
// can never collide even if they happen to absorb the same point sequence.
func NewHasher(domain string) *Hasher {
	h := blake3.New()
	var lenPrefix [8]byte
	binary.LittleEndian.PutUint64(lenPrefix[:], uint64(len(domain)))
	h.Write(lenPrefix[:])
	h.Write([]byte(domain))
	return &Hasher{h: h}
}

// Insert absorbs an affine point's encoding into the transcript.
func (t *Hasher) Insert(p curve.AffinePoint) {
	t.h.Write(p.Bytes())
}

// InsertScalar absorbs a scalar's encoding into the transcript.
func (t *Hasher) InsertScalar(s curve.Scalar) {
	v := s.U256()
	t.h.Write(v.Bytes())
}

// InsertBytes absorbs raw bytes into the transcript (used for message
// hashes and other non-point data).
func (t *Hasher) InsertBytes(b []byte) {
	var lenPrefix [8]byte
	binary.LittleEndian.PutUint64(lenPrefix[:], uint64(len(b)))
	t.h.Write(lenPrefix[:])
	t.h.Write(b)
}

// Challenge squeezes a 256-bit challenge from the transcript so far,
// without consuming the hasher -- further Insert calls extend the same
// running transcript, matching a Merlin-style streaming transcript.
func (t *Hasher) Challenge() bigint.U256 {
	digest := t.h.Sum(nil)
	var out bigint.U256
	// blake3's default Sum is 32 bytes, matching U256's width exactly.
	_ = out.SetBytes(digest)
	return out
}

// PaddedBits expands the little-endian bit representation of number into
// exactly length bits (LSB first), truncating or zero-padding as needed.
// This mirrors original_source/tom256/src/proofs/exp/proof.rs's
// padded_bits, which turns the Fiat-Shamir challenge into the vector of
// odd/even branch choices driving the cut-and-choose exponentiation proof.
func PaddedBits(number bigint.U256, length int) []bool {
	bytes := number.Bytes() // big-endian 32 bytes
	out := make([]bool, length)
	for i := 0; i < length; i++ {
		byteIdx := 31 - i/8
		if byteIdx < 0 {
			break
		}
		bit := (bytes[byteIdx] >> uint(i%8)) & 1
		out[i] = bit == 1
	}
	return out
}
