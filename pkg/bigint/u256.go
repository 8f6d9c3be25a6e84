// Package bigint implements fixed-width 256-bit unsigned integer arithmetic
// and modular reduction for the two curves this module operates over.
//
// U256 stores its value as eight 32-bit limbs, least-significant limb first,
// matching the layout the reduction algorithm below is built around.
package bigint

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"

	"github.com/cronokirby/saferith"
)

// U256 is a 256-bit unsigned integer, little-endian limb order.
type U256 [8]uint32

// Zero is the additive identity.
var Zero = U256{}

// One is the multiplicative identity.
var One = U256{1}

// SetBytes decodes a 32-byte big-endian value into a U256.
func (u *U256) SetBytes(b []byte) error {
	if len(b) != 32 {
		return errors.New("bigint: SetBytes: input must be 32 bytes")
	}
	for i := 0; i < 8; i++ {
		u[i] = binary.BigEndian.Uint32(b[32-4*(i+1) : 32-4*i])
	}
	return nil
}

// Bytes encodes u as a 32-byte big-endian value.
func (u U256) Bytes() []byte {
	out := make([]byte, 32)
	for i := 0; i < 8; i++ {
		binary.BigEndian.PutUint32(out[32-4*(i+1):32-4*i], u[i])
	}
	return out
}

// Cmp returns -1, 0 or 1 as u is less than, equal to, or greater than v.
func (u U256) Cmp(v U256) int {
	for i := 7; i >= 0; i-- {
		if u[i] != v[i] {
			if u[i] < v[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// IsZero reports whether u is the zero value.
func (u U256) IsZero() bool {
	return u == Zero
}

// Random draws a uniformly distributed U256 strictly less than mod, using
// rejection sampling against the supplied reader (the zero value selects
// crypto/rand). Candidate bytes are carried through a saferith.Nat before
// being converted to our own limb layout; this is the only place the module
// uses saferith.
func Random(r io.Reader, mod U256) (U256, error) {
	if r == nil {
		r = rand.Reader
	}
	var buf [32]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return U256{}, err
		}
		nat := new(saferith.Nat).SetBytes(buf[:])
		var candidate U256
		if err := candidate.SetBytes(nat.Bytes()); err != nil {
			return U256{}, err
		}
		if candidate.Cmp(mod) < 0 {
			return candidate, nil
		}
	}
}

// addWithCarry adds u+v+carryIn, returning the sum and carry-out.
func addWithCarry(u, v U256, carryIn uint32) (U256, uint32) {
	var out U256
	carry := uint64(carryIn)
	for i := 0; i < 8; i++ {
		sum := uint64(u[i]) + uint64(v[i]) + carry
		out[i] = uint32(sum)
		carry = sum >> 32
	}
	return out, uint32(carry)
}

// subWithBorrow computes u-v-borrowIn, returning the difference and
// borrow-out (1 if the subtraction underflowed).
func subWithBorrow(u, v U256, borrowIn uint32) (U256, uint32) {
	var out U256
	borrow := uint64(borrowIn)
	for i := 0; i < 8; i++ {
		diff := uint64(u[i]) - uint64(v[i]) - borrow
		out[i] = uint32(diff)
		borrow = (diff >> 63) & 1
	}
	return out, uint32(borrow)
}

// mulWide computes the full 512-bit product of u and v, returned as
// (lo, hi) 256-bit halves.
func mulWide(u, v U256) (lo, hi U256) {
	var acc [16]uint64
	for i := 0; i < 8; i++ {
		carry := uint64(0)
		for j := 0; j < 8; j++ {
			t := uint64(u[i])*uint64(v[j]) + acc[i+j] + carry
			acc[i+j] = t & 0xFFFFFFFF
			carry = t >> 32
		}
		acc[i+8] += carry
	}
	for i := 0; i < 8; i++ {
		lo[i] = uint32(acc[i])
		hi[i] = uint32(acc[i+8])
	}
	return lo, hi
}

// ctLess is a constant-time-flavored less-than returning 0 or 1, mirroring
// the original's ct_less helper (kept non-branching for parity, though Go's
// compiler does not guarantee constant time here).
func ctLess(a, b uint32) uint32 {
	return uint32((uint64(a) - uint64(b)) >> 63)
}

// sumadd adds a to the number defined by (c0,c1,c2). c2 must never overflow.
func sumadd(a, c0, c1, c2 uint32) (uint32, uint32, uint32) {
	newC0 := c0 + a
	over := ctLess(newC0, a)
	newC1 := c1 + over
	newC2 := c2 + ctLess(newC1, over)
	return newC0, newC1, newC2
}

// sumaddFast adds a to the number defined by (c0,c1). c1 must never overflow.
func sumaddFast(a, c0, c1 uint32) (uint32, uint32) {
	newC0 := c0 + a
	newC1 := c1 + ctLess(newC0, a)
	return newC0, newC1
}

// muladd adds a*b to the number defined by (c0,c1,c2). c2 must never overflow.
func muladd(a, b, c0, c1, c2 uint32) (uint32, uint32, uint32) {
	t := uint64(a) * uint64(b)
	th := uint32(t >> 32)
	tl := uint32(t)

	newC0 := c0 + tl
	newTh := th + ctLess(newC0, tl)
	newC1 := c1 + newTh
	newC2 := c2 + ctLess(newC1, newTh)
	return newC0, newC1, newC2
}

// muladdFast adds a*b to the number defined by (c0,c1). c1 must never overflow.
func muladdFast(a, b, c0, c1 uint32) (uint32, uint32) {
	t := uint64(a) * uint64(b)
	th := uint32(t >> 32)
	tl := uint32(t)

	newC0 := c0 + tl
	newTh := th + ctLess(newC0, tl)
	newC1 := c1 + newTh
	return newC0, newC1
}
