package bigint

// Modulus is a 256-bit prime modulus together with its precomputed
// negated-limb constant, used by Reduce to fold a 512-bit product back into
// a canonical 256-bit residue without a full division.
//
// The reduction below is a direct port of the NEG_MOD trick used by the
// libsecp256k1 field/scalar implementations: for a modulus p close to 2^256,
// NEG_MOD = 2^256 - p, represented as eight 32-bit limbs. Multiplying the
// high half of a double-width product by NEG_MOD and adding it back to the
// low half is equivalent to subtracting p * (high half), since
// high*2^256 = high*NEG_MOD + high*p (mod p) ... = high*NEG_MOD (mod p).
type Modulus struct {
	value  U256
	negMod [8]uint32
}

// NewModulus builds a Modulus from its canonical value.
func NewModulus(value U256) *Modulus {
	var negMod [8]uint32
	negMod[0] = ^value[0] + 1
	for i := 1; i < 8; i++ {
		negMod[i] = ^value[i]
	}
	return &Modulus{value: value, negMod: negMod}
}

// Value returns the modulus as a U256.
func (m *Modulus) Value() U256 { return m.value }

// Add returns (u+v) mod m.
func (m *Modulus) Add(u, v U256) U256 {
	sum, carry := addWithCarry(u, v, 0)
	reduced, borrow := subWithBorrow(sum, m.value, 0)
	if carry != 0 || borrow == 0 {
		return reduced
	}
	return sum
}

// Sub returns (u-v) mod m.
func (m *Modulus) Sub(u, v U256) U256 {
	diff, borrow := subWithBorrow(u, v, 0)
	if borrow == 0 {
		return diff
	}
	wrapped, _ := addWithCarry(diff, m.value, 0)
	return wrapped
}

// Neg returns (-u) mod m.
func (m *Modulus) Neg(u U256) U256 {
	return m.Sub(Zero, u)
}

// Mul returns (u*v) mod m.
func (m *Modulus) Mul(u, v U256) U256 {
	lo, hi := mulWide(u, v)
	return m.Reduce(lo, hi)
}

// Reduce folds the 512-bit value (hi*2^256 + lo) into a canonical residue
// modulo m, via three descending passes (512->385->258->256 bits) ported
// from the NEG_MOD reduction used by secp256k1-family field arithmetic.
func (m *Modulus) Reduce(lo, hi U256) U256 {
	n0, n1, n2, n3, n4, n5, n6, n7 := hi[0], hi[1], hi[2], hi[3], hi[4], hi[5], hi[6], hi[7]
	negMod := m.negMod

	// Reduce 512 bits into 385.
	// m[0..12] = l[0..7] + n[0..7] * NEG_MOD.
	c0, c1 := lo[0], uint32(0)
	c0, c1 = muladdFast(n0, negMod[0], c0, c1)
	m0, c0, c1, c2 := c0, c1, uint32(0), uint32(0)
	c0, c1 = sumaddFast(lo[1], c0, c1)
	c0, c1, c2 = muladd(n1, negMod[0], c0, c1, c2)
	c0, c1, c2 = muladd(n0, negMod[1], c0, c1, c2)
	m1, c0, c1, c2 := c0, c1, c2, uint32(0)
	c0, c1, c2 = sumadd(lo[2], c0, c1, c2)
	c0, c1, c2 = muladd(n2, negMod[0], c0, c1, c2)
	c0, c1, c2 = muladd(n1, negMod[1], c0, c1, c2)
	c0, c1, c2 = muladd(n0, negMod[2], c0, c1, c2)
	m2, c0, c1, c2 := c0, c1, c2, uint32(0)
	c0, c1, c2 = sumadd(lo[3], c0, c1, c2)
	c0, c1, c2 = muladd(n3, negMod[0], c0, c1, c2)
	c0, c1, c2 = muladd(n2, negMod[1], c0, c1, c2)
	c0, c1, c2 = muladd(n1, negMod[2], c0, c1, c2)
	c0, c1, c2 = muladd(n0, negMod[3], c0, c1, c2)
	m3, c0, c1, c2 := c0, c1, c2, uint32(0)
	c0, c1, c2 = sumadd(lo[4], c0, c1, c2)
	c0, c1, c2 = muladd(n4, negMod[0], c0, c1, c2)
	c0, c1, c2 = muladd(n3, negMod[1], c0, c1, c2)
	c0, c1, c2 = muladd(n2, negMod[2], c0, c1, c2)
	c0, c1, c2 = muladd(n1, negMod[3], c0, c1, c2)
	c0, c1, c2 = muladd(n0, negMod[4], c0, c1, c2)
	m4, c0, c1, c2 := c0, c1, c2, uint32(0)
	c0, c1, c2 = sumadd(lo[5], c0, c1, c2)
	c0, c1, c2 = muladd(n5, negMod[0], c0, c1, c2)
	c0, c1, c2 = muladd(n4, negMod[1], c0, c1, c2)
	c0, c1, c2 = muladd(n3, negMod[2], c0, c1, c2)
	c0, c1, c2 = muladd(n2, negMod[3], c0, c1, c2)
	c0, c1, c2 = muladd(n1, negMod[4], c0, c1, c2)
	m5, c0, c1, c2 := c0, c1, c2, uint32(0)
	c0, c1, c2 = sumadd(lo[6], c0, c1, c2)
	c0, c1, c2 = muladd(n6, negMod[0], c0, c1, c2)
	c0, c1, c2 = muladd(n5, negMod[1], c0, c1, c2)
	c0, c1, c2 = muladd(n4, negMod[2], c0, c1, c2)
	c0, c1, c2 = muladd(n3, negMod[3], c0, c1, c2)
	c0, c1, c2 = muladd(n2, negMod[4], c0, c1, c2)
	m6, c0, c1, c2 := c0, c1, c2, uint32(0)
	c0, c1, c2 = sumadd(lo[7], c0, c1, c2)
	c0, c1, c2 = muladd(n7, negMod[0], c0, c1, c2)
	c0, c1, c2 = muladd(n6, negMod[1], c0, c1, c2)
	c0, c1, c2 = muladd(n5, negMod[2], c0, c1, c2)
	c0, c1, c2 = muladd(n4, negMod[3], c0, c1, c2)
	c0, c1, c2 = muladd(n3, negMod[4], c0, c1, c2)
	m7, c0, c1, c2 := c0, c1, c2, uint32(0)
	c0, c1, c2 = muladd(n7, negMod[1], c0, c1, c2)
	c0, c1, c2 = muladd(n6, negMod[2], c0, c1, c2)
	c0, c1, c2 = muladd(n5, negMod[3], c0, c1, c2)
	c0, c1, c2 = muladd(n4, negMod[4], c0, c1, c2)
	m8, c0, c1, c2 := c0, c1, c2, uint32(0)
	c0, c1, c2 = muladd(n7, negMod[2], c0, c1, c2)
	c0, c1, c2 = muladd(n6, negMod[3], c0, c1, c2)
	c0, c1, c2 = muladd(n5, negMod[4], c0, c1, c2)
	m9, c0, c1, _ := c0, c1, c2, uint32(0)
	c0, c1 = muladdFast(n7, negMod[3], c0, c1)
	c0, c1 = muladdFast(n6, negMod[4], c0, c1)
	m10, c0, c1 := c0, c1, uint32(0)
	c0, c1 = muladdFast(n7, negMod[4], c0, c1)
	m11, c0 := c0, c1
	m12 := c0

	// Reduce 385 bits into 258.
	// p[0..8] = m[0..7] + m[8..12] * NEG_MOD.
	d0, d1, d2 := m0, uint32(0), uint32(0)
	d0, d1 = muladdFast(m8, negMod[0], d0, d1)
	p0, d0, d1, d2 := d0, d1, uint32(0), uint32(0)
	d0, d1 = sumaddFast(m1, d0, d1)
	d0, d1, d2 = muladd(m9, negMod[0], d0, d1, d2)
	d0, d1, d2 = muladd(m8, negMod[1], d0, d1, d2)
	p1, d0, d1, d2 := d0, d1, d2, uint32(0)
	d0, d1, d2 = sumadd(m2, d0, d1, d2)
	d0, d1, d2 = muladd(m10, negMod[0], d0, d1, d2)
	d0, d1, d2 = muladd(m9, negMod[1], d0, d1, d2)
	d0, d1, d2 = muladd(m8, negMod[2], d0, d1, d2)
	p2, d0, d1, d2 := d0, d1, d2, uint32(0)
	d0, d1, d2 = sumadd(m3, d0, d1, d2)
	d0, d1, d2 = muladd(m11, negMod[0], d0, d1, d2)
	d0, d1, d2 = muladd(m10, negMod[1], d0, d1, d2)
	d0, d1, d2 = muladd(m9, negMod[2], d0, d1, d2)
	d0, d1, d2 = muladd(m8, negMod[3], d0, d1, d2)
	p3, d0, d1, d2 := d0, d1, d2, uint32(0)
	d0, d1, d2 = sumadd(m4, d0, d1, d2)
	d0, d1, d2 = muladd(m12, negMod[0], d0, d1, d2)
	d0, d1, d2 = muladd(m11, negMod[1], d0, d1, d2)
	d0, d1, d2 = muladd(m10, negMod[2], d0, d1, d2)
	d0, d1, d2 = muladd(m9, negMod[3], d0, d1, d2)
	d0, d1, d2 = muladd(m8, negMod[4], d0, d1, d2)
	p4, d0, d1, d2 := d0, d1, d2, uint32(0)
	d0, d1, d2 = sumadd(m5, d0, d1, d2)
	d0, d1, d2 = muladd(m12, negMod[1], d0, d1, d2)
	d0, d1, d2 = muladd(m11, negMod[2], d0, d1, d2)
	d0, d1, d2 = muladd(m10, negMod[3], d0, d1, d2)
	d0, d1, d2 = muladd(m9, negMod[4], d0, d1, d2)
	p5, d0, d1, d2 := d0, d1, d2, uint32(0)
	d0, d1, d2 = sumadd(m6, d0, d1, d2)
	d0, d1, d2 = muladd(m12, negMod[2], d0, d1, d2)
	d0, d1, d2 = muladd(m11, negMod[3], d0, d1, d2)
	d0, d1, d2 = muladd(m10, negMod[4], d0, d1, d2)
	p6, d0, d1, _ := d0, d1, d2, uint32(0)
	d0, d1 = sumaddFast(m7, d0, d1)
	d0, d1 = muladdFast(m12, negMod[3], d0, d1)
	d0, d1 = muladdFast(m11, negMod[4], d0, d1)
	p7, d0 := d0, d1
	p8 := d0 + m12*negMod[4]

	// Reduce 258 bits into 256.
	// r[0..7] = p[0..7] + p[8] * NEG_MOD.
	acc := uint64(p0) + uint64(negMod[0])*uint64(p8)
	r0 := uint32(acc & 0xFFFFFFFF)
	acc >>= 32
	acc += uint64(p1) + uint64(negMod[1])*uint64(p8)
	r1 := uint32(acc & 0xFFFFFFFF)
	acc >>= 32
	acc += uint64(p2) + uint64(negMod[2])*uint64(p8)
	r2 := uint32(acc & 0xFFFFFFFF)
	acc >>= 32
	acc += uint64(p3) + uint64(negMod[3])*uint64(p8)
	r3 := uint32(acc & 0xFFFFFFFF)
	acc >>= 32
	acc += uint64(p4) + uint64(negMod[4])*uint64(p8)
	r4 := uint32(acc & 0xFFFFFFFF)
	acc >>= 32
	acc += uint64(p5)
	r5 := uint32(acc & 0xFFFFFFFF)
	acc >>= 32
	acc += uint64(p6)
	r6 := uint32(acc & 0xFFFFFFFF)
	acc >>= 32
	acc += uint64(p7)
	r7 := uint32(acc & 0xFFFFFFFF)
	acc >>= 32

	r := U256{r0, r1, r2, r3, r4, r5, r6, r7}
	candidate, borrow := subWithBorrow(r, m.value, 0)
	// Take candidate when the value overflowed 256 bits or r >= m, selected
	// with a mask rather than a branch.
	mask := -(uint32((acc|-acc)>>63) | (borrow ^ 1))
	for i := range r {
		r[i] = (candidate[i] & mask) | (r[i] &^ mask)
	}
	return r
}

// Inverse returns the multiplicative inverse of u modulo m via Fermat's
// little theorem (m is always prime for the curves this package serves),
// u^(m-2) mod m, using square-and-multiply.
func (m *Modulus) Inverse(u U256) U256 {
	if u.IsZero() {
		return Zero
	}
	exp, _ := subWithBorrow(m.value, U256{2}, 0)
	result := One
	base := u
	for i := 0; i < 256; i++ {
		limb := exp[i/32]
		bit := (limb >> uint(i%32)) & 1
		if bit == 1 {
			result = m.Mul(result, base)
		}
		base = m.Mul(base, base)
	}
	return result
}
