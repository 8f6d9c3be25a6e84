package bigint_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/zkattest/pkg/bigint"
)

func TestU256BytesRoundTrip(t *testing.T) {
	b := make([]byte, 32)
	for i := range b {
		b[i] = byte(i * 7)
	}
	var u bigint.U256
	require.NoError(t, u.SetBytes(b))
	assert.True(t, bytes.Equal(b, u.Bytes()))
}

func TestU256SetBytesRejectsWrongLength(t *testing.T) {
	var u bigint.U256
	assert.Error(t, u.SetBytes(make([]byte, 31)))
	assert.Error(t, u.SetBytes(make([]byte, 33)))
}

func TestU256Cmp(t *testing.T) {
	assert.Equal(t, 0, bigint.Zero.Cmp(bigint.Zero))
	assert.Equal(t, -1, bigint.Zero.Cmp(bigint.One))
	assert.Equal(t, 1, bigint.One.Cmp(bigint.Zero))
}

func TestU256IsZero(t *testing.T) {
	assert.True(t, bigint.Zero.IsZero())
	assert.False(t, bigint.One.IsZero())
}

func TestModulusAddSubNeg(t *testing.T) {
	// small prime modulus (13) for readable arithmetic checks
	m := bigint.NewModulus(bigint.U256{13})
	five := bigint.U256{5}
	nine := bigint.U256{9}

	sum := m.Add(five, nine) // 14 mod 13 = 1
	assert.Equal(t, bigint.U256{1}, sum)

	diff := m.Sub(five, nine) // 5-9 = -4 mod 13 = 9
	assert.Equal(t, bigint.U256{9}, diff)

	neg := m.Neg(five) // -5 mod 13 = 8
	assert.Equal(t, bigint.U256{8}, neg)
}

func TestModulusMulAndInverse(t *testing.T) {
	// Mul reduces via NEG_MOD folding, which needs a modulus close to 2^256,
	// so this uses the secp256k1 prime p rather than a small one.
	m := bigint.NewModulus(secp256k1Prime())
	five := bigint.U256{5}
	nine := bigint.U256{9}

	prod := m.Mul(five, nine) // 45 < p
	assert.Equal(t, bigint.U256{45}, prod)

	inv := m.Inverse(five) // (2p+1)/5, since 5*(2p+1)/5 = 2p+1 = 1 mod p
	assert.Equal(t, bigint.U256{0xfffffdb6, 0x99999998, 0x99999999, 0x99999999, 0x99999999, 0x99999999, 0x99999999, 0x99999999}, inv)
	assert.Equal(t, bigint.One, m.Mul(five, inv))
}

func TestModulusInverseOfZeroIsZero(t *testing.T) {
	m := bigint.NewModulus(bigint.U256{13})
	assert.Equal(t, bigint.Zero, m.Inverse(bigint.Zero))
}

func TestRandomIsBelowModulusAndVaries(t *testing.T) {
	mod := bigint.U256{0, 0, 0, 0, 0, 0, 0, 0x80000000}
	seen := map[bigint.U256]bool{}
	for i := 0; i < 32; i++ {
		v, err := bigint.Random(nil, mod)
		require.NoError(t, err)
		assert.Equal(t, -1, v.Cmp(mod))
		seen[v] = true
	}
	assert.Greater(t, len(seen), 1, "random draws should not collapse to one value")
}

// secp256k1 prime, for a realistic full-width reduction check.
func secp256k1Prime() bigint.U256 {
	var u bigint.U256
	b := []byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xfe, 0xff, 0xff, 0xfc, 0x2f,
	}
	_ = u.SetBytes(b)
	return u
}

func TestModulusReductionAgainstFullWidthPrime(t *testing.T) {
	m := bigint.NewModulus(secp256k1Prime())
	one := m.Mul(bigint.One, bigint.One)
	assert.Equal(t, bigint.One, one)

	two := bigint.U256{2}
	four := m.Mul(two, two)
	assert.Equal(t, bigint.U256{4}, four)
}
