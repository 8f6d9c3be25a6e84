package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/spf13/cobra"

	"github.com/luxfi/zkattest/pkg/attest"
	"github.com/luxfi/zkattest/pkg/curve"
	"github.com/luxfi/zkattest/pkg/pedersen"
	"github.com/luxfi/zkattest/pkg/pool"
)

var (
	benchIterations int
	benchRingSize   int
)

func addBenchFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&benchIterations, "iterations", 5, "number of prove/verify cycles to run")
	cmd.Flags().IntVar(&benchRingSize, "ring-size", 16, "size of the synthetic ring to attest membership in")
}

// syntheticInput signs a random 32-byte hash with a fresh secp256k1 keypair
// and returns the attest.Input plus the ring (with the signer's address at
// index 0) Construct/Verify need. ringCurve is the cycle curve --
// address/ring membership runs there, not on the signature's base curve.
func syntheticInput(rng io.Reader, ringCurve *curve.Params, ringSize int) (attest.Input, curve.Scalar, curve.Scalar, []curve.Scalar, int, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return attest.Input{}, curve.Scalar{}, curve.Scalar{}, nil, 0, err
	}
	var msgHash [32]byte
	if _, err := io.ReadFull(rng, msgHash[:]); err != nil {
		return attest.Input{}, curve.Scalar{}, curve.Scalar{}, nil, 0, err
	}
	sig := ecdsa.Sign(priv, msgHash[:])

	r := *sig.R().Bytes()
	s := *sig.S().Bytes()

	in := attest.Input{
		PublicKey: priv.PubKey().SerializeUncompressed(),
		R:         r,
		S:         s,
		MsgHash:   msgHash,
	}

	ring := make([]curve.Scalar, ringSize)
	for i := range ring {
		v, err := curve.RandomScalar(rng, ringCurve)
		if err != nil {
			return attest.Input{}, curve.Scalar{}, curve.Scalar{}, nil, 0, err
		}
		ring[i] = v
	}
	address, err := curve.RandomScalar(rng, ringCurve)
	if err != nil {
		return attest.Input{}, curve.Scalar{}, curve.Scalar{}, nil, 0, err
	}
	addressRand, err := curve.RandomScalar(rng, ringCurve)
	if err != nil {
		return attest.Input{}, curve.Scalar{}, curve.Scalar{}, nil, 0, err
	}
	ringIndex := 0
	ring[ringIndex] = address

	return in, address, addressRand, ring, ringIndex, nil
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	base := curve.Secp256k1
	cycle := curve.Tom256k1

	pedersenCycle, err := pedersen.NewCycle(base, cycle, rand.Reader)
	if err != nil {
		return err
	}
	pl := pool.NewPool(workerCount)
	defer pl.TearDown()

	var totalProve, totalVerify time.Duration
	for i := 0; i < benchIterations; i++ {
		in, address, addressRand, ring, ringIndex, err := syntheticInput(rand.Reader, cycle, benchRingSize)
		if err != nil {
			return err
		}

		start := time.Now()
		proof, err := attest.Construct(rand.Reader, pl, pedersenCycle, in, address, addressRand, ring, ringIndex)
		if err != nil {
			return fmt.Errorf("iteration %d: construct failed: %w", i, err)
		}
		proveElapsed := time.Since(start)
		totalProve += proveElapsed

		start = time.Now()
		if err := attest.Verify(rand.Reader, pl, proof, securityParam, in); err != nil {
			return fmt.Errorf("iteration %d: verify failed: %w", i, err)
		}
		verifyElapsed := time.Since(start)
		totalVerify += verifyElapsed

		if verbose {
			fmt.Printf("iteration %d: prove=%s verify=%s\n", i, proveElapsed, verifyElapsed)
		}
	}

	fmt.Printf("Ran %d iterations (ring size %d, security param %d)\n", benchIterations, benchRingSize, securityParam)
	fmt.Printf("Average prove:  %s\n", totalProve/time.Duration(benchIterations))
	fmt.Printf("Average verify: %s\n", totalVerify/time.Duration(benchIterations))
	return nil
}
