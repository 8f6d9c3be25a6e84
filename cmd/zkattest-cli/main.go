package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	curveName     string
	securityParam int
	workerCount   int
	verbose       bool

	rootCmd = &cobra.Command{
		Use:   "zkattest-cli",
		Short: "CLI tool for ZK attestation proofs",
		Long: `A CLI tool for constructing and verifying zero-knowledge attestations
that a known ECDSA signature was produced by some member of a public ring,
without revealing the public key or which member signed.`,
	}

	proveCmd = &cobra.Command{
		Use:   "prove",
		Short: "Construct a ZK attestation proof",
		Long:  `Construct a ZkAttestProof from a signature, message hash, public key, and ring.`,
		RunE:  runProve,
	}

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify a ZK attestation proof",
		Long:  `Verify a ZkAttestProof against the original (signature, msgHash, pubkey) input.`,
		RunE:  runVerify,
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Benchmark proof construction and verification",
		Long:  `Run repeated prove/verify cycles and report timing.`,
		RunE:  runBenchmark,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&curveName, "curve", "c", "secp256k1", "signature curve (secp256k1 is the only supported value)")
	rootCmd.PersistentFlags().IntVarP(&securityParam, "security-param", "k", 60, "number of cut-and-choose rounds verify expects in the exponentiation proof (prove always uses attest.SecParam)")
	rootCmd.PersistentFlags().IntVarP(&workerCount, "workers", "w", 0, "worker pool size (0 means GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	addProveFlags(proveCmd)
	addVerifyFlags(verifyCmd)
	addBenchFlags(benchCmd)

	rootCmd.AddCommand(proveCmd, verifyCmd, benchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
