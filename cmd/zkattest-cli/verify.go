package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/zkattest/pkg/attest"
	"github.com/luxfi/zkattest/pkg/pool"
)

var (
	verifyProofFile string
	verifyPubKey    string
	verifyR         string
	verifyS         string
	verifyMsgHash   string
)

func addVerifyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&verifyProofFile, "proof", "", "path to the encoded proof (required)")
	cmd.Flags().StringVar(&verifyPubKey, "pubkey", "", "SEC1-encoded public key, hex (required)")
	cmd.Flags().StringVar(&verifyR, "r", "", "signature r, 32-byte big-endian hex (required)")
	cmd.Flags().StringVar(&verifyS, "s", "", "signature s, 32-byte big-endian hex (required)")
	cmd.Flags().StringVar(&verifyMsgHash, "msg-hash", "", "32-byte big-endian message hash, hex (required)")
	cmd.MarkFlagRequired("proof")
	cmd.MarkFlagRequired("pubkey")
	cmd.MarkFlagRequired("r")
	cmd.MarkFlagRequired("s")
	cmd.MarkFlagRequired("msg-hash")
}

func runVerify(cmd *cobra.Command, args []string) error {
	provePubKey, proveR, proveS, proveMsgHash = verifyPubKey, verifyR, verifyS, verifyMsgHash
	in, err := buildInput()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(verifyProofFile)
	if err != nil {
		return fmt.Errorf("failed to read proof: %w", err)
	}
	var proof attest.ZkAttestProof
	if err := proof.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("failed to decode proof: %w", err)
	}

	pl := pool.NewPool(workerCount)
	defer pl.TearDown()

	if err := attest.Verify(rand.Reader, pl, &proof, securityParam, in); err != nil {
		fmt.Println("✗ Proof is INVALID")
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Println("✓ Proof is VALID")
	return nil
}
