package cmd

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
	"github.com/trinitychain/trinitychain/foundation/blockchain/geometry"
	"github.com/trinitychain/trinitychain/foundation/blockchain/signature"
	"github.com/trinitychain/trinitychain/foundation/blockchain/txn"
	"github.com/trinitychain/trinitychain/store"
)

var (
	transferInputHash string
	transferTo        string
	transferFeeArea   int64
	transferMemo      string
)

// transferCmd builds, signs, and standalone-validates a whole-triangle
// Transfer against the store's current UTXO set. It does not relay the
// transaction anywhere: with no RPC channel to a running trinityd, getting
// it into a live mempool is the operator's job once one exists.
var transferCmd = &cobra.Command{
	Use:   "build-transfer",
	Short: "Build and sign a Transfer spending an entire triangle to a new owner",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := crypto.LoadECDSA(keyPath)
		if err != nil {
			log.Fatal(err)
		}
		sender := signature.AddressFromPublicKey(&privateKey.PublicKey)

		rawInput, err := hex.DecodeString(transferInputHash)
		if err != nil || len(rawInput) != 32 {
			log.Fatal("--input-hash must be 32 bytes of hex")
		}
		var inputHash [32]byte
		copy(inputHash[:], rawInput)

		rawTo, err := hex.DecodeString(transferTo)
		if err != nil || len(rawTo) != 32 {
			log.Fatal("--to must be 32 bytes of hex")
		}
		var newOwner [32]byte
		copy(newOwner[:], rawTo)

		p, err := params()
		if err != nil {
			log.Fatal(err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			log.Fatal(err)
		}
		defer st.Close()

		c, err := chain.New(chain.Config{Params: p, Store: st})
		if err != nil {
			log.Fatal(err)
		}

		stored, ok := c.GetUTXO(inputHash)
		if !ok {
			log.Fatalf("no such utxo: %s", transferInputHash)
		}
		if stored.Owner != sender {
			log.Fatal("key does not own this triangle")
		}

		fee := geometry.Coord(transferFeeArea)
		amount := stored.Area().Sub(fee)

		tr := txn.Transfer{
			InputHash: inputHash,
			NewOwner:  newOwner,
			Sender:    sender,
			Amount:    amount,
			FeeArea:   fee,
			PublicKey: signature.PublicKeyBytes(&privateKey.PublicKey),
			Memo:      []byte(transferMemo),
		}

		digest := txn.NewTransfer(tr).SigningDigest()
		sig, err := signature.Sign(digest, privateKey)
		if err != nil {
			log.Fatal(err)
		}
		tr.Signature = sig

		tx := txn.NewTransfer(tr)
		if err := tx.StandaloneValidate(); err != nil {
			log.Fatalf("built an invalid transaction: %s", err)
		}

		if err := c.SubmitTransaction(tx); err != nil {
			fmt.Println("built and signed, but rejected against the current UTXO set:", err)
			return
		}

		txID := tx.ID()
		fmt.Println("transaction accepted against current chain state")
		fmt.Println("txid:", hex.EncodeToString(txID[:]))
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
	transferCmd.Flags().StringVar(&transferInputHash, "input-hash", "", "hash of the triangle to spend")
	transferCmd.Flags().StringVar(&transferTo, "to", "", "recipient address, hex")
	transferCmd.Flags().Int64Var(&transferFeeArea, "fee", 0, "fee area subtracted from the transfer amount")
	transferCmd.Flags().StringVar(&transferMemo, "memo", "", "optional memo")
	transferCmd.MarkFlagRequired("input-hash")
	transferCmd.MarkFlagRequired("to")
}
