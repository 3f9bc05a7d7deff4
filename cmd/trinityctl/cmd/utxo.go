package cmd

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
	"github.com/trinitychain/trinitychain/store"
)

var utxoCmd = &cobra.Command{
	Use:   "get-utxo [hash]",
	Short: "Print the triangle stored under a UTXO hash",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := hex.DecodeString(args[0])
		if err != nil || len(raw) != 32 {
			log.Fatal("hash must be 32 bytes of hex")
		}
		var hash [32]byte
		copy(hash[:], raw)

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

		t, ok := c.GetUTXO(hash)
		if !ok {
			log.Fatalf("no such utxo: %s", args[0])
		}

		fmt.Printf("owner:             %s\n", hex.EncodeToString(t.Owner[:]))
		fmt.Printf("a:                 (%d, %d)\n", t.A.X, t.A.Y)
		fmt.Printf("b:                 (%d, %d)\n", t.B.X, t.B.Y)
		fmt.Printf("c:                 (%d, %d)\n", t.C.X, t.C.Y)
		fmt.Printf("area:              %d\n", t.Area())
		fmt.Printf("subdivision_depth: %d\n", t.SubdivisionDepth)
		if t.ParentHash != nil {
			fmt.Printf("parent_hash:       %s\n", hex.EncodeToString(t.ParentHash[:]))
		}
	},
}

func init() {
	rootCmd.AddCommand(utxoCmd)
}
