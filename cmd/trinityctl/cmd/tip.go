package cmd

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
	"github.com/trinitychain/trinitychain/store"
)

var tipCmd = &cobra.Command{
	Use:   "get-tip",
	Short: "Print the tip height, hash, difficulty, and cumulative work",
	Run: func(cmd *cobra.Command, args []string) {
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

		stats := c.Stats()
		fmt.Printf("height:           %d\n", stats.TipHeight)
		fmt.Printf("hash:             %s\n", hex.EncodeToString(stats.TipHash[:]))
		fmt.Printf("difficulty:       %d\n", stats.Difficulty)
		fmt.Printf("cumulative_work:  %s\n", stats.CumulativeWork)
		fmt.Printf("utxo_count:       %d\n", stats.UTXOCount)
		fmt.Printf("mempool_count:    %d\n", stats.MempoolCount)
		fmt.Printf("unhealthy:        %t\n", stats.Unhealthy)
	},
}

func init() {
	rootCmd.AddCommand(tipCmd)
}
