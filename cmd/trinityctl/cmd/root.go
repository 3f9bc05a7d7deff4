// Package cmd contains the trinityctl command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
)

var (
	dbPath     string
	paramsName string
	keyPath    string
)

var rootCmd = &cobra.Command{
	Use:   "trinityctl",
	Short: "Operator tool for a TrinityChain node's on-disk state",
	Long: "trinityctl inspects and signs against a node's leveldb store directly.\n" +
		"It has no RPC channel to a running trinityd: run it against a stopped\n" +
		"node's data directory, the same way you would run an offline wallet\n" +
		"tool against a stopped node's block database.",
}

// Execute adds all child commands to rootCmd and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "zblock/trinity.db", "path to the node's leveldb store")
	rootCmd.PersistentFlags().StringVar(&paramsName, "params", "main", "consensus parameter set (main or fast)")
	rootCmd.PersistentFlags().StringVarP(&keyPath, "key", "k", "zblock/miner.ecdsa", "path to an ECDSA key file")
}

func params() (chain.Params, error) {
	switch paramsName {
	case "main":
		return chain.Main(), nil
	case "fast":
		return chain.Fast(), nil
	default:
		return chain.Params{}, fmt.Errorf("unknown params set %q (want main or fast)", paramsName)
	}
}
