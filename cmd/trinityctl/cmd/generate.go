package cmd

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/trinitychain/trinitychain/foundation/blockchain/signature"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new secp256k1 key pair and print its address",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := signature.GenerateKey()
		if err != nil {
			log.Fatal(err)
		}
		if err := crypto.SaveECDSA(keyPath, privateKey); err != nil {
			log.Fatal(err)
		}

		address := signature.AddressFromPublicKey(&privateKey.PublicKey)
		fmt.Println("key saved to:", keyPath)
		fmt.Println("address:", hex.EncodeToString(address[:]))
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
