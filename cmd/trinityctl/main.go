// Command trinityctl is an operator tool for inspecting and signing
// against a TrinityChain node's on-disk state directly.
package main

import "github.com/trinitychain/trinitychain/cmd/trinityctl/cmd"

func main() {
	cmd.Execute()
}
