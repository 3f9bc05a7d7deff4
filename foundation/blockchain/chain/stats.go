package chain

// Stats is a point-in-time snapshot of chain health, surfaced by node
// status endpoints and CLI tooling.
type Stats struct {
	TipHeight      uint64
	TipHash        [32]byte
	Difficulty     uint64
	CumulativeWork string
	UTXOCount      int
	MempoolCount   int
	Unhealthy      bool
}

// Stats returns a snapshot of the current chain state.
func (c *Chain) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tip := c.headers[len(c.headers)-1]
	return Stats{
		TipHeight:      tip.Height,
		TipHash:        tip.Hash(),
		Difficulty:     c.difficulty,
		CumulativeWork: c.cumulativeWorkOf().Dec(),
		UTXOCount:      c.utxoState.Len(),
		MempoolCount:   c.mempool.Count(),
		Unhealthy:      c.unhealthy,
	}
}
