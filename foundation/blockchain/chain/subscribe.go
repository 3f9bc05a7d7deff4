package chain

import (
	"github.com/google/uuid"

	"github.com/trinitychain/trinitychain/foundation/events"
)

// Subscribe backs subscribe_new_tip(): it returns a channel that receives
// the header of every block that becomes the new tip, including the ones
// applied during a reorg, and a function to release it.
func (c *Chain) Subscribe() (<-chan BlockHeader, func()) {
	id := uuid.NewString()
	ch := c.tipEvents.Acquire(id)

	return ch, func() {
		_ = c.tipEvents.Release(id)
	}
}

func newTipEvents() *events.Events[BlockHeader] {
	return events.New[BlockHeader]()
}
