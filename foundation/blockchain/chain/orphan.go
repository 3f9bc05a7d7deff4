package chain

// orphanPoolCapacity bounds the number of orphan blocks held at once. The
// source evicts the oldest-inserted orphan first under pressure; adopted
// verbatim here as the tie-break rule.
const orphanPoolCapacity = 128

// orphanPool holds blocks whose previous_hash is not (yet) the tip,
// indexed by that previous_hash so the arrival of the missing parent can
// resubmit them in one lookup. Eviction under pressure is FIFO.
type orphanPool struct {
	byParent map[[32]byte][]Block
	order    [][32]byte // previous_hash of each staged block, in insertion order, for FIFO eviction
	count    int
}

func newOrphanPool() *orphanPool {
	return &orphanPool{byParent: make(map[[32]byte][]Block)}
}

// add stages blk under its previous_hash, evicting the oldest orphan if
// the pool is at capacity.
func (o *orphanPool) add(blk Block) {
	parent := blk.Header.PreviousHash

	if o.count >= orphanPoolCapacity {
		o.evictOldest()
	}

	o.order = append(o.order, parent)
	o.byParent[parent] = append(o.byParent[parent], blk)
	o.count++
}

// take removes and returns every orphan waiting on parentHash, if any.
func (o *orphanPool) take(parentHash [32]byte) []Block {
	blocks, ok := o.byParent[parentHash]
	if !ok {
		return nil
	}

	delete(o.byParent, parentHash)
	o.count -= len(blocks)

	kept := o.order[:0]
	for _, h := range o.order {
		if h != parentHash {
			kept = append(kept, h)
		}
	}
	o.order = kept

	return blocks
}

func (o *orphanPool) evictOldest() {
	if len(o.order) == 0 {
		return
	}

	oldest := o.order[0]
	o.order = o.order[1:]

	blocks := o.byParent[oldest]
	if len(blocks) > 0 {
		o.byParent[oldest] = blocks[1:]
		o.count--
		if len(o.byParent[oldest]) == 0 {
			delete(o.byParent, oldest)
		}
	}
}
