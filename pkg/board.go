package reco

import (
	"golang.org/x/exp/slices"
)

// BoardHits is the channel-ordered set of hit chains read out by one board in
// one event. The board id is fixed by the first hit inserted.
type BoardHits struct {
	chains []HitChain
}

func NewBoardHits(hits ...Hit) BoardHits {
	var b BoardHits
	for _, hit := range hits {
		b.AddHit(hit)
	}
	return b
}

// Accepts reports whether a reading from board could join the collection.
// The first reading binds the board, whatever its id. Readings from boards
// without an index are dropped later by IsGoodHit.
func (b *BoardHits) Accepts(board int) bool {
	if len(b.chains) == 0 {
		return true
	}
	return board == b.Board()
}

// AddHit inserts hit at its channel position. A hit on an existing channel is
// linked as a duplicate. Returns false, leaving b untouched, when the hit
// belongs to another board.
func (b *BoardHits) AddHit(hit Hit) bool {
	return b.AddChain(NewHitChain(hit))
}

// AddChain inserts a copy of chain, merging it into an existing chain on the
// same channel.
func (b *BoardHits) AddChain(chain HitChain) bool {
	if chain.Len() == 0 || !b.Accepts(chain.Board()) {
		return false
	}
	channel := chain.Channel()
	i, found := slices.BinarySearchFunc(b.chains, channel, func(c HitChain, ch int) int {
		return c.Channel() - ch
	})
	if found {
		b.chains[i].AddChain(chain)
		return true
	}
	b.chains = slices.Insert(b.chains, i, chain.Copy())
	return true
}

// AddHits merges every chain of other into b.
func (b *BoardHits) AddHits(other BoardHits) bool {
	ok := true
	for _, chain := range other.chains {
		ok = b.AddChain(chain) && ok
	}
	return ok
}

func (b *BoardHits) Contains(hit Hit) bool {
	return b.Index(hit) >= 0
}

// Index returns the position of the chain on hit's channel, or -1.
func (b *BoardHits) Index(hit Hit) int {
	if len(b.chains) == 0 || hit.Board() != b.Board() {
		return -1
	}
	i, found := slices.BinarySearchFunc(b.chains, hit.Channel(), func(c HitChain, ch int) int {
		return c.Channel() - ch
	})
	if !found {
		return -1
	}
	return i
}

// Board returns the bound board id, -1 when empty.
func (b *BoardHits) Board() int {
	if len(b.chains) == 0 {
		return -1
	}
	return b.chains[0].Board()
}

func (b *BoardHits) BoardIndex() int {
	if len(b.chains) == 0 {
		return -1
	}
	return b.chains[0].Head().BoardIndex()
}

func (b *BoardHits) Len() int {
	return len(b.chains)
}

func (b *BoardHits) Get(i int) HitChain {
	return b.chains[i]
}

// NDuplicates counts channels read out more than once.
func (b *BoardHits) NDuplicates() int {
	n := 0
	for _, chain := range b.chains {
		if chain.Len() > 1 {
			n++
		}
	}
	return n
}

// Duplicates returns the chains with more than one reading.
func (b *BoardHits) Duplicates() BoardHits {
	var dups BoardHits
	for _, chain := range b.chains {
		if chain.Len() > 1 {
			dups.AddChain(chain)
		}
	}
	return dups
}

func (b *BoardHits) Copy() BoardHits {
	chains := make([]HitChain, len(b.chains))
	for i, chain := range b.chains {
		chains[i] = chain.Copy()
	}
	return BoardHits{chains: chains}
}

// Apply calls fn on every reading, duplicates included.
func (b *BoardHits) Apply(fn func(*Hit)) {
	for i := range b.chains {
		b.chains[i].apply(fn)
	}
}

func (b *BoardHits) Reset() {
	b.chains = nil
}
