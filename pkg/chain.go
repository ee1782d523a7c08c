package reco

// HitChain holds every reading that landed on one channel in an event, in
// arrival order. The first hit is the one clustering and calibration report on.
type HitChain struct {
	hits []Hit
}

func NewHitChain(hit Hit) HitChain {
	return HitChain{hits: []Hit{hit}}
}

func (c *HitChain) Add(hit Hit) {
	c.hits = append(c.hits, hit)
}

func (c *HitChain) AddChain(other HitChain) {
	c.hits = append(c.hits, other.hits...)
}

func (c HitChain) Len() int {
	return len(c.hits)
}

func (c HitChain) Get(i int) Hit {
	return c.hits[i]
}

// Head returns the first reading of the chain.
func (c HitChain) Head() Hit {
	return c.hits[0]
}

func (c HitChain) Channel() int {
	return c.hits[0].Channel()
}

func (c HitChain) Board() int {
	return c.hits[0].Board()
}

func (c HitChain) Copy() HitChain {
	hits := make([]Hit, len(c.hits))
	copy(hits, c.hits)
	return HitChain{hits: hits}
}

func (c *HitChain) apply(fn func(*Hit)) {
	for i := range c.hits {
		fn(&c.hits[i])
	}
}
