package reco

import (
	"math"
	"sort"

	"golang.org/x/exp/slices"
)

// Cluster is a group of neighbouring strips on one board attributed to a
// single particle crossing. Gaps between member strips are allowed.
type Cluster struct {
	BoardHits
}

func NewCluster(chain HitChain) Cluster {
	var c Cluster
	c.AddChain(chain)
	return c
}

// Charge is the summed charge of the first reading on every member strip.
func (c *Cluster) Charge() float64 {
	q := 0.0
	for _, chain := range c.chains {
		q += chain.Head().Charge()
	}
	return q
}

// Channel is the charge-weighted mean strip number. Without charge it falls
// back to the plain mean, and an empty cluster sits on strip 0.
func (c *Cluster) Channel() float64 {
	if len(c.chains) == 0 {
		return 0
	}
	ch, mean := 0.0, 0.0
	for _, chain := range c.chains {
		head := chain.Head()
		ch += float64(head.Channel()) * head.Charge()
		mean += float64(head.Channel())
	}
	if q := c.Charge(); q > 0 {
		return ch / q
	}
	return mean / float64(len(c.chains))
}

// ChannelUnc parameterises the strip resolution as a function of the track
// slope.
func (c *Cluster) ChannelUnc(slope float64) float64 {
	return 0.24 + 1.15*math.Pow(slope, 2)
}

// NHoles counts the strips missing between the first and last member.
func (c *Cluster) NHoles() int {
	n := len(c.chains)
	if n == 0 {
		return 0
	}
	size := c.chains[n-1].Channel() - c.chains[0].Channel() + 1
	return size - n
}

func (c *Cluster) Chip() int {
	return int(c.Channel()) / ChannelsPerChip
}

func (c *Cluster) Copy() Cluster {
	return Cluster{BoardHits: c.BoardHits.Copy()}
}

// ClusterList keeps clusters ordered by decreasing charge. Clusters of equal
// charge stay in insertion order.
type ClusterList struct {
	clusters []Cluster
}

func (l *ClusterList) Add(c Cluster) {
	q := c.Charge()
	i := sort.Search(len(l.clusters), func(i int) bool {
		return l.clusters[i].Charge() < q
	})
	l.clusters = slices.Insert(l.clusters, i, c.Copy())
}

// Merge adds every cluster of other.
func (l *ClusterList) Merge(other ClusterList) {
	for i := range other.clusters {
		l.Add(other.clusters[i])
	}
}

// AddChain links chain into the i-th cluster. Out of range indices are ignored.
// The list order is not updated; call Sort once the clusters are final.
func (l *ClusterList) AddChain(chain HitChain, i int) {
	if i < 0 || i >= len(l.clusters) {
		return
	}
	l.clusters[i].AddChain(chain)
}

// Sort restores the decreasing charge order, keeping ties in place.
func (l *ClusterList) Sort() {
	slices.SortStableFunc(l.clusters, func(a, b Cluster) int {
		qa, qb := a.Charge(), b.Charge()
		switch {
		case qa > qb:
			return -1
		case qa < qb:
			return 1
		}
		return 0
	})
}

func (l *ClusterList) Len() int {
	return len(l.clusters)
}

func (l *ClusterList) Get(i int) *Cluster {
	return &l.clusters[i]
}

// Contains reports whether any cluster already holds hit's strip.
func (l *ClusterList) Contains(hit Hit) bool {
	for i := range l.clusters {
		if l.clusters[i].Contains(hit) {
			return true
		}
	}
	return false
}

// NDuplicates counts clusters holding at least one duplicated strip.
func (l *ClusterList) NDuplicates() int {
	n := 0
	for i := range l.clusters {
		if l.clusters[i].NDuplicates() > 0 {
			n++
		}
	}
	return n
}

func (l *ClusterList) Copy() ClusterList {
	clusters := make([]Cluster, len(l.clusters))
	for i := range l.clusters {
		clusters[i] = l.clusters[i].Copy()
	}
	return ClusterList{clusters: clusters}
}

func (l *ClusterList) Reset() {
	l.clusters = nil
}
