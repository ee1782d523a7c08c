package reco

import "fmt"

// ClusterAlgo builds the clusters of a single board.
type ClusterAlgo interface {
	Cluster(hits *BoardHits) ClusterList
}

// IsGoodHit selects fully calibrated physics readings. The trigger strip is
// always rejected.
func IsGoodHit(hit Hit) bool {
	switch {
	case !hit.IsChargeCalib(), !hit.IsTimeCalib():
		return false
	case hit.BoardIndex() < 0:
		return false
	case hit.PDO() < 0, hit.TDO() < 0:
		return false
	case hit.Charge() < 0:
		return false
	case hit.Channel() == TriggerChannel:
		return false
	}
	return true
}

// PacmanAlgo is a greedy window clustering. A forward pass opens a cluster on
// every strip above the seed threshold and eats the following strips above the
// hit threshold as long as they are within ClusterSize channels of the last
// accepted one. A backward pass then extends each cluster towards lower
// channels until it meets a strip already claimed by another cluster.
type PacmanAlgo struct {
	clusterSize   int
	seedThreshold float64
	hitThreshold  float64
	goodHits      int
}

const (
	DefaultClusterSize   = 5
	DefaultSeedThreshold = 10.
	DefaultHitThreshold  = 2.
)

func NewPacmanAlgo(clusterSize int, seedThreshold, hitThreshold float64) *PacmanAlgo {
	p := &PacmanAlgo{
		clusterSize:   DefaultClusterSize,
		seedThreshold: seedThreshold,
		hitThreshold:  hitThreshold,
	}
	p.SetClusterSize(clusterSize)
	return p
}

// SetClusterSize ignores values below one.
func (p *PacmanAlgo) SetClusterSize(size int) {
	if size >= 1 {
		p.clusterSize = size
	}
}

func (p *PacmanAlgo) SetSeedThreshold(thresh float64) { p.seedThreshold = thresh }
func (p *PacmanAlgo) SetHitThreshold(thresh float64)  { p.hitThreshold = thresh }
func (p *PacmanAlgo) ClusterSize() int                { return p.clusterSize }
func (p *PacmanAlgo) SeedThreshold() float64          { return p.seedThreshold }
func (p *PacmanAlgo) HitThreshold() float64           { return p.hitThreshold }

// GoodHits is the number of readings that passed IsGoodHit in the last call
// to Cluster.
func (p *PacmanAlgo) GoodHits() int {
	return p.goodHits
}

func (p *PacmanAlgo) Cluster(hits *BoardHits) ClusterList {
	var clusters ClusterList
	p.goodHits = 0

	// forward step
	n := hits.Len()
	for i := 0; i < n; i++ {
		seed := hits.Get(i)
		if !IsGoodHit(seed.Head()) {
			continue
		}
		p.goodHits++
		if seed.Head().Charge() < p.seedThreshold {
			continue
		}

		cluster := NewCluster(seed)
		lastChannel := seed.Channel()
		for j := i + 1; j < n; j++ {
			next := hits.Get(j)
			if !IsGoodHit(next.Head()) {
				continue
			}
			if next.Channel() > lastChannel+p.clusterSize {
				break
			}
			// consumed strips are never looked at again as seeds
			i = j
			p.goodHits++
			if next.Head().Charge() >= p.hitThreshold {
				cluster.AddChain(next)
				lastChannel = next.Channel()
			}
		}
		clusters.Add(cluster)
	}

	// backward step
	for c := 0; c < clusters.Len(); c++ {
		first := clusters.Get(c).Get(0)
		i := hits.Index(first.Head())
		firstChannel := first.Channel()
		for j := i - 1; j >= 0; j-- {
			prev := hits.Get(j)
			if !IsGoodHit(prev.Head()) {
				continue
			}
			if clusters.Contains(prev.Head()) {
				break
			}
			if prev.Channel() < firstChannel-p.clusterSize {
				break
			}
			if prev.Head().Charge() >= p.hitThreshold {
				clusters.AddChain(prev, c)
				firstChannel = prev.Channel()
			}
		}
	}
	clusters.Sort()

	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("board %d: %d good hits, %d clusters", hits.Board(), p.goodHits, clusters.Len())
		logger.Info(message, "pacman")
	}
	return clusters
}
