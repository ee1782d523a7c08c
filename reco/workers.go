package main

import (
	"context"
	"fmt"
	"sync"

	reco "github.com/mmtb/tbreco/pkg"
	"golang.org/x/sync/errgroup"
)

// eventSource is satisfied by reco.EventReader.
type eventSource interface {
	Read(skip, maxEvents int, fn func(event *reco.EventHits) error) error
}

type workerData struct {
	seq   int
	event *reco.EventHits
}

type workerResult struct {
	seq    int
	result reco.EventResult
}

// Summary counts what happened to the events of a run.
type Summary struct {
	Read         int
	Discarded    int
	WithClusters int
	Fitted       int
	Duplicates   int
}

func (s *Summary) add(result *reco.EventResult) {
	s.Read++
	if result.Error {
		s.Discarded++
		return
	}
	if result.Clusters.Len() > 0 {
		s.WithClusters++
	}
	if result.Track.IsFit {
		s.Fitted++
	}
	s.Duplicates += result.NDuplicates
}

// processEvent never panics. A panicking event comes back with Error set.
func processEvent(r *reco.Reconstructor, event *reco.EventHits) (result reco.EventResult) {
	defer func() {
		if p := recover(); p != nil {
			errMessage := fmt.Errorf("reconstruction recovered from panic on event %d: %v", event.EventID, p)
			logger.Error(errMessage.Error())
			message := fmt.Sprintf("discarding event %d", event.EventID)
			logger.Error(message)
			result = reco.EventResult{EventID: event.EventID, Error: true}
		}
	}()
	return r.Process(event)
}

// runSequential reconstructs and hands over one event at a time.
func runSequential(source eventSource, skip, maxEvents int, r *reco.Reconstructor,
	sink func(result *reco.EventResult) error) error {
	return source.Read(skip, maxEvents, func(event *reco.EventHits) error {
		result := processEvent(r, event)
		return sink(&result)
	})
}

// runParallel spreads events over nWorkers reconstructors built by
// newReconstructor. sink is called from a single goroutine, in read order.
func runParallel(ctx context.Context, source eventSource, skip, maxEvents, nWorkers int,
	newReconstructor func() *reco.Reconstructor, sink func(result *reco.EventResult) error) error {
	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan workerData, nWorkers)
	results := make(chan workerResult, nWorkers)

	g.Go(func() error {
		defer close(jobs)
		seq := 0
		return source.Read(skip, maxEvents, func(event *reco.EventHits) error {
			select {
			case jobs <- workerData{seq: seq, event: event}:
				seq++
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	var wg sync.WaitGroup
	for id := 0; id < nWorkers; id++ {
		r := newReconstructor()
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for job := range jobs {
				if configuration.Verbosity > 2 {
					message := fmt.Sprintf("Worker %d processing event %d", id, job.event.EventID)
					logger.Info(message, "workers")
				}
				res := workerResult{seq: job.seq, result: processEvent(r, job.event)}
				select {
				case results <- res:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	g.Go(func() error {
		pending := make(map[int]reco.EventResult)
		next := 0
		for res := range results {
			pending[res.seq] = res.result
			for {
				result, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				if err := sink(&result); err != nil {
					return err
				}
				next++
			}
		}
		return nil
	})

	return g.Wait()
}
