package worker

import (
	"context"
	"sync"
)

// FetchFunc resolves a single zone identifier, typically by warming a
// geometry cache. Failures are the fetcher's problem; the pool ignores
// them.
type FetchFunc func(ctx context.Context, zoneID string)

// Pool fans zone lookups out to a fixed number of goroutines. A pool is
// built fresh for each aggregation cycle: submit every zone, then Wait.
type Pool struct {
	jobs chan string
	wg   sync.WaitGroup
}

func NewPool(ctx context.Context, numWorkers int, fetch FetchFunc) *Pool {
	p := &Pool{jobs: make(chan string)}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for zoneID := range p.jobs {
				if ctx.Err() != nil {
					continue // drain remaining jobs without fetching
				}
				fetch(ctx, zoneID)
			}
		}()
	}
	return p
}

func (p *Pool) Submit(zoneID string) {
	p.jobs <- zoneID
}

// Wait closes the job channel and blocks until every submitted zone has
// been processed and all workers have exited.
func (p *Pool) Wait() {
	close(p.jobs)
	p.wg.Wait()
}
