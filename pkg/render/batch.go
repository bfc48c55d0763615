package render

import (
	"context"
	"sync"

	"github.com/waymerge/waymerge/pkg/graph"
)

const workers = 4

// Frame names one drawing in a batch, for example one animation frame or
// one side of a before/after comparison.
type Frame struct {
	Name  string
	Graph *graph.Graph
	Opts  Options
}

type frameResult struct {
	name string
	data []byte
	err  error
}

// Frames renders a batch of graphs to SVG concurrently and returns the
// images keyed by frame name. The first render failure aborts the batch,
// as does context cancellation.
func Frames(ctx context.Context, frames []Frame) (map[string][]byte, error) {
	jobs := make(chan Frame)
	results := make(chan frameResult, len(frames))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				if ctx.Err() != nil {
					continue
				}
				data, err := SVG(ToDOT(f.Graph, f.Opts))
				results <- frameResult{name: f.Name, data: data, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range frames {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	out := make(map[string][]byte, len(frames))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		out[r.name] = r.data
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
