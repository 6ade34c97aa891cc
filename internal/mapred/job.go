package mapred

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"sync"
)

// Mapper processes one input record, emitting counts through the context.
// Mappers run concurrently and must not share mutable state.
type Mapper func(rec InputRecord, ctx *Context)

// maxLineBytes bounds a single dump line. Payloads are small, but app-usage
// submissions can carry months of per-app history.
const maxLineBytes = 16 << 20

// Run streams newline-delimited records from r through a pool of mapper
// workers and returns the merged counts. Malformed lines are counted under
// the "bad_input_line" counter rather than failing the job.
func Run(ctx context.Context, r io.Reader, workers int, mapper Mapper) (*Aggregator, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	lines := make(chan []byte, workers*4)
	aggs := make([]*Aggregator, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		agg := NewAggregator()
		aggs[i] = agg
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			emit := newContext(agg)
			for line := range lines {
				var rec InputRecord
				if err := json.Unmarshal(line, &rec); err != nil {
					emit.IncrementCounter("bad_input_line", "", 1)
					continue
				}
				mapper(rec, emit)
			}
			errs[i] = emit.Err()
		}(i)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)

	var scanErr error
scan:
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		line := append([]byte(nil), scanner.Bytes()...)
		select {
		case lines <- line:
		case <-ctx.Done():
			scanErr = ctx.Err()
			break scan
		}
	}
	close(lines)
	wg.Wait()

	if scanErr == nil {
		scanErr = scanner.Err()
	}
	if scanErr != nil {
		return nil, fmt.Errorf("mapred: reading input: %w", scanErr)
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := NewAggregator()
	for _, agg := range aggs {
		merged.Merge(agg)
	}
	return merged, nil
}
