package mapred

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/samber/lo"
)

// Aggregator sums counts per key tuple. Keys are stored in their encoded
// line form so tuples compare by value. An Aggregator is not safe for
// concurrent use; the job runner gives each worker its own and merges them.
type Aggregator struct {
	counts map[string]int64
}

func NewAggregator() *Aggregator {
	return &Aggregator{counts: make(map[string]int64)}
}

// Add accumulates n under the key tuple.
func (a *Aggregator) Add(key []string, n int64) error {
	k, err := encodeKey(key)
	if err != nil {
		return err
	}
	a.counts[k] += n
	return nil
}

// Merge folds another aggregator's counts into this one.
func (a *Aggregator) Merge(other *Aggregator) {
	for k, n := range other.counts {
		a.counts[k] += n
	}
}

// Len reports the number of distinct keys.
func (a *Aggregator) Len() int { return len(a.counts) }

// WriteTo writes the totals in sorted key order, one "key<TAB>count" line
// each.
func (a *Aggregator) WriteTo(w io.Writer) (int64, error) {
	keys := lo.Keys(a.counts)
	sort.Strings(keys)

	var written int64
	bw := bufio.NewWriter(w)
	for _, k := range keys {
		n, err := fmt.Fprintf(bw, "%s\t%d\n", k, a.counts[k])
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("mapred: writing output: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("mapred: writing output: %w", err)
	}
	return written, nil
}
