package mapred

// Context is the emit surface handed to a job's mapper. All emissions land
// in the worker's own aggregator.
type Context struct {
	agg *Aggregator
	err error
}

func newContext(agg *Aggregator) *Context {
	return &Context{agg: agg}
}

func (c *Context) add(key []string, n int64) {
	if c.err != nil {
		return
	}
	c.err = c.agg.Add(key, n)
}

// WriteDatum emits a unit count for one data key tuple.
func (c *Context) WriteDatum(fields ...string) {
	c.add(fields, 1)
}

// WriteTagged emits a unit count for a data tuple under a leading type tag,
// used by jobs that interleave several row shapes in one output.
func (c *Context) WriteTagged(tag string, fields ...string) {
	key := make([]string, 0, len(fields)+1)
	key = append(key, tag)
	key = append(key, fields...)
	c.add(key, 1)
}

// AddTagged emits an arbitrary count for a tagged data tuple.
func (c *Context) AddTagged(tag string, fields []string, n int64) {
	key := make([]string, 0, len(fields)+1)
	key = append(key, tag)
	key = append(key, fields...)
	c.add(key, n)
}

// IncrementCounter bumps a named diagnostic counter. Group may be empty for
// ungrouped counters.
func (c *Context) IncrementCounter(name, group string, n int64) {
	c.add([]string{counterMarker, group, name}, n)
}

// WriteCondition records one occurrence of a record disposition, such as a
// rejection reason.
func (c *Context) WriteCondition(condition string) {
	c.add([]string{conditionMarker, condition}, 1)
}

// Err reports the first emission failure, if any.
func (c *Context) Err() error { return c.err }
