package mapred

// AllValue is the rollup placeholder substituted for a field when counts are
// aggregated across that field's values.
const AllValue = "All"

// ExpandAll yields every rollup combination of the key tuple: for each
// subset of positions, a copy with those fields replaced by AllValue. The
// result has 2^len(fields) tuples, the original included, so that summing
// expanded counts gives marginal totals for every field combination.
func ExpandAll(fields []string) [][]string {
	combos := [][]string{append([]string(nil), fields...)}
	for i := range fields {
		grown := make([][]string, 0, len(combos)*2)
		for _, combo := range combos {
			grown = append(grown, combo)
			rolled := append([]string(nil), combo...)
			rolled[i] = AllValue
			grown = append(grown, rolled)
		}
		combos = grown
	}
	return combos
}

// WriteExpanded emits a count for the key tuple and every one of its rollup
// combinations.
func (c *Context) WriteExpanded(fields []string, n int64) {
	for _, combo := range ExpandAll(fields) {
		c.add(combo, n)
	}
}
