package mapred

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Row is one data row of a parsed job output: the key tuple and its total.
type Row struct {
	Fields []string
	Count  int64
}

// Output is a job's results split back into data rows and bookkeeping.
type Output struct {
	Rows       []Row
	Conditions map[string]int64
	// Counters maps group name to counter totals; ungrouped counters sit
	// under the empty group.
	Counters map[string]map[string]int64
}

// ParseOutput reads job output lines, separating data rows from counter and
// condition rows.
func ParseOutput(r io.Reader) (*Output, error) {
	out := &Output{
		Conditions: make(map[string]int64),
		Counters:   make(map[string]map[string]int64),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if line == "" {
			continue
		}
		keyPart, countPart, found := strings.Cut(line, "\t")
		if !found {
			return nil, fmt.Errorf("mapred: line %d: no count field", lineno)
		}
		count, err := strconv.ParseInt(countPart, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("mapred: line %d: bad count: %w", lineno, err)
		}
		fields, err := decodeKey(keyPart)
		if err != nil {
			return nil, fmt.Errorf("mapred: line %d: %w", lineno, err)
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("mapred: line %d: empty key", lineno)
		}

		switch fields[0] {
		case conditionMarker:
			if len(fields) != 2 {
				return nil, fmt.Errorf("mapred: line %d: malformed condition key", lineno)
			}
			out.Conditions[fields[1]] += count
		case counterMarker:
			if len(fields) != 3 {
				return nil, fmt.Errorf("mapred: line %d: malformed counter key", lineno)
			}
			group, name := fields[1], fields[2]
			if out.Counters[group] == nil {
				out.Counters[group] = make(map[string]int64)
			}
			out.Counters[group][name] += count
		default:
			out.Rows = append(out.Rows, Row{Fields: fields, Count: count})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mapred: reading output: %w", err)
	}
	return out, nil
}

// TaggedRows filters the data rows carrying the given leading tag, with the
// tag stripped.
func (o *Output) TaggedRows(tag string) []Row {
	var rows []Row
	for _, row := range o.Rows {
		if len(row.Fields) > 0 && row.Fields[0] == tag {
			rows = append(rows, Row{Fields: row.Fields[1:], Count: row.Count})
		}
	}
	return rows
}
