package format

// RejectReason classifies why a record or ping was excluded or flagged.
// Hard rejects drop the record from output; Overlap and NegligibleOverlap
// only annotate kept pings. Every reason maps to a condition name counted in
// the job diagnostics.
type RejectReason int

const (
	MissingField RejectReason = iota
	OutOfRange
	InvalidFormat
	Inconsistent
	ResidualNesting
	MultipleConflictingRecords
	ClockSkew
	Nested
	Overlap
	NegligibleOverlap
)

var reasonConditions = map[RejectReason]string{
	MissingField:               "missing field",
	OutOfRange:                 "outside date range",
	InvalidFormat:              "invalid format",
	Inconsistent:               "inconsistent",
	ResidualNesting:            "multiple nesting",
	MultipleConflictingRecords: "multiple",
	ClockSkew:                  "clockskew",
	Nested:                     "nested",
	Overlap:                    "overlap",
	NegligibleOverlap:          "negligibleoverlap",
}

func (r RejectReason) String() string {
	if s, ok := reasonConditions[r]; ok {
		return s
	}
	return "unknown"
}

// Reject carries a classification and an optional more specific condition
// string for diagnostics (e.g. "no ping time" rather than the generic
// "missing field").
type Reject struct {
	Reason RejectReason
	Detail string
}

// Condition returns the diagnostic condition name to count for this reject.
func (r *Reject) Condition() string {
	if r.Detail != "" {
		return r.Detail
	}
	return r.Reason.String()
}

func rejectf(reason RejectReason, detail string) *Reject {
	return &Reject{Reason: reason, Detail: detail}
}
