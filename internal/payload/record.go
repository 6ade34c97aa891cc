package payload

import "strconv"

// Record is a flattened, normalized payload: canonical field names mapping
// to scalar values. A field that a schema expects but the record lacks is
// rendered as the empty placeholder when the record is serialized.
type Record map[string]any

// Has reports whether the field is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Text renders a field as a string, with "" for missing or null fields.
// Numbers render without a trailing ".0".
func (r Record) Text(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// StringPtr returns the field as a *string for normalizers that distinguish
// missing from empty: nil when absent.
func (r Record) StringPtr(key string) *string {
	if !r.Has(key) {
		return nil
	}
	s := r.Text(key)
	return &s
}

// OrderedValues serializes the record into the order given by schema,
// substituting "" for missing fields. Fields not named in the schema are
// dropped.
func (r Record) OrderedValues(schema []string) []string {
	vals := make([]string, len(schema))
	for i, key := range schema {
		vals[i] = r.Text(key)
	}
	return vals
}
