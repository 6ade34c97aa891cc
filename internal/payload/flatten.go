package payload

import (
	"github.com/dzeber/fxos-metrics/internal/format"
)

// screenRenames moves the screen sub-object into the flat namespace under
// its historical column names.
var screenRenames = map[string]string{
	"width":            "screenWidth",
	"height":           "screenHeight",
	"devicePixelRatio": "devicePixelRatio",
}

const deviceinfoPrefix = "deviceinfo."

// flatten converts a payload tree into a flat Record.
//
// The info sub-object has already been consumed by the consistency check, so
// only its geoCountry survives (as "country"). Keys carrying the
// "deviceinfo." prefix are renamed with the prefix stripped. The screen
// sub-object flattens under fixed names; any other sub-object flattens one
// level as "parent.child". A payload whose values are still nested after one
// flattening pass has a shape these rules do not know about, and is rejected
// rather than silently mishandled.
//
// Keys listed in skip are left out of the flat record entirely (they hold
// structured usage data handled separately).
func flatten(raw Value, skip map[string]bool) (Record, *format.Reject) {
	rec := Record{}

	for _, key := range raw.Keys() {
		if skip[key] {
			continue
		}
		val, _ := raw.Field(key)

		switch key {
		case "info":
			if geo, ok := val.Get("geoCountry"); ok && !geo.IsNull() {
				rec["country"] = geo.Text()
			}
			continue
		case "screen":
			if val.Kind() == Object {
				for _, sub := range val.Keys() {
					subVal, _ := val.Field(sub)
					name, ok := screenRenames[sub]
					if !ok {
						name = "screen." + sub
					}
					if rej := setFlat(rec, name, subVal); rej != nil {
						return nil, rej
					}
				}
				continue
			}
		}

		name := key
		if len(key) > len(deviceinfoPrefix) && key[:len(deviceinfoPrefix)] == deviceinfoPrefix {
			name = key[len(deviceinfoPrefix):]
		}

		if val.Kind() == Object {
			for _, sub := range val.Keys() {
				subVal, _ := val.Field(sub)
				if rej := setFlat(rec, name+"."+sub, subVal); rej != nil {
					return nil, rej
				}
			}
			continue
		}
		if rej := setFlat(rec, name, val); rej != nil {
			return nil, rej
		}
	}

	return rec, nil
}

// setFlat stores a scalar leaf, dropping nulls and rejecting residual
// nesting.
func setFlat(rec Record, name string, val Value) *format.Reject {
	switch val.Kind() {
	case Object:
		return &format.Reject{Reason: format.ResidualNesting}
	case Null:
		return nil
	case Array:
		// Arrays never appear in these payloads outside the skipped
		// usage sections; treat one as an unknown shape.
		return &format.Reject{Reason: format.ResidualNesting}
	case String:
		str, _ := val.Str()
		rec[name] = str
	case Number:
		num, _ := val.Num()
		rec[name] = num
	case Bool:
		b, _ := val.Boolean()
		rec[name] = b
	}
	return nil
}
