package payload

import "strings"

// A recordHook patches a shaped record to repair a known device-specific
// reporting quirk. Hooks run in order after field normalization, so they see
// canonical device and OS names.
type recordHook struct {
	name  string
	apply func(Record)
}

// Devices shipping the Tarako build report a stock OS version instead of the
// 1.3T branch they actually run.
var tarakoPrefixes = []string{"Intex", "Spice", "Ace", "Zen"}

var recordHooks = []recordHook{
	{
		name: "tarako-os",
		apply: func(rec Record) {
			model := rec.Text("product_model")
			for _, p := range tarakoPrefixes {
				if strings.HasPrefix(model, p) {
					rec["os"] = "1.3T"
					return
				}
			}
		},
	},
	{
		// GoFox F15 units misreport their platform version.
		name: "gofox-os",
		apply: func(rec Record) {
			if strings.HasPrefix(rec.Text("product_model"), "GoFox") {
				rec["os"] = "1.4"
			}
		},
	},
}

func applyHooks(rec Record) {
	for _, h := range recordHooks {
		h.apply(rec)
	}
}
