// Package warning defines the append-only diagnostic taxonomy emitted by
// every pipeline stage (§6 warning taxonomy). Warnings never abort a
// decompile; they record best-effort degradation.
package warning

import "fmt"

// Kind names one warning category from the taxonomy.
type Kind string

// Warning kinds.
const (
	UnknownOpcode           Kind = "unknown_opcode"
	NativeMethodNotFound    Kind = "native_method_not_found"
	StackUnderflow          Kind = "stack_underflow"
	SlotCapacityExceeded    Kind = "slot_capacity_exceeded"
	StructuredRecoveryFallback Kind = "structured_recovery_fallback"
	AnalysisLimitExceeded   Kind = "analysis_limit_exceeded"
)

// Warning is one diagnostic entry with loosely-typed, kind-specific
// fields (offset, byte, contract, method, label, stage...). Fields are
// plain strings/ints so the whole pipeline can append them without
// depending on a shared schema type.
type Warning struct {
	Kind   Kind
	Fields map[string]any
}

// New builds a Warning with the given fields.
func New(kind Kind, fields map[string]any) Warning {
	return Warning{Kind: kind, Fields: fields}
}

// String renders a compact, log-friendly form: "kind{k=v, k=v}".
func (w Warning) String() string {
	s := string(w.Kind)
	if len(w.Fields) == 0 {
		return s
	}
	s += "{"
	first := true
	for _, k := range orderedKeys(w.Fields) {
		if !first {
			s += ", "
		}
		first = false
		s += fmt.Sprintf("%s=%v", k, w.Fields[k])
	}
	s += "}"
	return s
}

// orderedKeys returns Fields' keys in a fixed, deterministic order
// (insertion order is not preserved by Go maps, and §8 property 8 requires
// decompile() to be fully deterministic byte-for-byte).
func orderedKeys(m map[string]any) []string {
	// Small, fixed universe of field names across all warning kinds; a
	// stable preference order keeps String() deterministic without
	// needing a sort import for what is always a tiny map.
	preferred := []string{"offset", "byte", "stage", "contract", "method", "kind", "index", "label"}
	seen := make(map[string]bool, len(m))
	var out []string
	for _, k := range preferred {
		if _, ok := m[k]; ok {
			out = append(out, k)
			seen[k] = true
		}
	}
	for k := range m {
		if !seen[k] {
			out = append(out, k)
		}
	}
	return out
}

// List is an append-only collection threaded through the pipeline.
type List []Warning

// Append records a new warning and returns the extended list (mirrors the
// append-only discipline of §5: never mutate in place from outside the
// owning stage, never share across decompiles).
func (l List) Append(w Warning) List {
	return append(l, w)
}
