package flexconf

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/go-flexconf/layering"
)

// Trace lists what every layer holds at one path, strongest layer first.
// The first entry with Found set is the effective value.
type Trace struct {
	Path   string       `json:"path"`
	Layers []Provenance `json:"layers"`
}

// Provenance is one layer's entry in a Trace.
type Provenance struct {
	Layer string  `json:"layer"`
	Kind  string  `json:"kind"`
	Score float64 `json:"score,omitempty"`
	Value any     `json:"value,omitempty"`
	Found bool    `json:"found"`
}

// Effective returns the provenance of the winning layer.
func (t Trace) Effective() (Provenance, bool) {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer, true
		}
	}
	return Provenance{}, false
}

// Shadowed returns the layers that also set the path but lost to the
// effective one, strongest first.
func (t Trace) Shadowed() []Provenance {
	var out []Provenance
	winner := true
	for _, layer := range t.Layers {
		if !layer.Found {
			continue
		}
		if winner {
			winner = false
			continue
		}
		out = append(out, layer)
	}
	return out
}

// ToJSON encodes the trace, as printed by flexconf trace --json.
func (t Trace) ToJSON() ([]byte, error) {
	return json.Marshal(t)
}

// TraceFromJSON decodes the output of ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	var trace Trace
	err := json.Unmarshal(payload, &trace)
	return trace, err
}

// Trace reports which layers set path (dot separated) and with what value.
func (r *Resolver) Trace(path string) (Trace, error) {
	if !r.loaded {
		return Trace{}, ErrNotLoaded
	}
	return r.traceSegments(r.store.Layers(), splitPath(path)), nil
}

// traceSegments looks segments up in every layer. Callers tracing many paths
// pass the same layers slice.
func (r *Resolver) traceSegments(layers []layering.Layer, segments []string) Trace {
	trace := Trace{
		Path:   strings.Join(segments, "."),
		Layers: make([]Provenance, 0, len(layers)),
	}
	for i, layer := range layers {
		value, found := r.store.Lookup(i, segments...)
		trace.Layers = append(trace.Layers, Provenance{
			Layer: layer.Name,
			Kind:  string(layer.Kind),
			Score: layer.Score,
			Value: value,
			Found: found,
		})
	}
	return trace
}
