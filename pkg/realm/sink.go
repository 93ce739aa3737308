package realm

import "github.com/dna-dev/dna/pkg/vdom"

// Sink receives the patches produced by each reconciliation.
type Sink interface {
	Apply(patches []vdom.Patch) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(patches []vdom.Patch) error

// Apply calls f(patches).
func (f SinkFunc) Apply(patches []vdom.Patch) error {
	return f(patches)
}

type discard struct{}

func (discard) Apply([]vdom.Patch) error { return nil }

// Discard is a Sink that drops every patch.
var Discard Sink = discard{}

// Recorder is a Sink that keeps every batch of patches it receives.
type Recorder struct {
	Batches [][]vdom.Patch

	// Err, when set, is returned from Apply instead of recording.
	Err error
}

// Apply records patches.
func (r *Recorder) Apply(patches []vdom.Patch) error {
	if r.Err != nil {
		return r.Err
	}
	batch := make([]vdom.Patch, len(patches))
	copy(batch, patches)
	r.Batches = append(r.Batches, batch)
	return nil
}

// Patches returns every recorded patch in order.
func (r *Recorder) Patches() []vdom.Patch {
	var all []vdom.Patch
	for _, b := range r.Batches {
		all = append(all, b...)
	}
	return all
}

// Ops returns the operation of every recorded patch in order.
func (r *Recorder) Ops() []vdom.PatchOp {
	var ops []vdom.PatchOp
	for _, p := range r.Patches() {
		ops = append(ops, p.Op)
	}
	return ops
}

// Reset drops all recorded batches.
func (r *Recorder) Reset() {
	r.Batches = nil
}
