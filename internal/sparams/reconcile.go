package sparams

import (
	"gonum.org/v1/gonum/floats"
)

// Reconciler holds the reference frequency grid of a run. The first file
// observed defines the grid; every later file is compared against it by exact
// numeric equality. The policy is order-sensitive: which file comes
// first decides which files are later excluded.
type Reconciler struct {
	reference     []float64
	referenceFile string
	mismatches    []FrequencyMismatch
}

// NewReconciler returns a Reconciler with no reference grid.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Observe compares file's grid with the reference, setting the reference if
// none exists yet. It reports whether the grid conforms.
func (r *Reconciler) Observe(file string, grid []float64) bool {
	if r.reference == nil {
		r.reference = make([]float64, len(grid))
		copy(r.reference, grid)
		r.referenceFile = file
		return true
	}
	if floats.Equal(r.reference, grid) {
		return true
	}
	r.mismatches = append(r.mismatches, FrequencyMismatch{File: file, Reference: r.referenceFile})
	return false
}

// HasReference reports whether any file has been observed.
func (r *Reconciler) HasReference() bool {
	return r.reference != nil
}

// Reference returns a copy of the reference grid.
func (r *Reconciler) Reference() []float64 {
	if r.reference == nil {
		return nil
	}
	out := make([]float64, len(r.reference))
	copy(out, r.reference)
	return out
}

// ReferenceFile names the file that defined the reference grid.
func (r *Reconciler) ReferenceFile() string {
	return r.referenceFile
}

// Mismatches returns the warnings raised so far, in observation order.
func (r *Reconciler) Mismatches() []FrequencyMismatch {
	return append([]FrequencyMismatch(nil), r.mismatches...)
}
