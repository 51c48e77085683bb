package features

// FeatureVector is an immutable, ordered set of named features.
type FeatureVector struct {
	names  []string
	values []float64
}

// NewFeatureVector copies names and values into a vector. Lengths must match.
func NewFeatureVector(names []string, values []float64) FeatureVector {
	if len(names) != len(values) {
		panic("features: names and values length mismatch")
	}
	n := make([]string, len(names))
	v := make([]float64, len(values))
	copy(n, names)
	copy(v, values)
	return FeatureVector{names: n, values: v}
}

// Len returns the number of features.
func (f FeatureVector) Len() int { return len(f.values) }

// Names returns a copy of the feature names in order.
func (f FeatureVector) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Values returns a copy of the feature values in order.
func (f FeatureVector) Values() []float64 {
	out := make([]float64, len(f.values))
	copy(out, f.values)
	return out
}

// Get returns the value of a named feature.
func (f FeatureVector) Get(name string) (float64, bool) {
	for i, n := range f.names {
		if n == name {
			return f.values[i], true
		}
	}
	return 0, false
}

// Map returns the features keyed by name.
func (f FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, len(f.names))
	for i, n := range f.names {
		out[n] = f.values[i]
	}
	return out
}
