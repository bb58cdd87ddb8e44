package face

// Result describes a single comparison.
type Result struct {
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
	Match     bool    `json:"match"`
}

// Matcher decides whether two descriptors belong to the same face.
type Matcher struct {
	Threshold float64
}

// NewMatcher returns a matcher; a non-positive threshold uses DefaultThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{Threshold: threshold}
}

// Match compares the stored descriptor with a probe. A match requires the
// distance to be strictly below the threshold.
func (m *Matcher) Match(stored, probe Descriptor) (Result, error) {
	dist, err := Distance(stored, probe)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Distance:  dist,
		Threshold: m.Threshold,
		Match:     dist < m.Threshold,
	}, nil
}
