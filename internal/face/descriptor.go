// Package face compares face descriptors, the fixed-length embeddings a
// browser-side recognizer produces for a face. The server never sees
// images; it only stores one descriptor per user and measures the
// Euclidean distance to the descriptor sent with a login.
package face

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyDescriptor   = errors.New("face descriptor is empty")
	ErrDimensionMismatch = errors.New("face descriptors differ in length")
	ErrInvalidDescriptor = errors.New("face descriptor is not a numeric array")
)

// DefaultThreshold is the distance below which two descriptors are treated
// as the same face.
const DefaultThreshold = 0.6

// Descriptor is a face embedding.
type Descriptor []float64

// Parse decodes a JSON array of numbers.
func Parse(raw string) (Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate rejects empty descriptors and non-finite components.
func (d Descriptor) Validate() error {
	if len(d) == 0 {
		return ErrEmptyDescriptor
	}
	for _, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidDescriptor
		}
	}
	return nil
}

// String encodes the descriptor the way it is stored.
func (d Descriptor) String() string {
	b, _ := json.Marshal([]float64(d))
	return string(b)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Descriptor) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyDescriptor
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}
