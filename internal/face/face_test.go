package face

import (
	"errors"
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	d, err := Distance(Descriptor{0, 0}, Descriptor{3, 4})
	if err != nil {
		t.Fatalf("distance error: %v", err)
	}
	if d != 5 {
		t.Fatalf("expected 5, got %v", d)
	}

	if _, err := Distance(Descriptor{1, 2}, Descriptor{1}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
	if _, err := Distance(nil, Descriptor{1}); !errors.Is(err, ErrEmptyDescriptor) {
		t.Fatalf("expected empty descriptor error, got %v", err)
	}
}

func TestMatcherThreshold(t *testing.T) {
	m := NewMatcher(0)
	if m.Threshold != DefaultThreshold {
		t.Fatalf("expected default threshold, got %v", m.Threshold)
	}

	stored := Descriptor{0.1, 0.2, 0.3}
	res, err := m.Match(stored, Descriptor{0.1, 0.2, 0.3})
	if err != nil || !res.Match {
		t.Fatalf("identical descriptors should match: %+v %v", res, err)
	}

	// Exactly at the threshold is not a match.
	res, err = NewMatcher(0.5).Match(Descriptor{0}, Descriptor{0.5})
	if err != nil {
		t.Fatalf("match error: %v", err)
	}
	if res.Match {
		t.Fatalf("distance equal to threshold must not match: %+v", res)
	}

	res, _ = NewMatcher(1).Match(Descriptor{0}, Descriptor{0.5})
	if !res.Match {
		t.Fatalf("expected match under a looser threshold")
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("[0.5, -0.25, 1]")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(d) != 3 || d[1] != -0.25 {
		t.Fatalf("unexpected descriptor %v", d)
	}
	if d.String() != "[0.5,-0.25,1]" {
		t.Fatalf("unexpected encoding %s", d.String())
	}

	if _, err := Parse(`{"a":1}`); !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("expected invalid descriptor, got %v", err)
	}
	if _, err := Parse("[]"); !errors.Is(err, ErrEmptyDescriptor) {
		t.Fatalf("expected empty descriptor, got %v", err)
	}
	if err := (Descriptor{math.NaN()}).Validate(); !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("expected NaN to be rejected, got %v", err)
	}
}
