// Package vectorizer maps text to fixed-width feature vectors by hashing.
package vectorizer

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf16"
)

// ErrInvalidInput is returned when Transform is called without documents
var ErrInvalidInput = errors.New("vectorizer: no documents to transform")

// Norm selects the normalization applied to the output vector
type Norm string

const (
	NormNone Norm = ""
	NormL1   Norm = "l1"
	NormL2   Norm = "l2"
)

// DefaultFeatures is the width used when none is configured
const DefaultFeatures = 256

// HashingVectorizer converts documents to vectors without a vocabulary.
// Each document is hashed as a whole with StringHash.
type HashingVectorizer struct {
	nFeatures     int
	norm          Norm
	alternateSign bool
	binary        bool
}

// Option configures a HashingVectorizer
type Option func(*HashingVectorizer)

// WithNorm sets the normalization mode. Unrecognised values disable normalization.
func WithNorm(norm Norm) Option {
	return func(v *HashingVectorizer) { v.norm = norm }
}

// WithAlternateSign gives each feature the sign of its raw hash remainder
func WithAlternateSign(enabled bool) Option {
	return func(v *HashingVectorizer) { v.alternateSign = enabled }
}

// WithBinary sets touched features to 1 instead of accumulating magnitudes
func WithBinary(enabled bool) Option {
	return func(v *HashingVectorizer) { v.binary = enabled }
}

// New creates a vectorizer producing nFeatures-wide vectors, l2-normalized
// unless configured otherwise
func New(nFeatures int, opts ...Option) (*HashingVectorizer, error) {
	if nFeatures <= 0 {
		return nil, fmt.Errorf("vectorizer: feature count must be positive, got %d", nFeatures)
	}
	v := &HashingVectorizer{
		nFeatures: nFeatures,
		norm:      NormL2,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Features returns the output width
func (v *HashingVectorizer) Features() int {
	return v.nFeatures
}

// Transform hashes docs into a single vector of Features() entries
func (v *HashingVectorizer) Transform(docs []string) ([]float64, error) {
	if len(docs) == 0 {
		return nil, ErrInvalidInput
	}

	out := make([]float64, v.nFeatures)
	for _, doc := range docs {
		rem := StringHash(doc) % int32(v.nFeatures)
		bucket := int(rem)
		if bucket < 0 {
			bucket = -bucket
		}

		if v.binary {
			out[bucket] = 1
			continue
		}

		value := float64(bucket)
		if v.alternateSign && rem < 0 {
			value = -value
		}
		out[bucket] += value
	}

	switch v.norm {
	case NormL1:
		var sum float64
		for _, x := range out {
			sum += x
		}
		if sum != 0 {
			for i := range out {
				out[i] /= sum
			}
		}
	case NormL2:
		var sumSq float64
		for _, x := range out {
			sumSq += x * x
		}
		if sumSq != 0 {
			n := math.Sqrt(sumSq)
			for i := range out {
				out[i] /= n
			}
		}
	}

	return out, nil
}

// Float32 converts a vector to the precision the model expects
func Float32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, x := range vec {
		out[i] = float32(x)
	}
	return out
}

// StringHash is the 32-bit polynomial hash s[0]*31^(n-1) + ... + s[n-1]
// computed over the UTF-16 code units of s with wrapping arithmetic. The
// bucket layout of trained models depends on it, so it must not change.
func StringHash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	return h
}
