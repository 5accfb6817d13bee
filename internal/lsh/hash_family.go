package lsh

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/ludo-technologies/lshclust/domain"
)

// HashFunction maps a vector to one component of a band key
type HashFunction interface {
	Hash(v []float64) int64
}

// HashFunc adapts an ordinary function to HashFunction
type HashFunc func(v []float64) int64

// Hash calls f(v)
func (f HashFunc) Hash(v []float64) int64 { return f(v) }

// hyperplaneHash returns which side of a random hyperplane through the origin v lies on
type hyperplaneHash struct {
	normal []float64
}

func (h *hyperplaneHash) Hash(v []float64) int64 {
	if floats.Dot(h.normal, v) >= 0 {
		return 1
	}
	return 0
}

// pstableHash implements floor((a·v + b) / w) with Gaussian a and b uniform in [0, w)
type pstableHash struct {
	a      []float64
	offset float64
	width  float64
}

func (h *pstableHash) Hash(v []float64) int64 {
	return int64(math.Floor((floats.Dot(h.a, v) + h.offset) / h.width))
}

// generateHashFunctions draws n functions of the given family from a seeded source.
// Coefficients are drawn in a fixed order so equal seeds give equal functions.
func generateHashFunctions(family domain.HashFamily, n, dim int, seed int64, width float64) ([]HashFunction, error) {
	rng := rand.New(rand.NewSource(seed))
	fns := make([]HashFunction, n)

	switch family {
	case domain.HashFamilyHyperplane, "":
		for i := 0; i < n; i++ {
			fns[i] = &hyperplaneHash{normal: gaussianVector(rng, dim)}
		}
	case domain.HashFamilyPStable:
		if width <= 0 {
			return nil, domain.NewConfigurationError("bucket width must be > 0 for the pstable family, got %g", width)
		}
		for i := 0; i < n; i++ {
			a := gaussianVector(rng, dim)
			fns[i] = &pstableHash{a: a, offset: rng.Float64() * width, width: width}
		}
	default:
		return nil, domain.NewConfigurationError("unknown hash family '%s', must be one of: hyperplane, pstable", family)
	}

	return fns, nil
}

func gaussianVector(rng *rand.Rand, dim int) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	return v
}
