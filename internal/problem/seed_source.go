package problem

import (
	"context"
	"math/rand/v2"
	"strings"
)

// SeedSource picks problems uniformly at random from the offline seed set.
// It never fails.
type SeedSource struct {
	intn func(n int) int
}

// NewSeedSource returns a SeedSource backed by the global random source.
func NewSeedSource() *SeedSource {
	return &SeedSource{intn: rand.IntN}
}

// NewSeedSourceWithRand returns a SeedSource that draws indices from r.
func NewSeedSourceWithRand(r *rand.Rand) *SeedSource {
	return &SeedSource{intn: r.IntN}
}

// Problem returns a seed problem for req.Primitive.
func (s *SeedSource) Problem(_ context.Context, req Request) (*Problem, error) {
	set := Seeds(Primitive(strings.ToUpper(req.Primitive)))
	p := set[s.intn(len(set))]
	return &p, nil
}
