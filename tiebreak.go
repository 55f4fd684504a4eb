package img2cell

import "math/rand/v2"

// TieBreak decides between candidates that score exactly the same.
// Choose returns an index in [0, n).
//
// The matcher keeps a running reservoir: when the k-th equal candidate
// turns up it replaces the current choice only if Choose(k) == k-1, so a
// uniform Choose picks every tied candidate with equal probability and a
// Choose that always returns 0 keeps the first.
type TieBreak interface {
	Choose(n int) int
}

// LowestIndex keeps the earliest candidate in enumeration order.
type LowestIndex struct{}

// Choose implements TieBreak.
func (LowestIndex) Choose(int) int { return 0 }

// SeededTieBreak picks uniformly among tied candidates from a seeded
// generator. It is not safe for concurrent use.
type SeededTieBreak struct {
	rng *rand.Rand
}

// NewSeededTieBreak returns a random tie-break whose sequence depends
// only on seed.
func NewSeededTieBreak(seed uint64) *SeededTieBreak {
	return &SeededTieBreak{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Choose implements TieBreak.
func (t *SeededTieBreak) Choose(n int) int {
	if n <= 1 {
		return 0
	}
	return t.rng.IntN(n)
}
