package chess

import (
	"math/rand"
	"time"
)

// Fallback picks a uniformly random legal move when the search has no
// opinion.
type Fallback struct {
	rand *rand.Rand
}

// NewFallback seeds from the clock when seed is 0.
func NewFallback(seed int64) *Fallback {
	f := &Fallback{}
	f.SetSeed(seed)
	return f
}

func (f *Fallback) SetSeed(seed int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f.rand = rand.New(rand.NewSource(seed))
}

func (f *Fallback) Choose(pos *Position) (Move, bool) {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return Move{}, false
	}
	return moves[f.rand.Intn(len(moves))], true
}
