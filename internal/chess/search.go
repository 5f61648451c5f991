package chess

import (
	"context"
	"time"
)

// Infinity bounds every reachable evaluation.
const Infinity = 1 << 30

// Result is a score with the move achieving it. Found is false at leaves,
// after a cutoff before any move was searched, and when no move exists.
type Result struct {
	Score int
	Move  Move
	Found bool
}

type Searcher struct {
	eval  Evaluator
	now   func() time.Time
	nodes int
}

type SearchOption func(*Searcher)

func WithEvaluator(e Evaluator) SearchOption {
	return func(s *Searcher) {
		if e != nil {
			s.eval = e
		}
	}
}

// WithClock replaces time.Now for the elapsed-time check.
func WithClock(now func() time.Time) SearchOption {
	return func(s *Searcher) {
		if now != nil {
			s.now = now
		}
	}
}

func NewSearcher(opts ...SearchOption) *Searcher {
	s := &Searcher{eval: Evaluate, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Nodes returns the node count of the last Search.
func (s *Searcher) Nodes() int { return s.nodes }

// Search runs a full-window alpha-beta search for the side to move. pos is
// used as the working board and is restored before Search returns.
func (s *Searcher) Search(ctx context.Context, pos *Position, b Budget) Result {
	s.nodes = 0
	return s.AlphaBeta(ctx, pos, b.Depth, -Infinity, Infinity, pos.WhiteToMove(), s.now(), b.TimeLimit, b.Timed)
}

// AlphaBeta is minimax with alpha-beta pruning; maximizing is true for
// White. limit applies only when timed is set. The time limit and ctx are
// only checked on node entry, so a search may overrun the limit by the cost
// of the subtree in progress.
func (s *Searcher) AlphaBeta(ctx context.Context, pos *Position, depth, alpha, beta int, maximizing bool, start time.Time, limit time.Duration, timed bool) Result {
	s.nodes++
	if s.expired(ctx, start, limit, timed) {
		return Result{Score: s.eval(pos)}
	}
	if depth <= 0 || pos.GameOver() {
		return Result{Score: s.eval(pos)}
	}

	best := Result{Score: Infinity}
	if maximizing {
		best.Score = -Infinity
	}
	for _, mv := range pos.LegalMoves() {
		undo := pos.Apply(mv)
		child := s.AlphaBeta(ctx, pos, depth-1, alpha, beta, !maximizing, start, limit, timed)
		undo()

		// strict comparison: the first move reaching a score keeps it
		if maximizing {
			if child.Score > best.Score {
				best = Result{Score: child.Score, Move: mv, Found: true}
			}
			alpha = max(alpha, child.Score)
		} else {
			if child.Score < best.Score {
				best = Result{Score: child.Score, Move: mv, Found: true}
			}
			beta = min(beta, child.Score)
		}
		if beta <= alpha {
			break
		}
	}
	return best
}

func (s *Searcher) expired(ctx context.Context, start time.Time, limit time.Duration, timed bool) bool {
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	return timed && s.now().Sub(start) > limit
}
