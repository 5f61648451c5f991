package chess

import nchess "github.com/corentings/chess/v2"

// pieceValues are in engine units: a pawn is worth 10.
var pieceValues = map[nchess.PieceType]int{
	nchess.Pawn:   10,
	nchess.Knight: 30,
	nchess.Bishop: 30,
	nchess.Rook:   50,
	nchess.Queen:  90,
	nchess.King:   900,
}

// Evaluator scores a position, positive favouring White.
type Evaluator func(p *Position) int

// Evaluate sums static material: White pieces add, Black pieces subtract.
func Evaluate(p *Position) int {
	score := 0
	p.Pieces(func(_ nchess.Square, pc nchess.Piece) {
		v := pieceValues[pc.Type()]
		if pc.Color() == nchess.White {
			score += v
		} else {
			score -= v
		}
	})
	return score
}
