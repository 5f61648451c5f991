package chess

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

var (
	ErrInvalidFEN    = errors.New("invalid fen")
	ErrMalformedMove = errors.New("malformed move")
	ErrIllegalMove   = errors.New("illegal move")
)

// Move identifies a single ply. The zero value is not a valid move.
type Move struct {
	m nchess.Move
}

func (m Move) From() nchess.Square         { return m.m.S1() }
func (m Move) To() nchess.Square           { return m.m.S2() }
func (m Move) Promotion() nchess.PieceType { return m.m.Promo() }

// UCI returns coordinate notation, e.g. e2e4 or e7e8q.
func (m Move) UCI() string {
	return m.From().String() + m.To().String() + m.Promotion().String()
}

func (m Move) String() string { return m.UCI() }

// Position is the live board. Positions from the rules engine are immutable,
// so applying a move pushes the successor and undoing pops it.
type Position struct {
	stack []*nchess.Position
}

func NewPosition() *Position {
	return &Position{stack: []*nchess.Position{nchess.NewGame().Position()}}
}

func PositionFromFEN(fen string) (*Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidFEN)
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidFEN, fen, err)
	}
	return &Position{stack: []*nchess.Position{nchess.NewGame(opt).Position()}}, nil
}

func (p *Position) current() *nchess.Position { return p.stack[len(p.stack)-1] }

// Clone returns an independent position with the same current state.
// Undo history is not carried over.
func (p *Position) Clone() *Position {
	return &Position{stack: []*nchess.Position{p.current()}}
}

func (p *Position) WhiteToMove() bool { return p.current().Turn() == nchess.White }

func (p *Position) FEN() string { return p.current().String() }

// Depth reports how many applied moves can still be undone.
func (p *Position) Depth() int { return len(p.stack) - 1 }

// LegalMoves enumerates in the rules engine's native order.
func (p *Position) LegalMoves() []Move {
	valid := p.current().ValidMoves()
	out := make([]Move, 0, len(valid))
	for _, mv := range valid {
		out = append(out, Move{m: mv})
	}
	return out
}

// Apply plays m and returns the function that takes it back. Each undo must
// be called exactly once, innermost first.
func (p *Position) Apply(m Move) (undo func()) {
	p.stack = append(p.stack, p.current().Update(&m.m))
	depth := len(p.stack)
	return func() {
		if len(p.stack) != depth {
			panic(fmt.Sprintf("unbalanced undo of %s: stack %d, expected %d", m.UCI(), len(p.stack), depth))
		}
		p.stack = p.stack[:depth-1]
	}
}

// Push applies a move given in coordinate notation. The move must be legal.
func (p *Position) Push(uci string) error {
	mv, err := p.ParseMove(uci)
	if err != nil {
		return err
	}
	p.stack = append(p.stack, p.current().Update(&mv.m))
	return nil
}

// ParseMove decodes coordinate notation against the legal moves of the
// current position.
func (p *Position) ParseMove(uci string) (Move, error) {
	text := strings.ToLower(strings.TrimSpace(uci))
	if len(text) != 4 && len(text) != 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrMalformedMove, uci)
	}
	pos := p.current()
	decoded, err := nchess.UCINotation{}.Decode(pos, text)
	if err != nil || decoded == nil {
		return Move{}, fmt.Errorf("%w: %q", ErrIllegalMove, uci)
	}
	want := Move{m: *decoded}
	for _, mv := range pos.ValidMoves() {
		cand := Move{m: mv}
		if cand.From() == want.From() && cand.To() == want.To() && cand.Promotion() == want.Promotion() {
			return cand, nil
		}
	}
	return Move{}, fmt.Errorf("%w: %q", ErrIllegalMove, uci)
}

// seventyFiveMoveLimit is the halfmove clock at which the game ends
// without a claim.
const seventyFiveMoveLimit = 150

// GameOver reports checkmate, stalemate, insufficient material or the
// seventy-five-move rule.
func (p *Position) GameOver() bool {
	pos := p.current()
	if pos.Status() != nchess.NoMethod {
		return true
	}
	if len(pos.ValidMoves()) == 0 {
		return true
	}
	if halfmoveClock(pos.String()) >= seventyFiveMoveLimit {
		return true
	}
	board := pos.Board().SquareMap()
	return cannotMate(board, nchess.White) && cannotMate(board, nchess.Black)
}

// halfmoveClock reads the fifth FEN field; an absent or bad field counts
// as zero.
func halfmoveClock(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) < 5 {
		return 0
	}
	n, err := strconv.Atoi(fields[4])
	if err != nil {
		return 0
	}
	return n
}

// Pieces calls fn for every occupied square.
func (p *Position) Pieces(fn func(sq nchess.Square, pc nchess.Piece)) {
	for sq, pc := range p.current().Board().SquareMap() {
		if pc == nchess.NoPiece {
			continue
		}
		fn(sq, pc)
	}
}

// cannotMate reports whether side lacks mating material: a lone king, a
// king and one knight against only king and queens, or bishops while every
// bishop on the board stands on one shade and no pawns or knights remain.
func cannotMate(board map[nchess.Square]nchess.Piece, side nchess.Color) bool {
	var (
		own, knights        int
		hasBishop           bool
		anyPawn, anyKnight  bool
		opponentMinorOrMore bool
		shades              = map[int]bool{}
	)
	for sq, pc := range board {
		t := pc.Type()
		switch t {
		case nchess.NoPieceType:
			continue
		case nchess.Pawn:
			anyPawn = true
		case nchess.Knight:
			anyKnight = true
		case nchess.Bishop:
			shades[squareShade(sq)] = true
		}
		if pc.Color() != side {
			if t != nchess.King && t != nchess.Queen {
				opponentMinorOrMore = true
			}
			continue
		}
		own++
		switch t {
		case nchess.Pawn, nchess.Rook, nchess.Queen:
			return false
		case nchess.Knight:
			knights++
		case nchess.Bishop:
			hasBishop = true
		}
	}
	if knights > 0 {
		return own <= 2 && !opponentMinorOrMore
	}
	if hasBishop {
		return len(shades) == 1 && !anyPawn && !anyKnight
	}
	return true
}

func squareShade(sq nchess.Square) int {
	return (int(sq.File()) + int(sq.Rank())) % 2
}
