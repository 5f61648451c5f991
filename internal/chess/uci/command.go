package uci

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/park285/strawberry-chess/internal/chess"
)

var errUnknownOption = errors.New("unknown option")

type positionCommand struct {
	FEN   string // empty for startpos
	Moves []string
}

// parsePosition reads the arguments of
//
//	position startpos [moves m1 m2 ...]
//	position fen <fen> [moves m1 m2 ...]
func parsePosition(args []string) (positionCommand, error) {
	if len(args) == 0 {
		return positionCommand{}, fmt.Errorf("position: missing startpos or fen")
	}
	movesAt := indexOf(args, "moves")
	head := args
	var moves []string
	if movesAt >= 0 {
		head = args[:movesAt]
		moves = append([]string(nil), args[movesAt+1:]...)
	}

	switch head[0] {
	case "startpos":
		if len(head) != 1 {
			return positionCommand{}, fmt.Errorf("position: unexpected tokens after startpos: %v", head[1:])
		}
		return positionCommand{Moves: moves}, nil
	case "fen":
		fen := strings.Join(head[1:], " ")
		if fen == "" {
			return positionCommand{}, fmt.Errorf("position: fen is empty")
		}
		return positionCommand{FEN: fen, Moves: moves}, nil
	default:
		return positionCommand{}, fmt.Errorf("position: unknown kind %q", head[0])
	}
}

// build replays the command from scratch; the live position is only replaced
// when every step succeeds.
func (c positionCommand) build() (*chess.Position, error) {
	var (
		pos *chess.Position
		err error
	)
	if c.FEN == "" {
		pos = chess.NewPosition()
	} else if pos, err = chess.PositionFromFEN(c.FEN); err != nil {
		return nil, err
	}
	for i, mv := range c.Moves {
		if err := pos.Push(mv); err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return pos, nil
}

// parseGo reads depth and movetime; other tokens are ignored. A value that
// does not parse or fails budget validation leaves the default in place.
func parseGo(args []string, defaultDepth int) chess.Budget {
	b := chess.Budget{Depth: defaultDepth}
	for i := 0; i < len(args); i++ {
		if args[i] != "depth" && args[i] != "movetime" {
			continue
		}
		if i+1 >= len(args) {
			break
		}
		v, err := strconv.Atoi(args[i+1])
		i++
		if err != nil {
			continue
		}
		next := b
		if args[i-1] == "depth" {
			next.Depth = v
		} else {
			next.TimeLimit = time.Duration(v) * time.Millisecond
			next.Timed = true
		}
		if next.Validate() == nil {
			b = next
		}
	}
	return b
}

// parseSetOption splits "name <id...> value <x...>".
func parseSetOption(args []string) (name, value string, err error) {
	if len(args) < 2 || args[0] != "name" {
		return "", "", fmt.Errorf("setoption: expected name")
	}
	valueAt := indexOf(args, "value")
	if valueAt < 0 {
		return strings.Join(args[1:], " "), "", nil
	}
	if valueAt == 1 {
		return "", "", fmt.Errorf("setoption: empty name")
	}
	return strings.Join(args[1:valueAt], " "), strings.Join(args[valueAt+1:], " "), nil
}

func indexOf(tokens []string, want string) int {
	for i, tok := range tokens {
		if tok == want {
			return i
		}
	}
	return -1
}
