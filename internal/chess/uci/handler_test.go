package uci

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/park285/strawberry-chess/internal/chess"
)

const foolsMateFEN = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"

func runLines(t *testing.T, h *Handler, lines ...string) []string {
	t.Helper()
	var out strings.Builder
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	if err := h.Run(context.Background(), in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func bestMove(t *testing.T, lines []string) string {
	t.Helper()
	for _, line := range lines {
		if strings.HasPrefix(line, "bestmove ") {
			return strings.TrimPrefix(line, "bestmove ")
		}
	}
	t.Fatalf("no bestmove in %q", lines)
	return ""
}

func replay(t *testing.T, moves ...string) *chess.Position {
	t.Helper()
	pos := chess.NewPosition()
	for _, mv := range moves {
		if err := pos.Push(mv); err != nil {
			t.Fatalf("Push(%s): %v", mv, err)
		}
	}
	return pos
}

func TestHandshake(t *testing.T) {
	lines := runLines(t, NewHandler(Config{}), "uci", "isready")
	want := []string{
		"id name StrawberryChess v1.0",
		"id author MK",
		"option name Depth type spin default 3 min 1 max 8",
		"option name Seed type spin default 0 min 0 max 2147483647",
		"uciok",
		"readyok",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected handshake:\n%s", strings.Join(lines, "\n"))
	}
}

func TestCustomIdentity(t *testing.T) {
	lines := runLines(t, NewHandler(Config{Name: "Berry", Author: "someone", DefaultDepth: 2}), "uci")
	if lines[0] != "id name Berry" || lines[1] != "id author someone" {
		t.Fatalf("identity not applied: %q", lines)
	}
	if !strings.Contains(lines[2], "default 2") {
		t.Fatalf("depth default not advertised: %q", lines[2])
	}
}

func TestPositionReplaysMoves(t *testing.T) {
	h := NewHandler(Config{})
	runLines(t, h, "position startpos moves e2e4 e7e5 g1f3")
	if want := replay(t, "e2e4", "e7e5", "g1f3").FEN(); h.FEN() != want {
		t.Fatalf("fen %q, want %q", h.FEN(), want)
	}
}

func TestPositionFromFENWithMoves(t *testing.T) {
	h := NewHandler(Config{})
	runLines(t, h, "position fen 4k3/8/8/8/8/8/4P3/4K3 w - - 0 1 moves e2e4 e8d7")
	want, err := chess.PositionFromFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("PositionFromFEN: %v", err)
	}
	for _, mv := range []string{"e2e4", "e8d7"} {
		if err := want.Push(mv); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	if h.FEN() != want.FEN() {
		t.Fatalf("fen %q, want %q", h.FEN(), want.FEN())
	}
}

func TestMalformedPositionKeepsBoardAndLoop(t *testing.T) {
	h := NewHandler(Config{})
	lines := runLines(t, h,
		"position startpos moves d2d4",
		"position startpos moves e2e4 e7e6 zz",
		"position fen not-a-fen",
		"position",
		"isready",
	)
	if want := replay(t, "d2d4").FEN(); h.FEN() != want {
		t.Fatalf("bad command replaced position: %q", h.FEN())
	}
	if len(lines) != 1 || lines[0] != "readyok" {
		t.Fatalf("loop did not survive malformed input: %q", lines)
	}
}

func TestNewGameResets(t *testing.T) {
	h := NewHandler(Config{})
	runLines(t, h, "position startpos moves e2e4", "ucinewgame")
	if h.FEN() != chess.NewPosition().FEN() {
		t.Fatalf("ucinewgame left %q", h.FEN())
	}
}

func TestGoAfterOpeningReturnsLegalMove(t *testing.T) {
	h := NewHandler(Config{})
	lines := runLines(t, h, "position startpos moves e2e4 e7e5", "go depth 1")
	mv := bestMove(t, lines)
	if _, err := replay(t, "e2e4", "e7e5").ParseMove(mv); err != nil {
		t.Fatalf("bestmove %s is not legal: %v", mv, err)
	}
	if !strings.HasPrefix(lines[0], "info depth 1 score cp ") {
		t.Fatalf("missing info line: %q", lines)
	}
	if want := replay(t, "e2e4", "e7e5").FEN(); h.FEN() != want {
		t.Fatalf("search changed live position to %q", h.FEN())
	}
}

func TestGoTakesFreeMaterial(t *testing.T) {
	lines := runLines(t, NewHandler(Config{}), "position fen r3k3/8/8/8/8/8/8/Q3K3 w - - 0 1", "go depth 2")
	if mv := bestMove(t, lines); mv != "a1a8" {
		t.Fatalf("expected a1a8, got %s", mv)
	}
}

func TestGoMovetimeIsBounded(t *testing.T) {
	h := NewHandler(Config{})
	start := time.Now()
	lines := runLines(t, h, "position startpos moves e2e4", "go depth 6 movetime 1")
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("movetime 1 took %s", elapsed)
	}
	mv := bestMove(t, lines)
	if _, err := replay(t, "e2e4").ParseMove(mv); err != nil {
		t.Fatalf("bestmove %s is not legal: %v", mv, err)
	}
}

func TestGoWithoutMovesPrintsNothing(t *testing.T) {
	lines := runLines(t, NewHandler(Config{}), "position fen "+foolsMateFEN, "go")
	if len(lines) != 0 {
		t.Fatalf("expected no output for a mated side, got %q", lines)
	}
}

func TestGoFallbackIsSeeded(t *testing.T) {
	pick := func() string {
		lines := runLines(t, NewHandler(Config{}), "setoption name Seed value 7", "go depth 0")
		if len(lines) != 1 {
			t.Fatalf("fallback should emit only bestmove, got %q", lines)
		}
		return bestMove(t, lines)
	}
	first, second := pick(), pick()
	if first != second {
		t.Fatalf("same seed picked %s and %s", first, second)
	}
	if _, err := chess.NewPosition().ParseMove(first); err != nil {
		t.Fatalf("fallback move %s is not legal: %v", first, err)
	}
}

func TestGoMovetimeZeroFallsBack(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time {
		now = now.Add(time.Microsecond)
		return now
	}
	h := NewHandler(Config{Seed: 7, SearchOpts: []chess.SearchOption{chess.WithClock(clock)}})
	lines := runLines(t, h, "go movetime 0")

	want, ok := chess.NewFallback(7).Choose(chess.NewPosition())
	if !ok {
		t.Fatalf("start position has no moves")
	}
	if len(lines) != 1 || lines[0] != "bestmove "+want.UCI() {
		t.Fatalf("movetime 0 should answer with the seeded fallback %s, got %q", want, lines)
	}
}

func TestSetOptionDepth(t *testing.T) {
	lines := runLines(t, NewHandler(Config{}), "setoption name Depth value 2", "setoption name Depth value 99", "go")
	if !strings.HasPrefix(lines[0], "info depth 2 ") {
		t.Fatalf("default depth not updated: %q", lines)
	}
}

func TestQuitStopsLoop(t *testing.T) {
	lines := runLines(t, NewHandler(Config{}), "isready", "quit", "isready")
	if len(lines) != 1 {
		t.Fatalf("commands after quit were served: %q", lines)
	}
}

func TestUnknownCommandsIgnored(t *testing.T) {
	lines := runLines(t, NewHandler(Config{}), "", "hello", "debug on", "stop", "isready")
	if len(lines) != 1 || lines[0] != "readyok" {
		t.Fatalf("unexpected output %q", lines)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out strings.Builder
	err := NewHandler(Config{}).Run(ctx, strings.NewReader("isready\n"), &out)
	if err == nil || out.Len() != 0 {
		t.Fatalf("expected context error and no output, got err=%v out=%q", err, out.String())
	}
}
