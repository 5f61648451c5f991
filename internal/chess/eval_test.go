package chess

import (
	"strings"
	"testing"
	"unicode"
)

// mirrorFEN swaps colours and flips ranks.
func mirrorFEN(fen string) string {
	fields := strings.Fields(fen)
	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	if fields[2] != "-" {
		fields[2] = swapCase(fields[2])
	}
	if fields[3] != "-" {
		rank := '3'
		if fields[3][1] == '3' {
			rank = '6'
		}
		fields[3] = string(fields[3][0]) + string(rank)
	}
	return strings.Join(fields, " ")
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsUpper(r) {
			return unicode.ToLower(r)
		}
		return unicode.ToUpper(r)
	}, s)
}

func TestEvaluateStartIsBalanced(t *testing.T) {
	if got := Evaluate(NewPosition()); got != 0 {
		t.Fatalf("start position eval = %d, want 0", got)
	}
}

func TestEvaluateMaterial(t *testing.T) {
	cases := []struct {
		fen  string
		want int
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", 0},
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", 10},
		{"4k3/8/8/8/8/8/8/Q3K3 w - - 0 1", 90},
		{"r3k3/8/8/8/8/8/8/4K3 w - - 0 1", -50},
		{"rn2k3/8/8/8/8/8/8/1B2K3 b - - 0 1", -50},
		{foolsMateFEN, 0},
	}
	for _, tc := range cases {
		if got := Evaluate(mustFEN(t, tc.fen)); got != tc.want {
			t.Fatalf("Evaluate(%q) = %d, want %d", tc.fen, got, tc.want)
		}
	}
}

func TestEvaluateMirrorIsNegated(t *testing.T) {
	fens := []string{
		startFEN,
		"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
		"r1bqk2r/pppp1ppp/2n2n2/4p3/1b2P3/2N2N2/PPPP1PPP/R1BQKB1R w KQkq - 4 5",
		"3qk3/8/8/8/8/8/PPP5/4K2R b K - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
	}
	for _, fen := range fens {
		p := mustFEN(t, fen)
		m := mustFEN(t, mirrorFEN(fen))
		if Evaluate(m) != -Evaluate(p) {
			t.Fatalf("mirror of %q: %d vs %d", fen, Evaluate(m), Evaluate(p))
		}
	}
}
