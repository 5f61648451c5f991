package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/strawberry-chess/internal/chess"
)

const (
	defaultName   = "StrawberryChess v1.0"
	defaultAuthor = "MK"
	maxSeed       = 2147483647
)

type Config struct {
	Name         string
	Author       string
	DefaultDepth int
	Seed         int64 // 0 seeds from the clock
	Logger       *zap.Logger
	SearchOpts   []chess.SearchOption
}

// Handler is the engine side of one UCI conversation. It owns the live
// position; searches run on a clone.
type Handler struct {
	name     string
	author   string
	depth    int
	logger   *zap.Logger
	pos      *chess.Position
	searcher *chess.Searcher
	fallback *chess.Fallback
}

func NewHandler(cfg Config) *Handler {
	if strings.TrimSpace(cfg.Name) == "" {
		cfg.Name = defaultName
	}
	if strings.TrimSpace(cfg.Author) == "" {
		cfg.Author = defaultAuthor
	}
	if cfg.DefaultDepth <= 0 || cfg.DefaultDepth > chess.MaxDepth {
		cfg.DefaultDepth = chess.DefaultDepth
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Handler{
		name:     cfg.Name,
		author:   cfg.Author,
		depth:    cfg.DefaultDepth,
		logger:   cfg.Logger,
		pos:      chess.NewPosition(),
		searcher: chess.NewSearcher(cfg.SearchOpts...),
		fallback: chess.NewFallback(cfg.Seed),
	}
}

// FEN reports the live position.
func (h *Handler) FEN() string { return h.pos.FEN() }

// Run serves commands from r until quit, end of input or ctx is done.
// Responses are flushed after every command.
func (h *Handler) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	out := bufio.NewWriter(w)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		quit := h.Handle(ctx, scanner.Text(), out)
		if err := out.Flush(); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if quit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read command: %w", err)
	}
	return nil
}

// Handle dispatches a single line and reports whether it was quit.
func (h *Handler) Handle(ctx context.Context, line string, w io.Writer) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	args := fields[1:]

	switch fields[0] {
	case "uci":
		h.identify(w)
	case "isready":
		fmt.Fprintln(w, "readyok")
	case "ucinewgame":
		h.pos = chess.NewPosition()
	case "position":
		h.setPosition(args)
	case "go":
		h.search(ctx, args, w)
	case "setoption":
		h.setOption(args)
	case "stop":
		// searches are synchronous; nothing can be running here
	case "quit":
		return true
	default:
		h.logger.Debug("uci_ignored", zap.String("line", line))
	}
	return false
}

func (h *Handler) identify(w io.Writer) {
	fmt.Fprintf(w, "id name %s\n", h.name)
	fmt.Fprintf(w, "id author %s\n", h.author)
	fmt.Fprintf(w, "option name Depth type spin default %d min 1 max %d\n", h.depth, chess.MaxDepth)
	fmt.Fprintf(w, "option name Seed type spin default 0 min 0 max %d\n", maxSeed)
	fmt.Fprintln(w, "uciok")
}

func (h *Handler) setPosition(args []string) {
	cmd, err := parsePosition(args)
	if err == nil {
		var pos *chess.Position
		if pos, err = cmd.build(); err == nil {
			h.pos = pos
			h.logger.Debug("uci_position",
				zap.String("fen", pos.FEN()),
				zap.Int("moves", len(cmd.Moves)),
			)
			return
		}
	}
	h.logger.Warn("uci_position_rejected",
		zap.Strings("args", args),
		zap.Error(err),
	)
}

func (h *Handler) search(ctx context.Context, args []string, w io.Writer) {
	budget := parseGo(args, h.depth)
	start := time.Now()
	res := h.searcher.Search(ctx, h.pos.Clone(), budget)
	elapsed := time.Since(start)

	fields := []zap.Field{
		zap.Int("depth", budget.Depth),
		zap.Duration("time_limit", budget.TimeLimit),
		zap.Bool("timed", budget.Timed),
		zap.Int("nodes", h.searcher.Nodes()),
		zap.Duration("elapsed", elapsed),
		zap.Int("score", res.Score),
	}

	if res.Found {
		cp := res.Score * 10
		if !h.pos.WhiteToMove() {
			cp = -cp
		}
		fmt.Fprintf(w, "info depth %d score cp %d nodes %d time %d\n", budget.Depth, cp, h.searcher.Nodes(), elapsed.Milliseconds())
		fmt.Fprintf(w, "bestmove %s\n", res.Move.UCI())
		h.logger.Info("uci_search", append(fields, zap.String("bestmove", res.Move.UCI()))...)
		return
	}

	mv, ok := h.fallback.Choose(h.pos)
	if !ok {
		h.logger.Info("uci_search_no_moves", fields...)
		return
	}
	fmt.Fprintf(w, "bestmove %s\n", mv.UCI())
	h.logger.Info("uci_search", append(fields, zap.String("bestmove", mv.UCI()), zap.Bool("fallback", true))...)
}

func (h *Handler) setOption(args []string) {
	name, value, err := parseSetOption(args)
	if err == nil {
		err = h.applyOption(name, value)
	}
	if err != nil {
		h.logger.Warn("uci_setoption_rejected", zap.Strings("args", args), zap.Error(err))
	}
}

func (h *Handler) applyOption(name, value string) error {
	switch strings.ToLower(name) {
	case "depth":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > chess.MaxDepth {
			return fmt.Errorf("depth %q out of range 1-%d", value, chess.MaxDepth)
		}
		h.depth = n
	case "seed":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 || n > maxSeed {
			return fmt.Errorf("seed %q out of range 0-%d", value, maxSeed)
		}
		h.fallback.SetSeed(n)
	default:
		return fmt.Errorf("%w: %s", errUnknownOption, name)
	}
	return nil
}
