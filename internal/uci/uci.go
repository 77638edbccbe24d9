// Package uci implements the Universal Chess Interface protocol loop on
// stdin/stdout. Diagnostics go to the logger on stderr; protocol replies
// are written raw to stdout.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/op/go-logging"

	"github.com/spamdrew128/Galumph/internal/board"
	"github.com/spamdrew128/Galumph/internal/book"
	"github.com/spamdrew128/Galumph/internal/config"
	"github.com/spamdrew128/Galumph/internal/engine"
	"github.com/spamdrew128/Galumph/internal/experience"
	"github.com/spamdrew128/Galumph/internal/nnue"
)

const (
	engineName   = "Galumph"
	engineAuthor = "Spamdrew"
)

var log = logging.MustGetLogger("galumph")

// Option bounds, mirrored in the "uci" reply.
const (
	overheadDefault = 25
	overheadMin     = 1
	overheadMax     = 1000

	hashMbDefault = 25
	hashMbMin     = 1
	hashMbMax     = 8192

	threadsDefault = 1
	threadsMin     = 1
	threadsMax     = 128
)

// Handler owns the protocol state: the current board and game history, the
// searcher, and the configured collaborators.
type Handler struct {
	searcher *engine.Searcher
	tt       *engine.TranspositionTable
	stop     atomic.Bool

	b      board.Board
	hashes *board.HashHistory

	overhead time.Duration
	threads  int

	ownBook  bool
	bookPath string
	book     *book.Book

	expEnabled bool
	expDir     string
	exp        *experience.Store

	searchDone chan struct{}

	// Most recent iteration report, recorded into the experience store
	// alongside the best move.
	lastDepth int
	lastScore int
}

// New builds a handler from the startup configuration.
func New(cfg config.Config) *Handler {
	h := &Handler{
		tt:       engine.NewTranspositionTable(cfg.Engine.HashMb),
		b:        board.StartBoard(),
		overhead: time.Duration(cfg.Engine.OverheadMs) * time.Millisecond,
		threads:  cfg.Engine.Threads,
		ownBook:  cfg.Book.Enabled,
		bookPath: cfg.Book.Path,
		expDir:   cfg.Experience.Dir,
	}
	h.hashes = board.NewHashHistory(h.b.Hash)

	net := nnue.NewMaterialNetwork()
	if cfg.Engine.EvalFile != "" {
		loaded, err := nnue.LoadFile(cfg.Engine.EvalFile)
		if err != nil {
			log.Warningf("eval file %s not loaded: %v", cfg.Engine.EvalFile, err)
		} else {
			net = loaded
		}
	}
	h.searcher = engine.NewSearcher(h.tt, net, &h.stop)

	if h.ownBook && h.bookPath != "" {
		h.loadBook()
	}
	if cfg.Experience.Enabled {
		h.openExperience()
	}

	return h
}

// Run reads commands until stdin closes or "quit" arrives. Malformed
// commands are logged and skipped.
func (h *Handler) Run() {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			h.handleUCI()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			h.handleNewGame()
		case "position":
			h.handlePosition(args)
		case "go":
			h.handleGo(args)
		case "stop":
			h.stop.Store(true)
		case "quit":
			h.shutdown()
			os.Exit(0)
		case "setoption":
			h.handleSetOption(args)

		// Debug extensions.
		case "d":
			h.printBoard()
		case "perft":
			h.handlePerft(args)
		case "bench":
			h.handleBench(args)

		default:
			log.Warningf("unknown command: %s", cmd)
		}
	}

	h.shutdown()
}

func (h *Handler) handleUCI() {
	fmt.Printf("id name %s\n", engineName)
	fmt.Printf("id author %s\n", engineAuthor)
	fmt.Printf("option name Overhead type spin default %d min %d max %d\n", overheadDefault, overheadMin, overheadMax)
	fmt.Printf("option name HashMb type spin default %d min %d max %d\n", hashMbDefault, hashMbMin, hashMbMax)
	fmt.Printf("option name Threads type spin default %d min %d max %d\n", threadsDefault, threadsMin, threadsMax)
	fmt.Println("option name EvalFile type string default <empty>")
	fmt.Println("option name OwnBook type check default false")
	fmt.Println("option name BookFile type string default <empty>")
	fmt.Println("option name Experience type check default false")
	fmt.Println("option name ExperienceDir type string default galumph-experience")
	fmt.Println("uciok")
}

func (h *Handler) handleNewGame() {
	h.waitForSearch()
	h.searcher.NewGame()
	h.b = board.StartBoard()
	h.hashes.Reset(h.b.Hash)
}

// handlePosition sets up the board from "startpos" or a FEN, then applies
// the listed moves. An illegal move is dropped silently and application
// stops, leaving the board at the last legal state.
func (h *Handler) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var moveStart int
	switch args[0] {
	case "startpos":
		h.b = board.StartBoard()
		moveStart = 1
	case "fen":
		fenEnd := len(args)
		for i, arg := range args {
			if arg == "moves" {
				fenEnd = i
				break
			}
		}
		b, err := board.FromFEN(strings.Join(args[1:fenEnd], " "))
		if err != nil {
			log.Warningf("invalid FEN: %v", err)
			return
		}
		h.b = b
		moveStart = fenEnd
	default:
		log.Warningf("invalid position command: %s", args[0])
		return
	}

	h.hashes.Reset(h.b.Hash)

	if moveStart < len(args) && args[moveStart] == "moves" {
		for _, moveStr := range args[moveStart+1:] {
			mv, err := board.ParseMove(moveStr, &h.b)
			if err != nil {
				log.Warningf("dropped move %q: %v", moveStr, err)
				break
			}
			next := h.b
			if !h.b.IsPseudoLegal(mv) || !next.TryPlayMove(mv) {
				log.Warningf("dropped illegal move %q", moveStr)
				break
			}
			h.b = next
			h.hashes.Push(h.b.Hash)
		}
	}
}

// handleGo parses the limits and launches the search on its own goroutine
// so the protocol loop keeps answering isready and stop.
func (h *Handler) handleGo(args []string) {
	h.waitForSearch()

	cfg := h.parseGoArgs(args)

	rootBoard := h.b

	// The opening book answers instantly when it knows the position.
	if h.ownBook {
		if mv, ok := h.book.Probe(&rootBoard); ok {
			fmt.Printf("bestmove %s\n", mv)
			return
		}
	}

	h.searcher.SetRootHint(board.NullMove)
	if h.exp != nil {
		if entry, ok := h.exp.Probe(rootBoard.Hash); ok {
			if mv, err := board.ParseMove(entry.Move, &rootBoard); err == nil && rootBoard.IsPseudoLegal(mv) {
				h.searcher.SetRootHint(mv)
				fmt.Printf("info string experience hint %s depth %d\n", entry.Move, entry.Depth)
			}
		}
	}

	h.stop.Store(false)
	h.searcher.Info = h.printInfo
	h.searcher.SetHashHistory(h.hashes)
	h.searchDone = make(chan struct{})

	go func() {
		defer close(h.searchDone)

		bestMove := h.searcher.Search(rootBoard, cfg)
		bestMove = h.validateBestMove(&rootBoard, bestMove)
		fmt.Printf("bestmove %s\n", bestMove)

		if h.exp != nil && !bestMove.IsNull() {
			h.recordExperience(&rootBoard, bestMove)
		}
	}()
}

// parseGoArgs reads the go sub-arguments, skipping unknown tokens one by
// one.
func (h *Handler) parseGoArgs(args []string) engine.SearchConfig {
	cfg := engine.SearchConfig{Overhead: h.overhead}

	nextMs := func(i int) (time.Duration, bool) {
		if i+1 >= len(args) {
			return 0, false
		}
		ms, err := strconv.Atoi(args[i+1])
		if err != nil || ms < 0 {
			return 0, false
		}
		return time.Duration(ms) * time.Millisecond, true
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "wtime":
			if d, ok := nextMs(i); ok {
				cfg.Time[board.White] = d
				i++
			}
		case "btime":
			if d, ok := nextMs(i); ok {
				cfg.Time[board.Black] = d
				i++
			}
		case "winc":
			if d, ok := nextMs(i); ok {
				cfg.Inc[board.White] = d
				i++
			}
		case "binc":
			if d, ok := nextMs(i); ok {
				cfg.Inc[board.Black] = d
				i++
			}
		case "movetime":
			if d, ok := nextMs(i); ok {
				cfg.MoveTime = d
				i++
			}
		case "movestogo":
			if i+1 < len(args) {
				cfg.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "depth":
			if i+1 < len(args) {
				cfg.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				cfg.Nodes, _ = strconv.ParseUint(args[i+1], 10, 64)
				i++
			}
		case "infinite":
			cfg.Infinite = true
		default:
			log.Warningf("unrecognized go argument: %s", args[i])
		}
	}

	return cfg
}

// validateBestMove never lets an illegal move reach the GUI.
func (h *Handler) validateBestMove(rootBoard *board.Board, mv board.Move) board.Move {
	legal := rootBoard.LegalMoves()
	if legal.Contains(mv) {
		return mv
	}
	log.Warningf("search returned non-legal move %s", mv)
	if legal.Len() > 0 {
		return legal.Get(0)
	}
	return board.NullMove
}

func (h *Handler) handleSetOption(args []string) {
	// Format: setoption name <name> [value <value>]
	name, value := "", ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "name":
			if i+1 < len(args) {
				name = args[i+1]
				i++
			}
		case "value":
			if i+1 < len(args) {
				value = strings.Join(args[i+1:], " ")
				i = len(args)
			}
		}
	}

	switch strings.ToLower(name) {
	case "overhead":
		if ms, ok := parseSpin(value, overheadMin, overheadMax); ok {
			h.overhead = time.Duration(ms) * time.Millisecond
		}
	case "hashmb":
		if mb, ok := parseSpin(value, hashMbMin, hashMbMax); ok {
			h.tt.Resize(mb)
		}
	case "threads":
		if n, ok := parseSpin(value, threadsMin, threadsMax); ok {
			h.threads = n
			if n > 1 {
				log.Warningf("only 1 search thread is supported, requested %d", n)
			}
		}
	case "evalfile":
		net, err := nnue.LoadFile(value)
		if err != nil {
			log.Warningf("eval file not loaded: %v", err)
			return
		}
		h.searcher.SetNetwork(net)
	case "ownbook":
		h.ownBook = value == "true"
		if h.ownBook {
			h.loadBook()
		}
	case "bookfile":
		h.bookPath = value
		if h.ownBook {
			h.loadBook()
		}
	case "experience":
		h.expEnabled = value == "true"
		if h.expEnabled {
			h.openExperience()
		}
	case "experiencedir":
		h.expDir = value
	default:
		log.Warningf("unknown option: %s", name)
	}
}

func parseSpin(value string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil || n < lo || n > hi {
		log.Warningf("spin value %q out of range [%d, %d]", value, lo, hi)
		return 0, false
	}
	return n, true
}

func (h *Handler) loadBook() {
	if h.bookPath == "" {
		return
	}
	b, err := book.Load(h.bookPath)
	if err != nil {
		log.Warningf("book %s not loaded: %v", h.bookPath, err)
		h.ownBook = false
		return
	}
	h.book = b
	log.Infof("opening book loaded from %s", h.bookPath)
}

func (h *Handler) openExperience() {
	if h.exp != nil {
		return
	}
	store, err := experience.Open(h.expDir)
	if err != nil {
		log.Warningf("experience store not opened: %v", err)
		return
	}
	h.exp = store
}

func (h *Handler) recordExperience(rootBoard *board.Board, mv board.Move) {
	err := h.exp.Record(rootBoard.Hash, experience.Entry{
		Move:  mv.String(),
		Depth: h.lastDepth,
		Score: h.lastScore,
	})
	if err != nil {
		log.Warningf("experience record failed: %v", err)
	}
}

func (h *Handler) printInfo(info engine.SearchInfo) {
	h.lastDepth = info.Depth
	h.lastScore = info.Score

	var scoreStr string
	if mate, ok := info.MateIn(); ok {
		scoreStr = fmt.Sprintf("mate %d", mate)
	} else {
		scoreStr = fmt.Sprintf("cp %d", info.Score)
	}

	micros := info.Time.Microseconds()
	if micros == 0 {
		micros = 1
	}
	nps := uint64(int64(info.Nodes) * 1_000_000 / micros)

	var pv strings.Builder
	for i, mv := range info.PV {
		if i > 0 {
			pv.WriteByte(' ')
		}
		pv.WriteString(mv.String())
	}

	fmt.Printf("info score %s time %d nodes %d nps %d depth %d seldepth %d hashfull %d pv %s\n",
		scoreStr, info.Time.Milliseconds(), info.Nodes, nps,
		info.Depth, info.SelDepth, info.Hashfull, pv.String())
}

// printBoard renders the position for the "d" debug command, with the
// pieces of each side in their own color.
func (h *Handler) printBoard() {
	white := color.New(color.FgHiWhite, color.Bold)
	black := color.New(color.FgHiBlue, color.Bold)

	for rank := 7; rank >= 0; rank-- {
		fmt.Printf("%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(file, rank)
			p := h.b.PieceOn(sq)
			if p == board.NoPiece {
				fmt.Print(". ")
				continue
			}
			c := h.b.ColorOn(sq)
			painter := white
			if c == board.Black {
				painter = black
			}
			painter.Printf("%c ", p.Char(c))
		}
		fmt.Println()
	}
	fmt.Println("\n   a b c d e f g h")
	fmt.Printf("fen: %s\nhash: %016x\n", h.b.ToFEN(), h.b.Hash)
}

func (h *Handler) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	start := time.Now()
	entries, total := board.PerftDivide(&h.b, depth)
	elapsed := time.Since(start)

	for _, e := range entries {
		fmt.Printf("%s: %d\n", e.Move, e.Nodes)
	}
	fmt.Printf("\nnodes %d time %d nps %d\n",
		total, elapsed.Milliseconds(), uint64(float64(total)/elapsed.Seconds()))
}

func (h *Handler) handleBench(args []string) {
	depth := engine.BenchDefaultDepth
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}
	nodes, elapsed := h.searcher.Bench(depth)
	fmt.Printf("%d nodes %d nps\n", nodes, uint64(float64(nodes)/elapsed.Seconds()))
}

// RunBench runs the fixed-depth benchmark from the command line and exits.
func (h *Handler) RunBench(args []string) {
	h.handleBench(args)
	h.shutdown()
}

func (h *Handler) waitForSearch() {
	if h.searchDone != nil {
		h.stop.Store(true)
		<-h.searchDone
		h.searchDone = nil
	}
}

func (h *Handler) shutdown() {
	h.waitForSearch()
	if h.exp != nil {
		h.exp.Close()
	}
}
