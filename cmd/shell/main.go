// Command shell is an interactive console around the UCI engine with line
// editing, history and completion.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/pflag"

	"mcts-chess/config"
	"mcts-chess/engine"
	"mcts-chess/uci"
)

var commandNames = []string{
	"uci", "isready", "ucinewgame", "position", "go", "stop", "quit",
	"setoption", "d", "perft", "perftsplit", "makemove", "bench", "params",
	"help", "exit",
}

var helpText = `commands:
  position startpos|fen <fen> [moves m1 m2 ...]
  go [wtime t] [btime t] [winc t] [binc t] [movetime t] [depth d] [nodes n] [infinite]
  stop | makemove <m> | d | perft <d> | perftsplit <d> | bench [nodes]
  setoption name <UCT_C|EVAL_SCALE> value <hundredths> | params
  quit | exit
quote a FEN to keep it in one word: position fen "8/8/8/8/8/8/8/K6k w - - 0 1"
`

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

type completer struct{}

// Do completes command names, the keywords of position and setoption, and
// tunable names.
func (completer) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	if !endsWithSpace && len(fields) > 0 {
		prefix = fields[len(fields)-1]
	}

	var candidates []string
	switch {
	case len(fields) == 0 || (len(fields) == 1 && !endsWithSpace):
		candidates = commandNames
	case fields[0] == "position":
		candidates = []string{"startpos", "fen", "moves"}
	case fields[0] == "setoption":
		p := engine.DefaultParams()
		candidates = append([]string{"name", "value"},
			lo.Map(p.Tunables(), func(t engine.Tunable, _ int) string { return t.Name })...)
	case fields[0] == "go":
		candidates = []string{"wtime", "btime", "winc", "binc", "movetime", "depth", "nodes", "infinite", "perft"}
	}

	matches := lo.FilterMap(candidates, func(c string, _ int) ([]rune, bool) {
		if !strings.HasPrefix(c, prefix) {
			return nil, false
		}
		return []rune(c[len(prefix):] + " "), true
	})
	return matches, len([]rune(prefix))
}

// toCommand turns a console line into a protocol command line.
func toCommand(line string) (string, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return "", err
	}
	return strings.Join(words, " "), nil
}

func main() {
	fs := pflag.NewFlagSet("shell", pflag.ExitOnError)
	config.AddFlags(fs)
	history := fs.String("history", "/tmp/mcts-chess.history", "readline history file")
	cfg := &config.Config{}
	if err := cfg.LoadFlags(fs, os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	cfg.SetupLogging(os.Stderr)
	params, err := cfg.EngineParams()
	if err != nil {
		log.Fatal().Err(err).Msg("engine parameters")
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mmcts>\033[0m ",
		HistoryFile:     *history,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    completer{},

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("readline")
	}
	defer l.Close()

	e := uci.NewEngine(l.Stdout(), uci.Options{
		Params:       &params,
		Seed:         cfg.Seed(),
		MoveOverhead: cfg.MoveOverhead(),
	})
	ctx := context.Background()

	for {
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			}
			// Ctrl-C with text on the line stops a running search.
			e.Stop()
			continue
		} else if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "help":
			io.WriteString(l.Stderr(), helpText)
			continue
		case "exit":
			line = "quit"
		}

		cmd, err := toCommand(line)
		if err != nil {
			log.Error().Err(err).Msg("parse")
			continue
		}
		err = e.Handle(ctx, cmd)
		if errors.Is(err, uci.ErrQuit) {
			break
		}
		if err != nil {
			log.Error().Err(err).Str("command", cmd).Msg("")
		}
	}
	e.Stop()
	log.Debug().Msg("Exiting readline loop...")
}
