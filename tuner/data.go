// tuner/data.go
package tuner

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mcts-chess/chess"
	"mcts-chess/engine"
)

// Sample is one labelled position. Material and Label are from White's view.
type Sample struct {
	FEN      string
	Material int
	Label    float64 // 1 white win, 0.5 draw, 0 black win
}

func parseLabel(s string) (float64, error) {
	s = strings.Trim(strings.TrimSpace(s), `[]"`)
	switch s {
	case "1-0":
		return 1.0, nil
	case "0-1":
		return 0.0, nil
	case "1/2-1/2", "1/2", "0.5":
		return 0.5, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 || f > 1 {
			return 0, fmt.Errorf("label out of [0,1]: %v", f)
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot parse label: %q", s)
}

// splitLine separates the FEN from the result. Accepted forms:
// "FEN [1-0]", "FEN;0.5", "FEN\t0-1" and "FEN 1/2-1/2".
func splitLine(line string) (fen, label string, err error) {
	switch {
	case strings.Contains(line, "["):
		fen, label, _ = strings.Cut(line, "[")
	case strings.Contains(line, ";"):
		fen, label, _ = strings.Cut(line, ";")
	case strings.Contains(line, "\t"):
		fen, label, _ = strings.Cut(line, "\t")
	default:
		i := strings.LastIndexByte(line, ' ')
		if i < 0 {
			return "", "", fmt.Errorf("no result in %q", line)
		}
		fen, label = line[:i], line[i+1:]
	}
	return strings.TrimSpace(fen), label, nil
}

func toSample(line string) (Sample, error) {
	fen, rawLabel, err := splitLine(line)
	if err != nil {
		return Sample{}, err
	}
	label, err := parseLabel(rawLabel)
	if err != nil {
		return Sample{}, err
	}
	b, err := chess.ParseFEN(fen, nil)
	if err != nil {
		return Sample{}, err
	}
	m := engine.Material(b)
	if b.SideToMove() == chess.Black {
		m = -m
	}
	return Sample{FEN: fen, Material: m, Label: label}, nil
}

// LoadDataset reads one labelled position per line, skipping blank lines
// and lines starting with '#'. maxRows > 0 caps the number of samples.
func LoadDataset(r io.Reader, maxRows int) ([]Sample, error) {
	var out []Sample
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, err := toSample(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, s)
		if maxRows > 0 && len(out) >= maxRows {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
