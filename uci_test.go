package main

import (
	"bytes"
	"context"
	"testing"

	"mcts-chess/engine"
	"mcts-chess/uci"
)

func BenchmarkMain(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var out bytes.Buffer
		e := uci.NewEngine(&out, uci.Options{Seed: engine.DefaultSeed})
		if err := e.Handle(context.Background(), "go nodes 20000"); err != nil {
			b.Fatal(err)
		}
		e.Wait()
	}
}
