// Command carta loads graphs, runs selectors and actor pipelines over them,
// and persists them to a badger store.
//
//	carta select --graph g.json --selector s.yaml
//	carta select --db ./data --pipeline p.yaml --cache-size 1024 --stats
//	carta apply  --graph g.json --pipeline p.yaml --out out.json
//	carta import --graph g.json --db ./data
//	carta synth  --seed 7 --depth 3
package main

import (
	"fmt"
	"os"
)

// Exit codes.
const (
	exitSuccess = 0
	exitError   = 1
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitError)
	}
	os.Exit(exitSuccess)
}
