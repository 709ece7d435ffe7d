// Package main provides the entry point for oosim.
// oosim is a trace-driven out-of-order pipeline simulator built on Akita.
//
// For the full CLI, use: go run ./cmd/oosim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("oosim - Out-of-Order Pipeline Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: oosim [options] <trace>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config       Path to simulator configuration JSON file")
	fmt.Println("  -width        Pipeline width")
	fmt.Println("  -sched        Scheduling policy (in-order, out-of-order)")
	fmt.Println("  -rob          Number of ROB entries")
	fmt.Println("  -exceptions   Enable the precise exception model")
	fmt.Println("  -mem          Memory model (fixed, cache, hierarchy)")
	fmt.Println("  -max-cycles   Stop after this many cycles (0 = run to completion)")
	fmt.Println("  -debug        Dump pipeline state every cycle")
	fmt.Println("  -trace-stats  Print the trace instruction mix before simulating")
	fmt.Println("  -v            Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/oosim' for the full CLI.")
	fmt.Println("Run 'go run ./cmd/tracegen' to generate a synthetic trace.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/oosim' instead.")
	}
}
