// Package main provides a profiling wrapper for oosim to identify simulator
// performance bottlenecks.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/oosim/timing/core"
	"github.com/sarchlab/oosim/trace"
)

var (
	configPath = flag.String("config", "", "Simulator configuration JSON file")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	duration   = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	maxCycles  = flag.Uint64("max-cycles", 0, "max cycles to simulate (0 = unlimited)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <trace>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		atexit.Exit(1)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			atexit.Exit(1)
		}

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			_ = f.Close()
			atexit.Exit(1)
		}
		atexit.Register(func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		})
	}

	config := core.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = core.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			atexit.Exit(1)
		}
	}

	tracePath := flag.Arg(0)
	reader, err := trace.Open(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Register(func() { _ = reader.Close() })

	c, err := core.NewCore(reader, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	fmt.Printf("Trace: %s\n", tracePath)

	// Handlers registered above still run on timeout, so the CPU profile is
	// flushed.
	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		atexit.Exit(2)
	}()

	start := time.Now()

	if *maxCycles > 0 {
		_, err = c.RunCycles(*maxCycles)
	} else {
		err = c.Run()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	elapsed := time.Since(start)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			atexit.Exit(1)
		}

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
		_ = f.Close()
	}

	stats := c.Stats()
	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Cycles simulated: %d\n", stats.Cycles)
	fmt.Printf("Instructions retired: %d\n", stats.Instructions)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("Cycles/second: %.0f\n", float64(stats.Cycles)/elapsed.Seconds())
	}

	atexit.Exit(0)
}
