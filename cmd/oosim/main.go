// Package main provides the oosim command, which runs a trace through the
// out-of-order pipeline model and reports timing statistics.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/oosim/timing/cache"
	"github.com/sarchlab/oosim/timing/core"
	"github.com/sarchlab/oosim/timing/pipeline"
	"github.com/sarchlab/oosim/trace"
)

func main() {
	atexit.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	width      int
	sched      string
	robEntries int
	exceptions bool
	memory     string
	maxCycles  uint64
	debug      bool
	traceStats bool
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}

	fs := flag.NewFlagSet("oosim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to simulator configuration JSON file")
	fs.IntVar(&opts.width, "width", 0, "Pipeline width (overrides config)")
	fs.StringVar(&opts.sched, "sched", "", "Scheduling policy: in-order or out-of-order (overrides config)")
	fs.IntVar(&opts.robEntries, "rob", 0, "Number of ROB entries (overrides config)")
	fs.BoolVar(&opts.exceptions, "exceptions", false, "Enable the precise exception model")
	fs.StringVar(&opts.memory, "mem", "", "Memory model: fixed, cache or hierarchy (overrides config)")
	fs.Uint64Var(&opts.maxCycles, "max-cycles", 0, "Stop after this many cycles (0 = run to completion)")
	fs.BoolVar(&opts.debug, "debug", false, "Dump pipeline state every cycle")
	fs.BoolVar(&opts.traceStats, "trace-stats", false, "Print the trace instruction mix before simulating")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: oosim [options] <trace>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return nil, nil, fmt.Errorf("missing trace file")
	}

	return opts, fs.Args(), nil
}

// buildConfig loads the configuration file, if any, and applies the flag
// overrides on top of it.
func buildConfig(opts *options) (*core.Config, error) {
	config := core.DefaultConfig()
	if opts.configPath != "" {
		var err error
		config, err = core.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.width != 0 {
		config.Pipeline.Width = opts.width
	}
	if opts.sched != "" {
		policy, err := pipeline.ParseSchedPolicy(opts.sched)
		if err != nil {
			return nil, err
		}
		config.Pipeline.SchedPolicy = policy
	}
	if opts.robEntries != 0 {
		config.Pipeline.NumROBEntries = opts.robEntries
	}
	if opts.exceptions {
		config.Pipeline.Exceptions = true
	}
	if opts.memory != "" {
		config.Memory = opts.memory
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		return 1
	}
	tracePath := rest[0]

	config, err := buildConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.traceStats {
		if err := printTraceStats(tracePath, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	reader, err := trace.Open(tracePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	atexit.Register(func() { _ = reader.Close() })
	defer reader.Close()

	c, err := core.NewCore(reader, config)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	runID := xid.New().String()
	if opts.verbose {
		fmt.Fprintf(stdout, "Run: %s\n", runID)
		fmt.Fprintf(stdout, "Trace: %s\n", tracePath)
		fmt.Fprintf(stdout, "Width: %d  Sched: %s  ROB: %d  EXEQ: %d  Exceptions: %t  Memory: %s\n",
			config.Pipeline.Width, config.Pipeline.SchedPolicy, config.Pipeline.NumROBEntries,
			config.Pipeline.EXEQEntries(), config.Pipeline.Exceptions, config.Memory)
	}

	if err := simulate(c, opts, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	printReport(stdout, runID, tracePath, c)

	return 0
}

func simulate(c *core.Core, opts *options, stdout io.Writer) error {
	for !c.Halted() {
		if opts.maxCycles != 0 && c.Stats().Cycles >= opts.maxCycles {
			fmt.Fprintf(stdout, "Stopped after %d cycles\n", opts.maxCycles)
			return nil
		}

		if err := c.Tick(); err != nil {
			return err
		}

		if opts.debug {
			c.Pipeline.PrintState(stdout)
		}
	}
	return nil
}

func printTraceStats(path string, stdout io.Writer) error {
	reader, err := trace.Open(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	summary, err := trace.Summarize(reader)
	if err != nil {
		return err
	}

	summary.Fprint(stdout)
	fmt.Fprintln(stdout)

	return nil
}

func printReport(w io.Writer, runID, tracePath string, c *core.Core) {
	stats := c.Stats()

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Run: %s\n", runID)
	fmt.Fprintf(w, "Trace: %s\n", tracePath)
	fmt.Fprintf(w, "Total Instructions: %d\n", stats.Instructions)
	fmt.Fprintf(w, "Total Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(w, "CPI: %.4f\n", stats.CPI())
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Pipeline Events:\n")
	fmt.Fprintf(w, "  ROB full stalls:       %d\n", stats.ROBFullStalls)
	fmt.Fprintf(w, "  Exceptions:            %d\n", stats.Exceptions)
	fmt.Fprintf(w, "  Handler cycles:        %d\n", stats.HandlerCycles)
	fmt.Fprintf(w, "  Replayed instructions: %d\n", stats.ReplayedInstructions)

	if l1, ok := c.L1Stats(); ok {
		printCacheStats(w, "L1", l1)
	}
	if l2, ok := c.L2Stats(); ok {
		printCacheStats(w, "L2", l2)
	}
}

func printCacheStats(w io.Writer, name string, s cache.Statistics) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "%s Cache:\n", name)
	fmt.Fprintf(w, "  Reads:      %d\n", s.Reads)
	fmt.Fprintf(w, "  Writes:     %d\n", s.Writes)
	fmt.Fprintf(w, "  Hits:       %d\n", s.Hits)
	fmt.Fprintf(w, "  Misses:     %d\n", s.Misses)
	fmt.Fprintf(w, "  Hit rate:   %.2f%%\n", 100*s.HitRate())
	fmt.Fprintf(w, "  Evictions:  %d\n", s.Evictions)
	fmt.Fprintf(w, "  Writebacks: %d\n", s.Writebacks)
}
