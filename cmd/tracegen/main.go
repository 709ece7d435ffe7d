// Package main provides the tracegen command, which writes synthetic
// instruction traces for oosim.
package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/oosim/insts"
	"github.com/sarchlab/oosim/trace"
)

func main() {
	atexit.Exit(run(os.Args[1:], os.Stderr))
}

// genOptions controls the instruction mix of a generated trace.
type genOptions struct {
	numInsts       int
	seed           int64
	loadFrac       float64
	storeFrac      float64
	branchFrac     float64
	numRegs        int
	exceptionEvery int
	handlerCost    uint
	compress       bool
}

func run(args []string, stderr io.Writer) int {
	opts := genOptions{}

	fs := flag.NewFlagSet("tracegen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.numInsts, "n", 1000, "Number of instructions")
	fs.Int64Var(&opts.seed, "seed", 1, "Random seed")
	fs.Float64Var(&opts.loadFrac, "load", 0.2, "Fraction of loads")
	fs.Float64Var(&opts.storeFrac, "store", 0.1, "Fraction of stores")
	fs.Float64Var(&opts.branchFrac, "branch", 0.1, "Fraction of conditional branches")
	fs.IntVar(&opts.numRegs, "regs", 32, "Number of architectural registers used")
	fs.IntVar(&opts.exceptionEvery, "exception-every", 0, "Mark every Nth instruction as faulting (0 = never)")
	fs.UintVar(&opts.handlerCost, "handler-cost", 100, "Exception handler cost in cycles")
	fs.BoolVar(&opts.compress, "gzip", false, "Compress the output with gzip")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tracegen [options] <out>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 1
	}

	if err := opts.validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := writeTrace(fs.Arg(0), opts); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func (o genOptions) validate() error {
	if o.numInsts < 0 {
		return fmt.Errorf("-n must be >= 0")
	}
	if o.numRegs < 1 || o.numRegs > 256 {
		return fmt.Errorf("-regs must be in [1, 256]")
	}
	if o.loadFrac < 0 || o.storeFrac < 0 || o.branchFrac < 0 ||
		o.loadFrac+o.storeFrac+o.branchFrac > 1 {
		return fmt.Errorf("instruction mix fractions must be >= 0 and sum to at most 1")
	}
	if o.exceptionEvery < 0 {
		return fmt.Errorf("-exception-every must be >= 0")
	}
	return nil
}

func writeTrace(path string, opts genOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer f.Close()

	var out io.Writer = f
	var zw *gzip.Writer
	if opts.compress {
		zw = gzip.NewWriter(f)
		out = zw
	}

	w := trace.NewWriter(out)
	if err := generate(w, opts); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush trace: %w", err)
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	}

	return f.Close()
}

// generate writes numInsts random records. Memory addresses are drawn from a
// small working set so that cache models see reuse.
func generate(w *trace.Writer, opts genOptions) error {
	rng := rand.New(rand.NewSource(opts.seed))
	pc := uint64(0x400000)

	reg := func() int { return rng.Intn(opts.numRegs) }
	addr := func() uint64 { return uint64(rng.Intn(4096)) * 8 }

	for i := 1; i <= opts.numInsts; i++ {
		var rec trace.Record

		x := rng.Float64()
		switch {
		case x < opts.loadFrac:
			rec = trace.Load(reg(), reg(), addr())
		case x < opts.loadFrac+opts.storeFrac:
			rec = trace.Store(reg(), reg(), addr())
		case x < opts.loadFrac+opts.storeFrac+opts.branchFrac:
			rec = trace.Op(insts.OpCBR, -1, reg(), reg())
			rec.BrDir = uint8(rng.Intn(2))
			rec.BrTarget = pc + uint64(rng.Intn(64))*4
		default:
			rec = trace.ALU(reg(), reg(), reg())
		}

		rec = rec.WithPC(pc)
		pc += 4

		if opts.exceptionEvery > 0 && i%opts.exceptionEvery == 0 {
			rec = rec.WithException(uint32(opts.handlerCost))
		}

		if err := w.Write(rec); err != nil {
			return err
		}
	}

	return nil
}
