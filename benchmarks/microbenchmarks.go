package benchmarks

import (
	"github.com/sarchlab/oosim/insts"
	"github.com/sarchlab/oosim/trace"
)

// GetMicrobenchmarks returns the standard set of trace microbenchmarks. Each
// one stresses a single characteristic of the out-of-order core.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticIndependent(),
		dependencyChain(),
		loadUseShadow(),
		memoryStreaming(),
		memoryReuse(),
		branchMix(),
		exceptionReplay(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticIndependent(),
		dependencyChain(),
		loadUseShadow(),
	}
}

func withPCs(recs []trace.Record) []trace.Record {
	pc := uint64(0x1000)
	for i := range recs {
		recs[i] = recs[i].WithPC(pc)
		pc += 4
	}
	return recs
}

// 1. Independent ALU ops: measures raw throughput at the configured width.
func arithmeticIndependent() Benchmark {
	recs := make([]trace.Record, 0, 40)
	for i := 0; i < 40; i++ {
		recs = append(recs, trace.ALU(i%8, 8+i%8, 16+i%8))
	}
	return Benchmark{
		Name:        "arithmetic_independent",
		Description: "40 independent ALU ops - measures issue and commit throughput",
		Records:     withPCs(recs),
	}
}

// 2. Dependency chain: every op reads the previous result.
func dependencyChain() Benchmark {
	recs := make([]trace.Record, 0, 40)
	for i := 0; i < 40; i++ {
		recs = append(recs, trace.ALU(1, 1, 2))
	}
	return Benchmark{
		Name:        "dependency_chain",
		Description: "40 dependent ALU ops (r1 = r1 op r2) - measures wakeup latency",
		Records:     withPCs(recs),
	}
}

// 3. A load feeding one consumer, followed by independent work that an
// out-of-order scheduler can run in the load's shadow.
func loadUseShadow() Benchmark {
	var recs []trace.Record
	for i := 0; i < 8; i++ {
		recs = append(recs, trace.Load(1, 2, uint64(0x8000+i*64)))
		recs = append(recs, trace.ALU(3, 1, 1))
		for j := 0; j < 4; j++ {
			recs = append(recs, trace.ALU(4+j, 10+j, 10+j))
		}
	}
	return Benchmark{
		Name:        "load_use_shadow",
		Description: "loads with a dependent op and 4 independent ops each - measures OOO latency hiding",
		Records:     withPCs(recs),
	}
}

// 4. Streaming loads touching a new block every time.
func memoryStreaming() Benchmark {
	recs := make([]trace.Record, 0, 64)
	for i := 0; i < 64; i++ {
		recs = append(recs, trace.Load(i%8, 9, uint64(0x10000+i*64)))
	}
	return Benchmark{
		Name:        "memory_streaming",
		Description: "64 loads to distinct blocks - every access misses",
		Records:     withPCs(recs),
	}
}

// 5. Loads and stores cycling over four blocks.
func memoryReuse() Benchmark {
	recs := make([]trace.Record, 0, 64)
	for i := 0; i < 64; i++ {
		addr := uint64(0x20000 + (i%4)*64)
		if i%3 == 0 {
			recs = append(recs, trace.Store(i%8, 9, addr))
		} else {
			recs = append(recs, trace.Load(i%8, 9, addr))
		}
	}
	return Benchmark{
		Name:        "memory_reuse",
		Description: "64 accesses over 4 blocks - cache-friendly working set",
		Records:     withPCs(recs),
	}
}

// 6. Compare-and-branch pairs.
func branchMix() Benchmark {
	var recs []trace.Record
	for i := 0; i < 20; i++ {
		recs = append(recs, trace.ALU(1, 1, 2))
		br := trace.Op(insts.OpCBR, -1, 1, -1)
		br.BrDir = uint8(i % 2)
		recs = append(recs, br)
	}
	return Benchmark{
		Name:        "branch_mix",
		Description: "20 ALU/branch pairs - branches wait on the ALU result",
		Records:     withPCs(recs),
	}
}

// 7. Faulting instructions spread through an ALU stream. Only has an effect
// with exceptions enabled.
func exceptionReplay() Benchmark {
	recs := make([]trace.Record, 0, 40)
	for i := 0; i < 40; i++ {
		rec := trace.ALU(i%8, 8+i%8, 16+i%8)
		if i%10 == 5 {
			rec = rec.WithException(20)
		}
		recs = append(recs, rec)
	}
	return Benchmark{
		Name:        "exception_replay",
		Description: "40 ALU ops with a faulting op every 10 - measures flush and replay cost",
		Records:     withPCs(recs),
	}
}
