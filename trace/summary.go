package trace

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/btree"

	"github.com/sarchlab/oosim/insts"
)

// Summary holds the static statistics of a trace.
type Summary struct {
	NumInst    uint64
	OpCounts   [insts.NumOpTypes]uint64
	UniquePCs  uint64
	Exceptions uint64
}

// OpPercent returns the share of the given class in percent.
func (s Summary) OpPercent(op insts.OpType) float64 {
	if s.NumInst == 0 {
		return 0
	}
	return 100.0 * float64(s.OpCounts[op]) / float64(s.NumInst)
}

type pcItem uint64

func (a pcItem) Less(b btree.Item) bool {
	return a < b.(pcItem)
}

// Summarize consumes the reader and counts instructions by class, distinct
// instruction addresses and exceptional instructions.
func Summarize(r *Reader) (Summary, error) {
	var s Summary
	pcs := btree.New(32)

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s, err
		}

		s.NumInst++
		if rec.OpType < uint8(insts.NumOpTypes) {
			s.OpCounts[rec.OpType]++
		}
		if rec.IsException != 0 {
			s.Exceptions++
		}
		pcs.ReplaceOrInsert(pcItem(rec.InstAddr))
	}

	s.UniquePCs = uint64(pcs.Len())
	return s, nil
}

// Fprint writes the summary in the report format.
func (s Summary) Fprint(w io.Writer) {
	fmt.Fprintf(w, "Trace Instructions: %d\n", s.NumInst)
	fmt.Fprintf(w, "Unique PCs: %d\n", s.UniquePCs)
	fmt.Fprintf(w, "Exceptions: %d\n", s.Exceptions)
	for op := insts.OpType(0); op < insts.NumOpTypes; op++ {
		fmt.Fprintf(w, "  %-5s %10d (%6.3f%%)\n", op, s.OpCounts[op], s.OpPercent(op))
	}
}
