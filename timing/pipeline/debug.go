package pipeline

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	validColor  = color.New(color.FgGreen)
	stallColor  = color.New(color.FgRed)
)

// PrintState dumps the latches, RAT, ROB and EXEQ to w.
func (p *Pipeline) PrintState(w io.Writer) {
	headerColor.Fprintf(w, "=== cycle %d  state %s ===\n", p.stats.Cycles, p.recovery.state)

	printLatches(w, "FE", p.feLatch)
	printLatches(w, "ID", p.idLatch)
	printLatches(w, "SC", p.scLatch)
	printLatches(w, "EX", p.exLatch)

	headerColor.Fprintln(w, "RAT")
	tags := p.rat.ValidTags()
	regs := make([]int, 0, len(tags))
	for reg := range tags {
		regs = append(regs, reg)
	}
	sort.Ints(regs)
	for _, reg := range regs {
		fmt.Fprintf(w, "  r%-3d -> %d\n", reg, tags[reg])
	}

	headerColor.Fprintf(w, "ROB head=%d tail=%d\n", p.rob.Head(), p.rob.Tail())
	for tag := 0; tag < p.rob.Size(); tag++ {
		e := p.rob.Entry(tag)
		if !e.Valid {
			continue
		}
		c := validColor
		if !e.Ready {
			c = stallColor
		}
		c.Fprintf(w, "  [%3d] exec=%t ready=%t %s\n", tag, e.Exec, e.Ready, e.Inst)
	}

	headerColor.Fprintf(w, "EXEQ %d/%d\n", p.exeq.Len(), p.exeq.Size())
	for _, inst := range p.exeq.Pending() {
		fmt.Fprintf(w, "  %s wait=%d\n", inst, inst.ExeWaitCycles)
	}
}

func printLatches(w io.Writer, name string, latches []Latch) {
	fmt.Fprintf(w, "%s:", name)
	for _, l := range latches {
		switch {
		case l.Valid:
			validColor.Fprintf(w, " [%s]", l.Inst)
		case l.Stall:
			stallColor.Fprint(w, " [stall]")
		default:
			fmt.Fprint(w, " [-]")
		}
	}
	fmt.Fprintln(w)
}
