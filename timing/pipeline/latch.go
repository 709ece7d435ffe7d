package pipeline

import "github.com/sarchlab/oosim/insts"

// Latch holds one lane of state between two stages.
type Latch struct {
	// Valid indicates the lane holds an instruction. An invalid lane is a
	// bubble.
	Valid bool

	// Stall freezes the upstream stage from writing into this lane.
	Stall bool

	Inst insts.Instruction
}

// Busy returns true if the upstream stage must not write into the lane.
func (l *Latch) Busy() bool {
	return l.Valid || l.Stall
}

// Clear resets the latch to an empty bubble.
func (l *Latch) Clear() {
	*l = Latch{}
}

func clearLatches(latches []Latch) {
	for i := range latches {
		latches[i].Clear()
	}
}

func copyLatches(latches []Latch) []Latch {
	out := make([]Latch, len(latches))
	copy(out, latches)
	return out
}
