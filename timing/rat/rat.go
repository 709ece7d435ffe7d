// Package rat implements the Register Alias Table, which maps architectural
// registers to the ROB tag of their youngest in-flight producer.
package rat

import "github.com/sarchlab/oosim/insts"

// DefaultNumRegs is the number of architectural registers tracked by default.
const DefaultNumRegs = 32

// Entry is the mapping of one architectural register.
type Entry struct {
	Valid bool
	Tag   int
}

// RAT is the register alias table.
type RAT struct {
	entries []Entry
}

// New creates a RAT for numRegs architectural registers.
func New(numRegs int) *RAT {
	t := &RAT{entries: make([]Entry, numRegs)}
	t.Flush()
	return t
}

// NumRegs returns the number of tracked registers.
func (t *RAT) NumRegs() int {
	return len(t.entries)
}

func (t *RAT) tracked(reg int) bool {
	return reg >= 0 && reg < len(t.entries)
}

// GetRemap returns the producer tag of reg. ok is false when the value is in
// the committed architectural state, which is also the answer for unused or
// out-of-range registers.
func (t *RAT) GetRemap(reg int) (tag int, ok bool) {
	if !t.tracked(reg) || !t.entries[reg].Valid {
		return insts.NoTag, false
	}
	return t.entries[reg].Tag, true
}

// SetRemap makes tag the producer of reg. The newest write always wins.
func (t *RAT) SetRemap(reg, tag int) {
	if !t.tracked(reg) {
		return
	}
	t.entries[reg] = Entry{Valid: true, Tag: tag}
}

// ResetEntry invalidates the mapping of reg.
func (t *RAT) ResetEntry(reg int) {
	if !t.tracked(reg) {
		return
	}
	t.entries[reg] = Entry{Tag: insts.NoTag}
}

// ResetIfMapped invalidates the mapping of reg only if it still points at tag.
// A younger rename of the same register is left untouched.
func (t *RAT) ResetIfMapped(reg, tag int) bool {
	cur, ok := t.GetRemap(reg)
	if !ok || cur != tag {
		return false
	}
	t.ResetEntry(reg)
	return true
}

// Flush invalidates every mapping.
func (t *RAT) Flush() {
	for i := range t.entries {
		t.entries[i] = Entry{Tag: insts.NoTag}
	}
}

// Entry returns a copy of the mapping of reg.
func (t *RAT) Entry(reg int) Entry {
	if !t.tracked(reg) {
		return Entry{Tag: insts.NoTag}
	}
	return t.entries[reg]
}

// ValidTags returns the register to tag mapping of all valid entries.
func (t *RAT) ValidTags() map[int]int {
	m := make(map[int]int)
	for reg, e := range t.entries {
		if e.Valid {
			m[reg] = e.Tag
		}
	}
	return m
}
