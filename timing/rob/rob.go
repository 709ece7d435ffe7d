// Package rob implements the Reorder Buffer.
//
// The ROB is a fixed-size circular array. An entry's slot index is its tag, the
// name under which consumers wait for its result. Entries are allocated at the
// tail in program order and retired from the head in the same order, so the
// head is always the oldest in-flight instruction.
package rob

import (
	"errors"

	"github.com/sarchlab/oosim/insts"
)

// DefaultNumEntries is the default ROB capacity.
const DefaultNumEntries = 32

// MaxEntries is the largest supported ROB capacity.
const MaxEntries = 256

// ErrFull is returned by Insert when the tail slot is occupied.
var ErrFull = errors.New("rob: no free entry at tail")

// Entry is one ROB slot.
type Entry struct {
	// Valid is true while the slot holds an in-flight instruction.
	Valid bool
	// Exec is true once the instruction has been scheduled.
	Exec bool
	// Ready is true once the result is available.
	Ready bool

	Inst insts.Instruction
}

// ROB is the reorder buffer.
type ROB struct {
	entries []Entry
	head    int
	tail    int
}

// New creates a ROB with the given number of entries.
func New(numEntries int) *ROB {
	return &ROB{entries: make([]Entry, numEntries)}
}

// Size returns the capacity.
func (r *ROB) Size() int {
	return len(r.entries)
}

// Head returns the tag of the oldest slot.
func (r *ROB) Head() int {
	return r.head
}

// Tail returns the tag the next Insert will allocate.
func (r *ROB) Tail() int {
	return r.tail
}

// Entry returns a copy of the slot at tag.
func (r *ROB) Entry(tag int) Entry {
	return r.entries[tag]
}

// Occupancy returns the number of valid entries.
func (r *ROB) Occupancy() int {
	n := 0
	for i := range r.entries {
		if r.entries[i].Valid {
			n++
		}
	}
	return n
}

// IsEmpty returns true if no entry is valid.
func (r *ROB) IsEmpty() bool {
	return r.Occupancy() == 0
}

// CheckSpace returns true if the tail slot is free.
func (r *ROB) CheckSpace() bool {
	return !r.entries[r.tail].Valid
}

// Insert allocates the tail slot for inst and returns its tag. The stored copy
// gets the tag as its destination tag. Call CheckSpace first.
func (r *ROB) Insert(inst insts.Instruction) (int, error) {
	if !r.CheckSpace() {
		return insts.NoTag, ErrFull
	}

	tag := r.tail
	inst.DestTag = tag
	r.entries[tag] = Entry{Valid: true, Inst: inst}
	r.tail = (r.tail + 1) % len(r.entries)

	return tag, nil
}

// CheckReady returns true if tag names a valid entry whose result is ready.
func (r *ROB) CheckReady(tag int) bool {
	if tag < 0 || tag >= len(r.entries) {
		return false
	}
	e := &r.entries[tag]
	return e.Valid && e.Ready
}

// MarkExec records that the entry at tag has been scheduled.
func (r *ROB) MarkExec(tag int) {
	r.entries[tag].Exec = true
}

// MarkReady records that the entry at tag has produced its result and wakes up
// every other valid entry waiting on tag.
func (r *ROB) MarkReady(tag int) {
	r.entries[tag].Ready = true
	r.Wakeup(tag)
}

// Wakeup broadcasts the availability of tag to all waiting sources.
func (r *ROB) Wakeup(tag int) {
	for i := range r.entries {
		e := &r.entries[i]
		if !e.Valid || i == tag {
			continue
		}
		if e.Inst.Src1Tag == tag {
			e.Inst.Src1Ready = true
			e.Inst.Src1Tag = insts.NoTag
		}
		if e.Inst.Src2Tag == tag {
			e.Inst.Src2Ready = true
			e.Inst.Src2Tag = insts.NoTag
		}
	}
}

// CheckHead returns true if the oldest entry is ready to commit.
func (r *ROB) CheckHead() bool {
	e := &r.entries[r.head]
	return e.Valid && e.Ready
}

// RemoveHead retires the oldest entry and returns its instruction. Call
// CheckHead first.
func (r *ROB) RemoveHead() insts.Instruction {
	e := &r.entries[r.head]
	inst := e.Inst
	e.Valid = false
	e.Exec = false
	e.Ready = false
	r.head = (r.head + 1) % len(r.entries)
	return inst
}

// Flush invalidates every entry and resets both pointers.
func (r *ROB) Flush() {
	for i := range r.entries {
		r.entries[i].Valid = false
		r.entries[i].Exec = false
		r.entries[i].Ready = false
	}
	r.head = 0
	r.tail = 0
}

// InOrder calls fn with the tag and entry of every valid slot from the head
// towards the tail, oldest first. Iteration stops when fn returns false.
// The entry pointer may be used to modify the slot.
func (r *ROB) InOrder(fn func(tag int, e *Entry) bool) {
	n := len(r.entries)
	for i := 0; i < n; i++ {
		tag := (r.head + i) % n
		e := &r.entries[tag]
		if !e.Valid {
			return
		}
		if !fn(tag, e) {
			return
		}
	}
}
