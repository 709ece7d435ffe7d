// Package insts provides the decoded instruction record that flows through the
// out-of-order pipeline.
//
// An Instruction is created by the fetch stage from a trace record and is copied
// from latch to latch, into the ROB and the EXEQ. Only timing state is modeled;
// there are no operand values.
package insts

import "fmt"

// OpType is the operation class of an instruction.
type OpType uint8

// Operation classes, numbered as in the trace format.
const (
	OpALU   OpType = iota // ALU (add, sub, mul, div)
	OpLoad                // load
	OpStore               // store
	OpCBR                 // conditional branch
	OpOther               // everything else
	NumOpTypes
)

// String returns the short name of the operation class.
func (o OpType) String() string {
	switch o {
	case OpALU:
		return "ALU"
	case OpLoad:
		return "LD"
	case OpStore:
		return "ST"
	case OpCBR:
		return "CBR"
	case OpOther:
		return "OTHER"
	default:
		return fmt.Sprintf("OP(%d)", uint8(o))
	}
}

// IsMemory returns true for loads and stores.
func (o OpType) IsMemory() bool {
	return o == OpLoad || o == OpStore
}

const (
	// NoReg marks an unused register operand.
	NoReg = -1
	// NoTag marks an operand that is not renamed to an in-flight producer; its
	// value lives in the committed architectural state.
	NoTag = -1
)

// Instruction holds the per-instruction state threaded through every stage.
type Instruction struct {
	// InstNum is the fetch sequence number. It is the identity of the
	// instruction and never changes after fetch.
	InstNum uint64

	// PC is the instruction address from the trace.
	PC uint64

	// Op is the operation class.
	Op OpType

	// Architectural registers, NoReg when unused.
	DestReg int
	Src1Reg int
	Src2Reg int

	// Renamed tags (ROB slot indices), NoTag when not renamed.
	DestTag int
	Src1Tag int
	Src2Tag int

	// Source readiness.
	Src1Ready bool
	Src2Ready bool

	// ExeWaitCycles is the remaining execution latency while in the EXEQ.
	ExeWaitCycles uint64

	// MemAddr is the load/store address.
	MemAddr uint64

	// IsException marks an instruction that raises a modeled exception when it
	// commits. ExceptionHandlerCost is the handler latency in cycles.
	IsException          bool
	ExceptionHandlerCost uint32

	// IsHalt marks the end-of-trace sentinel emitted by fetch.
	IsHalt bool
}

// New returns an instruction with all registers and tags cleared.
func New(instNum uint64, op OpType) Instruction {
	return Instruction{
		InstNum: instNum,
		Op:      op,
		DestReg: NoReg,
		Src1Reg: NoReg,
		Src2Reg: NoReg,
		DestTag: NoTag,
		Src1Tag: NoTag,
		Src2Tag: NoTag,
	}
}

// HasDest returns true if the instruction writes a register.
func (i Instruction) HasDest() bool {
	return i.DestReg != NoReg
}

// SourcesReady returns true when both source operands are available.
func (i Instruction) SourcesReady() bool {
	return i.Src1Ready && i.Src2Ready
}

// RaisesException returns true if committing this instruction must trigger
// the exception handler.
func (i Instruction) RaisesException() bool {
	return i.IsException && i.ExceptionHandlerCost != 0
}

// String formats the instruction for debug output.
func (i Instruction) String() string {
	if i.IsHalt {
		return "HALT"
	}
	return fmt.Sprintf("#%d %s d=%d s1=%d s2=%d", i.InstNum, i.Op, i.DestReg, i.Src1Reg, i.Src2Reg)
}
