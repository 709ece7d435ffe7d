package pipeline

import (
	"fmt"

	"github.com/sarchlab/oosim/insts"
)

// ExceptionState is the state of the precise exception state machine.
type ExceptionState int

const (
	// TraceFetch is normal operation: fetch reads the trace.
	TraceFetch ExceptionState = iota
	// HandlingException stalls fetch while the handler runs.
	HandlingException
	// StartingRecovery is entered when the handler finishes; the next fetch
	// begins replaying the recovery window.
	StartingRecovery
	// InRecovery replays the recovery window.
	InRecovery
	// FinishedRecovery waits for the last replayed instruction to retire.
	FinishedRecovery
)

// String returns the name of the state.
func (s ExceptionState) String() string {
	switch s {
	case TraceFetch:
		return "TRACE_FETCH"
	case HandlingException:
		return "HANDLING_EXCEPTION"
	case StartingRecovery:
		return "STARTING_RECOVERY"
	case InRecovery:
		return "IN_RECOVERY"
	case FinishedRecovery:
		return "FINISHED_RECOVERY"
	default:
		return fmt.Sprintf("ExceptionState(%d)", int(s))
	}
}

// recovery holds the exception state machine. window keeps every fetched
// instruction that has not retired yet, oldest first. next indexes the next
// window entry to replay.
type recovery struct {
	state            ExceptionState
	window           []insts.Instruction
	next             int
	remainingCycles  uint32
	lastRecoveryInst uint64
}

// ExceptionState returns the current state of the exception state machine.
func (p *Pipeline) ExceptionState() ExceptionState {
	return p.recovery.state
}

// RecoveryWindow returns a copy of the instructions retained for replay.
func (p *Pipeline) RecoveryWindow() []insts.Instruction {
	out := make([]insts.Instruction, len(p.recovery.window))
	copy(out, p.recovery.window)
	return out
}

// RemainingHandlerCycles returns the cycles left in the current handler.
func (p *Pipeline) RemainingHandlerCycles() uint32 {
	return p.recovery.remainingCycles
}

// raiseException is called by commit when a faulting instruction reaches the
// ROB head. It discards all speculative state at once and starts the handler.
// The faulting instruction stays at the front of the recovery window, so it is
// the first one replayed.
func (p *Pipeline) raiseException(inst insts.Instruction) {
	p.rob.Flush()
	p.rat.Flush()
	p.exeq.Flush()

	clearLatches(p.feLatch)
	clearLatches(p.idLatch)
	clearLatches(p.scLatch)
	p.exLatch = p.exLatch[:0]

	p.trimWindow(inst.InstNum - 1)
	p.recovery.next = 0
	p.nextDecode = inst.InstNum

	p.recovery.state = HandlingException
	p.recovery.remainingCycles = inst.ExceptionHandlerCost
	p.stats.Exceptions++

	p.invokeHook(HookPosException, inst)
}

// fetchDuringRecovery runs in place of the trace fetch whenever the state
// machine is not in TraceFetch.
func (p *Pipeline) fetchDuringRecovery() {
	switch p.recovery.state {
	case HandlingException:
		p.stats.HandlerCycles++
		p.recovery.remainingCycles--
		if p.recovery.remainingCycles == 0 {
			p.recovery.state = StartingRecovery
		}

	case StartingRecovery, InRecovery:
		p.replay()

	case FinishedRecovery:
		// Fetch stays idle until the last replayed instruction retires.
	}
}

// replay refetches instructions from the recovery window into idle fetch
// lanes. Replayed instructions never raise an exception again.
func (p *Pipeline) replay() {
	for lane := range p.feLatch {
		if p.feLatch[lane].Busy() {
			continue
		}
		if p.recovery.next >= len(p.recovery.window) {
			break
		}

		inst := p.recovery.window[p.recovery.next]
		inst.IsException = false
		p.recovery.next++

		p.feLatch[lane] = Latch{Valid: true, Inst: inst}
		p.recovery.state = InRecovery
		p.stats.ReplayedInstructions++

		if p.recovery.next == len(p.recovery.window) {
			p.recovery.state = FinishedRecovery
			p.recovery.lastRecoveryInst = inst.InstNum
			return
		}
	}
}

// retireDuringRecovery is called by commit for every retired instruction.
func (p *Pipeline) retireDuringRecovery(inst insts.Instruction) {
	p.trimWindow(inst.InstNum)

	if p.recovery.state == FinishedRecovery && inst.InstNum >= p.recovery.lastRecoveryInst {
		p.recovery.state = TraceFetch
		p.invokeHook(HookPosRecoveryDone, inst)
	}
}

// trimWindow drops retained instructions up to and including instNum.
func (p *Pipeline) trimWindow(instNum uint64) {
	n := 0
	for n < len(p.recovery.window) && p.recovery.window[n].InstNum <= instNum {
		n++
	}
	p.recovery.window = p.recovery.window[n:]

	p.recovery.next -= n
	if p.recovery.next < 0 {
		p.recovery.next = 0
	}
}
