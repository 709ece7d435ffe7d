package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/oosim/insts"
	"github.com/sarchlab/oosim/timing/rob"
)

// fetch fills every idle fetch lane with the next trace instruction. While an
// exception is being handled or recovered, the recovery state machine owns
// the fetch stage instead.
func (p *Pipeline) fetch() error {
	if p.config.Exceptions && p.recovery.state != TraceFetch {
		p.fetchDuringRecovery()
		return nil
	}

	for lane := range p.feLatch {
		if p.feLatch[lane].Busy() {
			continue
		}
		if p.fetchDone {
			return nil
		}

		rec, err := p.source.Next()
		if errors.Is(err, io.EOF) {
			p.endOfTrace(lane)
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}

		p.instNumTracker++
		inst := rec.Instruction(p.instNumTracker)

		if p.config.Exceptions {
			p.recovery.window = append(p.recovery.window, inst)
		}

		p.feLatch[lane] = Latch{Valid: true, Inst: inst}
	}

	return nil
}

// endOfTrace records the last sequence number and parks the halt sentinel in
// the lane. The sentinel is never decoded. If every instruction has already
// retired, which happens for an empty trace or when recovery replayed the
// tail of the trace before fetch saw its end, the pipeline halts here.
func (p *Pipeline) endOfTrace(lane int) {
	p.haltInstNum = p.instNumTracker
	p.fetchDone = true

	sentinel := insts.New(^uint64(0), insts.OpOther)
	sentinel.IsHalt = true
	p.feLatch[lane] = Latch{Valid: true, Inst: sentinel}

	if p.lastRetired >= p.haltInstNum {
		p.halted = true
	}
}

// decode moves fetched instructions into free decode lanes strictly in
// sequence-number order, whichever fetch lane they sit in.
func (p *Pipeline) decode() {
	for i := range p.idLatch {
		if p.idLatch[i].Busy() {
			continue
		}

		j := p.findFetched(p.nextDecode)
		if j < 0 {
			return
		}

		p.idLatch[i] = Latch{Valid: true, Inst: p.feLatch[j].Inst}
		p.feLatch[j].Clear()
		p.nextDecode++
	}
}

func (p *Pipeline) findFetched(instNum uint64) int {
	for j := range p.feLatch {
		if p.feLatch[j].Valid && p.feLatch[j].Inst.InstNum == instNum {
			return j
		}
	}
	return -1
}

// issue renames decoded instructions oldest first and allocates their ROB
// entries. When the ROB is full the oldest waiting instruction stays in its
// latch and is retried next cycle; nothing younger may pass it.
func (p *Pipeline) issue() {
	for {
		lane := p.oldestDecoded()
		if lane < 0 {
			return
		}

		if !p.rob.CheckSpace() {
			p.idLatch[lane].Stall = true
			p.stats.ROBFullStalls++
			return
		}

		inst := p.idLatch[lane].Inst
		inst.Src1Tag, inst.Src1Ready = p.renameSource(inst.Src1Reg)
		inst.Src2Tag, inst.Src2Ready = p.renameSource(inst.Src2Reg)

		tag, err := p.rob.Insert(inst)
		if err != nil {
			return
		}

		if inst.HasDest() {
			p.rat.SetRemap(inst.DestReg, tag)
		}

		p.idLatch[lane].Clear()
	}
}

func (p *Pipeline) oldestDecoded() int {
	lane := -1
	for i := range p.idLatch {
		if !p.idLatch[i].Valid {
			continue
		}
		if lane < 0 || p.idLatch[i].Inst.InstNum < p.idLatch[lane].Inst.InstNum {
			lane = i
		}
	}
	return lane
}

// renameSource resolves a source register. An unmapped register is ready
// from the architectural state. A mapped one takes the producer's tag and is
// ready only if the producer has already written back.
func (p *Pipeline) renameSource(reg int) (int, bool) {
	tag, ok := p.rat.GetRemap(reg)
	if !ok {
		return insts.NoTag, true
	}
	return tag, p.rob.CheckReady(tag)
}

// schedule walks the ROB from the head and sends up to Width ready,
// unscheduled instructions to execute, oldest first. Under the in-order
// policy the walk stops at the first unscheduled instruction that is not
// ready.
func (p *Pipeline) schedule() {
	lane := 0
	width := len(p.scLatch)

	p.rob.InOrder(func(tag int, e *rob.Entry) bool {
		if lane >= width {
			return false
		}
		if e.Exec {
			return true
		}
		if !e.Inst.SourcesReady() {
			return p.config.SchedPolicy == SchedOutOfOrder
		}

		p.rob.MarkExec(tag)
		p.scLatch[lane] = Latch{Valid: true, Inst: e.Inst}
		lane++

		return true
	})
}

// execute moves scheduled instructions into the EXEQ, advances it by one
// cycle and drains everything that finished into the execute latches.
func (p *Pipeline) execute() error {
	for i := range p.scLatch {
		if !p.scLatch[i].Valid {
			continue
		}
		if err := p.exeq.Insert(p.scLatch[i].Inst); err != nil {
			return fmt.Errorf("execute: %w", err)
		}
		p.scLatch[i].Clear()
	}

	p.exeq.Cycle()

	for p.exeq.CheckDone() {
		inst, err := p.exeq.Remove()
		if err != nil {
			return fmt.Errorf("execute: %w", err)
		}
		p.exLatch = append(p.exLatch, Latch{Valid: true, Inst: inst})
	}

	return nil
}

// writeback marks finished instructions ready in the ROB, which wakes up
// their consumers in the same cycle.
func (p *Pipeline) writeback() {
	for i := range p.exLatch {
		if !p.exLatch[i].Valid {
			continue
		}

		inst := p.exLatch[i].Inst
		if p.rob.Entry(inst.DestTag).Valid && p.rob.Entry(inst.DestTag).Inst.InstNum == inst.InstNum {
			p.rob.MarkReady(inst.DestTag)
		}
	}

	p.exLatch = p.exLatch[:0]
}

// commit retires up to Width ready instructions from the ROB head in program
// order.
func (p *Pipeline) commit() {
	for i := 0; i < p.config.Width; i++ {
		if !p.rob.CheckHead() {
			return
		}

		inst := p.rob.RemoveHead()

		if p.config.Exceptions && inst.RaisesException() {
			p.raiseException(inst)
			return
		}

		p.stats.Instructions++
		p.lastRetired = inst.InstNum

		if inst.HasDest() {
			p.rat.ResetIfMapped(inst.DestReg, inst.DestTag)
		}

		p.invokeHook(HookPosCommit, inst)

		if p.config.Exceptions {
			p.retireDuringRecovery(inst)
		}

		if inst.InstNum >= p.haltInstNum {
			p.halted = true
			return
		}
	}
}
