package trace

import "github.com/sarchlab/oosim/insts"

// Op builds a record of the given class. A negative register means the operand
// is not used.
func Op(op insts.OpType, dest, src1, src2 int) Record {
	rec := Record{OpType: uint8(op)}
	if dest >= 0 {
		rec.Dest = uint8(dest)
		rec.DestNeeded = 1
	}
	if src1 >= 0 {
		rec.Src1Reg = uint8(src1)
		rec.Src1Needed = 1
	}
	if src2 >= 0 {
		rec.Src2Reg = uint8(src2)
		rec.Src2Needed = 1
	}
	return rec
}

// ALU builds an ALU record.
func ALU(dest, src1, src2 int) Record {
	return Op(insts.OpALU, dest, src1, src2)
}

// Load builds a load of addr into dest, with src as the address register.
func Load(dest, src int, addr uint64) Record {
	rec := Op(insts.OpLoad, dest, src, -1)
	rec.MemAddr = addr
	rec.MemRead = 1
	return rec
}

// Store builds a store of data to addr, with addrReg as the address register.
func Store(data, addrReg int, addr uint64) Record {
	rec := Op(insts.OpStore, -1, data, addrReg)
	rec.MemAddr = addr
	rec.MemWrite = 1
	return rec
}

// WithException marks the record as raising an exception with the given
// handler cost.
func (r Record) WithException(cost uint32) Record {
	r.IsException = 1
	r.ExceptionHandlerCost = cost
	return r
}

// WithPC sets the instruction address.
func (r Record) WithPC(pc uint64) Record {
	r.InstAddr = pc
	return r
}
