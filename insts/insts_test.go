package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/insts"
)

var _ = Describe("Instruction", func() {
	It("should start with no registers and no tags", func() {
		inst := insts.New(7, insts.OpALU)

		Expect(inst.InstNum).To(Equal(uint64(7)))
		Expect(inst.DestReg).To(Equal(insts.NoReg))
		Expect(inst.Src1Reg).To(Equal(insts.NoReg))
		Expect(inst.Src2Reg).To(Equal(insts.NoReg))
		Expect(inst.DestTag).To(Equal(insts.NoTag))
		Expect(inst.Src1Tag).To(Equal(insts.NoTag))
		Expect(inst.Src2Tag).To(Equal(insts.NoTag))
		Expect(inst.HasDest()).To(BeFalse())
	})

	It("should report a destination once one is set", func() {
		inst := insts.New(1, insts.OpLoad)
		inst.DestReg = 0
		Expect(inst.HasDest()).To(BeTrue())
	})

	It("should need both sources ready", func() {
		inst := insts.New(1, insts.OpALU)
		inst.Src1Ready = true
		Expect(inst.SourcesReady()).To(BeFalse())
		inst.Src2Ready = true
		Expect(inst.SourcesReady()).To(BeTrue())
	})

	It("should answer readiness on a value that is not addressable", func() {
		lookup := func() insts.Instruction { return insts.New(1, insts.OpALU) }
		Expect(lookup().SourcesReady()).To(BeFalse())
		Expect(lookup().HasDest()).To(BeFalse())
		Expect(lookup().RaisesException()).To(BeFalse())
	})

	Describe("RaisesException", func() {
		It("should require a nonzero handler cost", func() {
			inst := insts.New(1, insts.OpALU)
			inst.IsException = true
			Expect(inst.RaisesException()).To(BeFalse())

			inst.ExceptionHandlerCost = 10
			Expect(inst.RaisesException()).To(BeTrue())
		})

		It("should ignore a cost without the exception flag", func() {
			inst := insts.New(1, insts.OpALU)
			inst.ExceptionHandlerCost = 10
			Expect(inst.RaisesException()).To(BeFalse())
		})
	})

	DescribeTable("OpType",
		func(op insts.OpType, name string, memory bool) {
			Expect(op.String()).To(Equal(name))
			Expect(op.IsMemory()).To(Equal(memory))
		},
		Entry("ALU", insts.OpALU, "ALU", false),
		Entry("load", insts.OpLoad, "LD", true),
		Entry("store", insts.OpStore, "ST", true),
		Entry("branch", insts.OpCBR, "CBR", false),
		Entry("other", insts.OpOther, "OTHER", false),
		Entry("out of range", insts.OpType(9), "OP(9)", false),
	)

	It("should format the halt sentinel", func() {
		inst := insts.New(1, insts.OpOther)
		inst.IsHalt = true
		Expect(inst.String()).To(Equal("HALT"))
	})
})
