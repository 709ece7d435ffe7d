package rat_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/insts"
	"github.com/sarchlab/oosim/timing/rat"
)

var _ = Describe("RAT", func() {
	var t *rat.RAT

	BeforeEach(func() {
		t = rat.New(rat.DefaultNumRegs)
	})

	It("should start with every register in architectural state", func() {
		for reg := 0; reg < t.NumRegs(); reg++ {
			_, ok := t.GetRemap(reg)
			Expect(ok).To(BeFalse())
		}
		Expect(t.Entry(0).Tag).To(Equal(insts.NoTag))
	})

	It("should return the newest producer", func() {
		t.SetRemap(3, 5)
		t.SetRemap(3, 9)

		tag, ok := t.GetRemap(3)
		Expect(ok).To(BeTrue())
		Expect(tag).To(Equal(9))
	})

	It("should ignore registers it does not track", func() {
		t.SetRemap(insts.NoReg, 1)
		t.SetRemap(200, 1)

		_, ok := t.GetRemap(insts.NoReg)
		Expect(ok).To(BeFalse())
		_, ok = t.GetRemap(200)
		Expect(ok).To(BeFalse())
		Expect(t.ValidTags()).To(BeEmpty())
	})

	Describe("ResetIfMapped", func() {
		It("should clear the mapping when the tag is still current", func() {
			t.SetRemap(1, 4)

			Expect(t.ResetIfMapped(1, 4)).To(BeTrue())
			_, ok := t.GetRemap(1)
			Expect(ok).To(BeFalse())
		})

		It("should keep a younger rename", func() {
			t.SetRemap(1, 4)
			t.SetRemap(1, 6)

			Expect(t.ResetIfMapped(1, 4)).To(BeFalse())
			tag, ok := t.GetRemap(1)
			Expect(ok).To(BeTrue())
			Expect(tag).To(Equal(6))
		})
	})

	It("should flush every mapping", func() {
		t.SetRemap(1, 1)
		t.SetRemap(2, 2)
		Expect(t.ValidTags()).To(Equal(map[int]int{1: 1, 2: 2}))

		t.Flush()
		Expect(t.ValidTags()).To(BeEmpty())

		t.Flush()
		Expect(t.ValidTags()).To(BeEmpty())
	})
})
