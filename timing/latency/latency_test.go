package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/insts"
	"github.com/sarchlab/oosim/timing/latency"
)

var _ = Describe("Latency", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	Describe("Default Timing Values", func() {
		It("should have correct ALU latency", func() {
			Expect(table.Config().ALULatency).To(Equal(uint64(1)))
		})

		It("should have correct load latency", func() {
			Expect(table.Config().LoadLatency).To(Equal(uint64(4)))
		})

		It("should have correct store latency", func() {
			Expect(table.Config().StoreLatency).To(Equal(uint64(1)))
		})
	})

	DescribeTable("GetLatency",
		func(op insts.OpType, want uint64) {
			Expect(table.GetLatency(op)).To(Equal(want))
		},
		Entry("ALU", insts.OpALU, uint64(1)),
		Entry("branch", insts.OpCBR, uint64(1)),
		Entry("other", insts.OpOther, uint64(1)),
		Entry("load", insts.OpLoad, uint64(4)),
		Entry("store", insts.OpStore, uint64(1)),
		Entry("unknown class", insts.OpType(42), uint64(1)),
	)

	Describe("AccessLatency", func() {
		It("should ignore the address", func() {
			Expect(table.AccessLatency(0x0, false)).To(Equal(uint64(4)))
			Expect(table.AccessLatency(0xdeadbeef, false)).To(Equal(uint64(4)))
		})

		It("should return the store latency for writes", func() {
			Expect(table.AccessLatency(0x40, true)).To(Equal(uint64(1)))
		})
	})

	Describe("Custom Configuration", func() {
		It("should use custom config values", func() {
			config := &latency.TimingConfig{
				ALULatency:    2,
				BranchLatency: 3,
				OtherLatency:  5,
				LoadLatency:   8,
				StoreLatency:  2,
			}
			customTable := latency.NewTableWithConfig(config)

			Expect(customTable.GetLatency(insts.OpALU)).To(Equal(uint64(2)))
			Expect(customTable.GetLatency(insts.OpCBR)).To(Equal(uint64(3)))
			Expect(customTable.GetLatency(insts.OpOther)).To(Equal(uint64(5)))
			Expect(customTable.AccessLatency(0, false)).To(Equal(uint64(8)))
			Expect(customTable.AccessLatency(0, true)).To(Equal(uint64(2)))
		})
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			config := latency.DefaultTimingConfig()
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Validation", func() {
		It("should reject zero ALU latency", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero other latency", func() {
			config := latency.DefaultTimingConfig()
			config.OtherLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero load latency", func() {
			config := latency.DefaultTimingConfig()
			config.LoadLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultTimingConfig()
			clone := original.Clone()

			clone.ALULatency = 100

			Expect(original.ALULatency).To(Equal(uint64(1)))
			Expect(clone.ALULatency).To(Equal(uint64(100)))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			tempDir = GinkgoT().TempDir()
		})

		It("should save and load config", func() {
			original := latency.DefaultTimingConfig()
			original.ALULatency = 5
			original.LoadLatency = 10

			path := filepath.Join(tempDir, "timing.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ALULatency).To(Equal(uint64(5)))
			Expect(loaded.LoadLatency).To(Equal(uint64(10)))
		})

		It("should keep defaults for fields missing from the file", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"load_latency": 7}`), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.LoadLatency).To(Equal(uint64(7)))
			Expect(loaded.StoreLatency).To(Equal(uint64(1)))
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig("/nonexistent/path/timing.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			Expect(os.WriteFile(path, []byte("not valid json"), 0644)).To(Succeed())

			_, err := latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
