package pipeline_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/timing/pipeline"
)

var _ = Describe("Config", func() {
	It("should default to a valid 1-wide in-order pipeline", func() {
		config := pipeline.DefaultConfig()
		Expect(config.Validate()).To(Succeed())
		Expect(config.Width).To(Equal(1))
		Expect(config.SchedPolicy).To(Equal(pipeline.SchedInOrder))
		Expect(config.Exceptions).To(BeFalse())
		Expect(config.EXEQEntries()).To(Equal(config.NumROBEntries))
	})

	DescribeTable("Validate",
		func(mutate func(*pipeline.Config), ok bool) {
			config := pipeline.DefaultConfig()
			mutate(&config)
			if ok {
				Expect(config.Validate()).To(Succeed())
			} else {
				Expect(config.Validate()).NotTo(Succeed())
			}
		},
		Entry("width 8", func(c *pipeline.Config) { c.Width = 8 }, true),
		Entry("width 0", func(c *pipeline.Config) { c.Width = 0 }, false),
		Entry("width 9", func(c *pipeline.Config) { c.Width = 9 }, false),
		Entry("rob 256", func(c *pipeline.Config) { c.NumROBEntries = 256 }, true),
		Entry("rob 0", func(c *pipeline.Config) { c.NumROBEntries = 0 }, false),
		Entry("rob 257", func(c *pipeline.Config) { c.NumROBEntries = 257 }, false),
		Entry("exeq below width", func(c *pipeline.Config) {
			c.Width = 4
			c.NumEXEQEntries = 2
		}, false),
		Entry("negative exeq", func(c *pipeline.Config) { c.NumEXEQEntries = -1 }, false),
		Entry("no arch regs", func(c *pipeline.Config) { c.NumArchRegs = 0 }, false),
		Entry("unknown policy", func(c *pipeline.Config) { c.SchedPolicy = 7 }, false),
	)

	DescribeTable("ParseSchedPolicy",
		func(in string, want pipeline.SchedPolicy) {
			got, err := pipeline.ParseSchedPolicy(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry(nil, "in-order", pipeline.SchedInOrder),
		Entry(nil, "0", pipeline.SchedInOrder),
		Entry(nil, "OOO", pipeline.SchedOutOfOrder),
		Entry(nil, " out-of-order ", pipeline.SchedOutOfOrder),
		Entry(nil, "1", pipeline.SchedOutOfOrder),
	)

	It("should reject an unknown policy name", func() {
		_, err := pipeline.ParseSchedPolicy("speculative")
		Expect(err).To(MatchError(ContainSubstring("speculative")))
	})

	It("should read the policy by name from JSON", func() {
		config := pipeline.DefaultConfig()
		err := json.Unmarshal([]byte(`{"pipe_width": 4, "sched_policy": "ooo"}`), &config)
		Expect(err).NotTo(HaveOccurred())
		Expect(config.Width).To(Equal(4))
		Expect(config.SchedPolicy).To(Equal(pipeline.SchedOutOfOrder))
		Expect(config.NumROBEntries).To(Equal(32))

		out, err := json.Marshal(config)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring(`"sched_policy":"out-of-order"`))
	})
})
