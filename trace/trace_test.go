package trace_test

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/insts"
	"github.com/sarchlab/oosim/trace"
)

func encode(recs ...trace.Record) []byte {
	var buf bytes.Buffer
	w := trace.NewWriter(&buf)
	for _, rec := range recs {
		Expect(w.Write(rec)).To(Succeed())
	}
	Expect(w.Flush()).To(Succeed())
	return buf.Bytes()
}

func readAll(r interface {
	Next() (trace.Record, error)
}) []trace.Record {
	var out []trace.Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		Expect(err).NotTo(HaveOccurred())
		out = append(out, rec)
	}
}

var _ = Describe("Record", func() {
	It("should be 43 bytes on disk", func() {
		Expect(trace.RecordSize).To(Equal(43))
		Expect(encode(trace.ALU(1, 2, 3))).To(HaveLen(43))
	})

	It("should lay fields out little-endian in declaration order", func() {
		rec := trace.Record{InstAddr: 0x0102030405060708, OpType: 1, MemAddr: 0xAB}
		data := encode(rec)

		Expect(data[0]).To(Equal(byte(0x08)))
		Expect(data[7]).To(Equal(byte(0x01)))
		Expect(data[8]).To(Equal(byte(1)))
		Expect(data[17]).To(Equal(byte(0xAB)))
	})

	Describe("Instruction", func() {
		It("should map needed registers and drop unneeded ones", func() {
			rec := trace.Op(insts.OpALU, 3, 4, -1)
			inst := rec.Instruction(5)

			Expect(inst.InstNum).To(Equal(uint64(5)))
			Expect(inst.Op).To(Equal(insts.OpALU))
			Expect(inst.DestReg).To(Equal(3))
			Expect(inst.Src1Reg).To(Equal(4))
			Expect(inst.Src2Reg).To(Equal(insts.NoReg))
		})

		It("should carry memory address and PC", func() {
			inst := trace.Load(1, 2, 0x8000).WithPC(0x400).Instruction(1)

			Expect(inst.Op).To(Equal(insts.OpLoad))
			Expect(inst.MemAddr).To(Equal(uint64(0x8000)))
			Expect(inst.PC).To(Equal(uint64(0x400)))
		})

		It("should carry the exception and its cost", func() {
			inst := trace.ALU(1, 2, 3).WithException(25).Instruction(1)

			Expect(inst.IsException).To(BeTrue())
			Expect(inst.ExceptionHandlerCost).To(Equal(uint32(25)))
			Expect(inst.RaisesException()).To(BeTrue())
		})

		It("should map a store's data and address registers to sources", func() {
			inst := trace.Store(6, 7, 0x100).Instruction(1)

			Expect(inst.HasDest()).To(BeFalse())
			Expect(inst.Src1Reg).To(Equal(6))
			Expect(inst.Src2Reg).To(Equal(7))
		})
	})
})

var _ = Describe("Reader", func() {
	It("should read back what the writer wrote", func() {
		recs := []trace.Record{
			trace.ALU(1, 2, 3).WithPC(0x1000),
			trace.Load(4, 1, 0x8000).WithPC(0x1004),
			trace.Store(4, 1, 0x8008).WithPC(0x1008).WithException(9),
		}

		r := trace.NewReader(bytes.NewReader(encode(recs...)))

		Expect(readAll(r)).To(Equal(recs))
		Expect(r.Count()).To(Equal(uint64(3)))
	})

	It("should treat a truncated final record as end of trace", func() {
		data := encode(trace.ALU(1, 2, 3), trace.ALU(4, 5, 6))
		data = data[:len(data)-10]

		r := trace.NewReader(bytes.NewReader(data))

		Expect(readAll(r)).To(HaveLen(1))
	})

	It("should return EOF on an empty stream", func() {
		r := trace.NewReader(bytes.NewReader(nil))

		_, err := r.Next()
		Expect(err).To(MatchError(io.EOF))
	})

	Describe("Open", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("should read a plain trace file", func() {
			path := filepath.Join(dir, "plain.trace")
			Expect(os.WriteFile(path, encode(trace.ALU(1, 2, 3)), 0644)).To(Succeed())

			r, err := trace.Open(path)
			Expect(err).NotTo(HaveOccurred())
			defer r.Close()

			Expect(readAll(r)).To(HaveLen(1))
		})

		It("should detect and decompress a gzip trace", func() {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			_, err := zw.Write(encode(trace.ALU(1, 2, 3), trace.Load(1, 2, 64)))
			Expect(err).NotTo(HaveOccurred())
			Expect(zw.Close()).To(Succeed())

			path := filepath.Join(dir, "trace.gz")
			Expect(os.WriteFile(path, buf.Bytes(), 0644)).To(Succeed())

			r, err := trace.Open(path)
			Expect(err).NotTo(HaveOccurred())
			defer r.Close()

			recs := readAll(r)
			Expect(recs).To(HaveLen(2))
			Expect(recs[1].MemAddr).To(Equal(uint64(64)))
		})

		It("should fail on a missing file", func() {
			_, err := trace.Open(filepath.Join(dir, "missing"))
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("SliceSource", func() {
	It("should replay records and rewind", func() {
		src := trace.NewSliceSource(trace.ALU(1, 2, 3), trace.ALU(2, 3, 4))

		Expect(readAll(src)).To(HaveLen(2))
		_, err := src.Next()
		Expect(err).To(MatchError(io.EOF))

		src.Rewind()
		Expect(readAll(src)).To(HaveLen(2))
	})
})

var _ = Describe("Summarize", func() {
	It("should count classes, unique PCs and exceptions", func() {
		data := encode(
			trace.ALU(1, 2, 3).WithPC(0x10),
			trace.ALU(1, 2, 3).WithPC(0x14),
			trace.Load(1, 2, 0).WithPC(0x18),
			trace.ALU(1, 2, 3).WithPC(0x10).WithException(5),
		)

		s, err := trace.Summarize(trace.NewReader(bytes.NewReader(data)))
		Expect(err).NotTo(HaveOccurred())

		Expect(s.NumInst).To(Equal(uint64(4)))
		Expect(s.OpCounts[insts.OpALU]).To(Equal(uint64(3)))
		Expect(s.OpCounts[insts.OpLoad]).To(Equal(uint64(1)))
		Expect(s.UniquePCs).To(Equal(uint64(3)))
		Expect(s.Exceptions).To(Equal(uint64(1)))
		Expect(s.OpPercent(insts.OpALU)).To(BeNumerically("~", 75.0))
	})

	It("should print one line per class", func() {
		var out bytes.Buffer
		trace.Summary{NumInst: 1}.Fprint(&out)

		Expect(out.String()).To(ContainSubstring("Trace Instructions: 1"))
		Expect(out.String()).To(ContainSubstring("CBR"))
	})
})
