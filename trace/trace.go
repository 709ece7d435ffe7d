// Package trace reads and writes the binary instruction traces that drive the
// simulator.
//
// A trace is a flat sequence of fixed-size little-endian records with no header.
// The stream ends at the first short read, so a truncated final record is
// treated as the end of the trace rather than as corruption. Traces may be
// gzip-compressed; Open detects this from the magic bytes.
package trace

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/oosim/insts"
)

// Record is one trace entry, laid out exactly as on disk.
type Record struct {
	InstAddr             uint64
	OpType               uint8
	Dest                 uint8
	DestNeeded           uint8
	Src1Reg              uint8
	Src2Reg              uint8
	Src1Needed           uint8
	Src2Needed           uint8
	CCRead               uint8
	CCWrite              uint8
	MemAddr              uint64
	MemWrite             uint8
	MemRead              uint8
	BrDir                uint8
	BrTarget             uint64
	Src3Reg              uint8
	Src3Needed           uint8
	IsException          uint8
	ExceptionHandlerCost uint32
}

// RecordSize is the on-disk size of a Record in bytes.
var RecordSize = binary.Size(Record{})

// Instruction converts the record into a fetched instruction with the given
// sequence number. Registers whose needed flag is clear become insts.NoReg.
// The third source register is not tracked by the core.
func (r Record) Instruction(instNum uint64) insts.Instruction {
	inst := insts.New(instNum, insts.OpType(r.OpType))
	inst.PC = r.InstAddr
	inst.MemAddr = r.MemAddr

	if r.DestNeeded != 0 {
		inst.DestReg = int(r.Dest)
	}
	if r.Src1Needed != 0 {
		inst.Src1Reg = int(r.Src1Reg)
	}
	if r.Src2Needed != 0 {
		inst.Src2Reg = int(r.Src2Reg)
	}

	inst.IsException = r.IsException != 0
	if inst.IsException {
		inst.ExceptionHandlerCost = r.ExceptionHandlerCost
	}

	return inst
}

// Reader decodes records from a trace stream.
type Reader struct {
	r      io.Reader
	closer []io.Closer
	buf    []byte
	count  uint64
}

// NewReader wraps an uncompressed trace stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:   bufio.NewReader(r),
		buf: make([]byte, RecordSize),
	}
}

// Open opens a trace file, decompressing it if it is gzip-compressed.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to open gzip trace: %w", err)
		}
		return &Reader{
			r:      bufio.NewReader(zr),
			closer: []io.Closer{zr, f},
			buf:    make([]byte, RecordSize),
		}, nil
	}

	return &Reader{
		r:      br,
		closer: []io.Closer{f},
		buf:    make([]byte, RecordSize),
	}, nil
}

// Next returns the next record. It returns io.EOF once fewer than RecordSize
// bytes remain.
func (r *Reader) Next() (Record, error) {
	var rec Record

	_, err := io.ReadFull(r.r, r.buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return rec, io.EOF
	}
	if err != nil {
		return rec, fmt.Errorf("failed to read trace record %d: %w", r.count, err)
	}

	if _, err := binary.Decode(r.buf, binary.LittleEndian, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode trace record %d: %w", r.count, err)
	}
	r.count++

	return rec, nil
}

// Count returns the number of records read so far.
func (r *Reader) Count() uint64 {
	return r.count
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	var firstErr error
	for _, c := range r.closer {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closer = nil
	return firstErr
}

// Writer encodes records into a trace stream.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends one record.
func (w *Writer) Write(rec Record) error {
	if err := binary.Write(w.w, binary.LittleEndian, &rec); err != nil {
		return fmt.Errorf("failed to write trace record: %w", err)
	}
	return nil
}

// Flush writes any buffered records.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
