package trace

import "io"

// SliceSource replays records held in memory. It satisfies the same Next
// contract as Reader.
type SliceSource struct {
	records []Record
	pos     int
}

// NewSliceSource creates a source over records.
func NewSliceSource(records ...Record) *SliceSource {
	return &SliceSource{records: records}
}

// Next returns the next record, or io.EOF after the last one.
func (s *SliceSource) Next() (Record, error) {
	if s.pos >= len(s.records) {
		return Record{}, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

// Len returns the total number of records.
func (s *SliceSource) Len() int {
	return len(s.records)
}

// Rewind restarts the source from the first record.
func (s *SliceSource) Rewind() {
	s.pos = 0
}
