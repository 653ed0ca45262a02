package cred

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/asv/lox/group"
)

// WireWriter accumulates a deterministic field-order binary encoding,
// mirroring the teacher corpus's MarshalBinary style (length-prefixed
// binary.Write calls into a bytes.Buffer) rather than a general-purpose
// codec: every Request, Response, credential, and migration-table
// entry writes its fields in a single fixed order, so two callers that
// serialize the same values always produce byte-identical output.
type WireWriter struct {
	buf bytes.Buffer
	err error
}

// NewWireWriter returns an empty WireWriter.
func NewWireWriter() *WireWriter { return &WireWriter{} }

func (w *WireWriter) WriteBytes(b []byte) {
	if w.err != nil {
		return
	}
	if err := binary.Write(&w.buf, binary.BigEndian, uint32(len(b))); err != nil {
		w.err = err
		return
	}
	if _, err := w.buf.Write(b); err != nil {
		w.err = err
	}
}

// WritePoint appends a point's compressed encoding.
func (w *WireWriter) WritePoint(p *group.Point) { w.WriteBytes(p.Compress()) }

// WriteScalar appends a scalar's canonical encoding.
func (w *WireWriter) WriteScalar(s *group.Scalar) { w.WriteBytes(s.Bytes()) }

// WriteUint64 appends a fixed-width integer, used for dates, bucket
// ids, and generation counters that never need scalar reduction.
func (w *WireWriter) WriteUint64(v uint64) {
	if w.err != nil {
		return
	}
	if err := binary.Write(&w.buf, binary.BigEndian, v); err != nil {
		w.err = err
	}
}

// Bytes returns the accumulated encoding, or the first error
// encountered while writing.
func (w *WireWriter) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// WireReader decodes a WireWriter encoding in the same field order it
// was written.
type WireReader struct {
	buf *bytes.Reader
	err error
}

// NewWireReader wraps b for sequential field-order decoding.
func NewWireReader(b []byte) *WireReader { return &WireReader{buf: bytes.NewReader(b)} }

func (r *WireReader) ReadBytes() []byte {
	if r.err != nil {
		return nil
	}
	var n uint32
	if err := binary.Read(r.buf, binary.BigEndian, &n); err != nil {
		r.err = err
		return nil
	}
	b := make([]byte, n)
	if _, err := r.buf.Read(b); err != nil {
		r.err = err
		return nil
	}
	return b
}

// ReadPoint decodes a point, rejecting malformed or identity encodings.
func (r *WireReader) ReadPoint() *group.Point {
	b := r.ReadBytes()
	if r.err != nil {
		return nil
	}
	p, err := group.Decompress(b)
	if err != nil {
		r.err = err
		return nil
	}
	return p
}

// ReadScalar decodes a scalar, rejecting non-canonical encodings.
func (r *WireReader) ReadScalar() *group.Scalar {
	b := r.ReadBytes()
	if r.err != nil {
		return nil
	}
	s, err := group.ScalarFromBytes(b)
	if err != nil {
		r.err = err
		return nil
	}
	return s
}

// ReadUint64 decodes a fixed-width integer written by WriteUint64.
func (r *WireReader) ReadUint64() uint64 {
	if r.err != nil {
		return 0
	}
	var v uint64
	if err := binary.Read(r.buf, binary.BigEndian, &v); err != nil {
		r.err = err
	}
	return v
}

// Err reports the first decode error encountered, or nil if every
// field decoded cleanly. Callers must check Err after the final
// field read.
func (r *WireReader) Err() error {
	if r.err != nil {
		return fmt.Errorf("cred: wire decode: %w", r.err)
	}
	return nil
}
