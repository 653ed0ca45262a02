package zkp

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/asv/lox/group"
)

// Transcript accumulates domain-separated, length-prefixed values into a
// running hash, the same way the teacher corpus's ComputeProofChallenge
// builds its Fiat-Shamir input: every appended value is tagged by name
// so a verifier that builds the same sequence of Append calls always
// reconstructs the same challenge, and a value substituted at any one
// position changes the digest with overwhelming probability (§8
// testable property 4).
type Transcript struct {
	h hash.Hash
}

// NewTranscript starts a transcript bound to a protocol-specific,
// human-readable label such as "lox/open_invite/requestproof". Two
// transcripts started with different labels never collide even on
// identical appended content.
func NewTranscript(label string) *Transcript {
	t := &Transcript{h: sha256.New()}
	t.writeLenPrefixed([]byte("lox-zkp-v1"))
	t.writeLenPrefixed([]byte(label))
	return t
}

func (t *Transcript) writeLenPrefixed(b []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	t.h.Write(lenBuf[:])
	t.h.Write(b)
}

// AppendPoint binds a named point into the transcript.
func (t *Transcript) AppendPoint(name string, p *group.Point) {
	t.writeLenPrefixed([]byte(name))
	t.writeLenPrefixed(p.Compress())
}

// AppendScalar binds a named scalar into the transcript.
func (t *Transcript) AppendScalar(name string, s *group.Scalar) {
	t.writeLenPrefixed([]byte(name))
	t.writeLenPrefixed(s.Bytes())
}

// AppendBytes binds arbitrary named bytes (e.g. a protocol's public
// date or bucket id) into the transcript.
func (t *Transcript) AppendBytes(name string, b []byte) {
	t.writeLenPrefixed([]byte(name))
	t.writeLenPrefixed(b)
}

// Challenge derives the Fiat-Shamir challenge scalar from everything
// appended so far. Calling Challenge does not reset the transcript;
// callers that need several challenges from related but distinct
// inputs should start separate transcripts.
func (t *Transcript) Challenge() *group.Scalar {
	// Sum on a running hash.Hash does not consume its state, so the
	// transcript remains appendable after Challenge is read, matching
	// sha256.New()'s documented behavior.
	digest := t.h.Sum(nil)
	return group.HashToScalar(digest)
}
