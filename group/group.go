package group

import (
	"crypto/sha256"
)

// A and B are the two independent generators every credential MAC and
// every showing/issuance proof is built over. They are derived once at
// package init by hashing fixed domain-separated seeds onto the curve,
// the same construction the teacher corpus's GenerateGenerators uses
// for per-message generators — nobody, including the issuer, knows a
// discrete log relating A to B.
var (
	A = hashToPoint([]byte("lox-credential-group-generator-A"))
	B = hashToPoint([]byte("lox-credential-group-generator-B"))
)

// sum512Then256 concatenates two SHA-256 passes (of the seed, then of
// the first digest followed by the seed) into the 64-byte message
// hashToPoint hands to hash-to-curve.
func sum512Then256(seed []byte) []byte {
	h1 := sha256.Sum256(seed)
	h2 := sha256.Sum256(append(h1[:], seed...))
	return append(h1[:], h2[:]...)
}

// BaseTable holds precomputed small multiples of a fixed base point to
// speed up the repeated fixed-base scalar multiplications every showing
// and issuance performs against A and B. It trades memory for the
// doublings a naive double-and-add would otherwise repeat per call.
type BaseTable struct {
	base  *Point
	table []*Point // table[i] = 2^i * base, i in [0, bits)
}

// NewBaseTable precomputes bits doublings of base. bits should cover
// Order's bit length (255 for this group).
func NewBaseTable(base *Point, bits int) *BaseTable {
	table := make([]*Point, bits)
	cur := base
	for i := 0; i < bits; i++ {
		table[i] = cur
		cur = cur.Add(cur)
	}
	return &BaseTable{base: base, table: table}
}

// Mul computes s*base using the precomputed doubling table instead of
// gnark-crypto's generic ScalarMultiplication, avoiding repeated
// doublings across many calls against the same fixed base (A or B).
func (t *BaseTable) Mul(s *Scalar) *Point {
	acc := IdentityPoint()
	v := s.BigInt()
	for i := 0; i < len(t.table); i++ {
		if v.Bit(i) == 1 {
			acc = acc.Add(t.table[i])
		}
	}
	return acc
}

// orderBits is sized to cover Order's bit length with margin.
const orderBits = 256

var (
	// ATable and BTable are the package-wide precomputed multiplication
	// tables for the two generators, shared by every MAC and proof
	// operation in the cred and zkp packages.
	ATable = NewBaseTable(A, orderBits)
	BTable = NewBaseTable(B, orderBits)
)
