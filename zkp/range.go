package zkp

import (
	"crypto/rand"
	"fmt"

	"github.com/asv/lox/group"
)

// BitProof is a Cramer-Damgård-Schoenmakers OR-proof that a published
// commitment Cb = b*P + z*A opens to b ∈ {0,1}, without revealing
// which. It realizes §4.1's "prove gi·(gi−1)=0" requirement: rather
// than a genuinely quadratic constraint (which this package's linear
// DSL cannot express), the module proves the equivalent disjunction
// "Cb = z*A" (the b=0 branch) OR "Cb - P = z*A" (the b=1 branch). This
// resolves an Open Question the distilled spec leaves implicit in the
// phrase "CGi² = gi·P + yi·A": this module uses a standard two-branch
// Schnorr OR-proof instead, which is the well-understood construction
// for exactly this disjunction.
type BitProof struct {
	T0, T1 *group.Point
	C0, C1 *group.Scalar
	S0, S1 *group.Scalar
}

// proveBit builds a BitProof for commitment Cb = bit*P + blind*A.
func proveBit(label string, P, Cb *group.Point, bit int, blind *group.Scalar) (*BitProof, error) {
	if bit != 0 && bit != 1 {
		return nil, fmt.Errorf("zkp: bit value must be 0 or 1, got %d", bit)
	}
	y0 := Cb          // true iff bit == 0, with witness blind
	y1 := Cb.Sub(P)   // true iff bit == 1, with witness blind

	var t0, t1 *group.Point
	var c0, c1, s0, s1 *group.Scalar

	simulate := func(y *group.Point) (*group.Point, *group.Scalar, *group.Scalar, error) {
		sc, err := group.RandomScalar(rand.Reader)
		if err != nil {
			return nil, nil, nil, err
		}
		cc, err := group.RandomScalar(rand.Reader)
		if err != nil {
			return nil, nil, nil, err
		}
		// t = s*A - c*y
		t := group.A.Mul(sc).Sub(y.Mul(cc))
		return t, cc, sc, nil
	}

	k, err := group.RandomScalar(rand.Reader)
	if err != nil {
		return nil, err
	}

	if bit == 0 {
		t0 = group.A.Mul(k)
		t1, c1, s1, err = simulate(y1)
		if err != nil {
			return nil, err
		}
	} else {
		t1 = group.A.Mul(k)
		t0, c0, s0, err = simulate(y0)
		if err != nil {
			return nil, err
		}
	}

	tr := NewTranscript(label)
	tr.AppendPoint("P", P)
	tr.AppendPoint("Cb", Cb)
	tr.AppendPoint("t0", t0)
	tr.AppendPoint("t1", t1)
	c := tr.Challenge()

	if bit == 0 {
		c0 = c.Sub(c1)
		s0 = k.Add(c0.Mul(blind))
	} else {
		c1 = c.Sub(c0)
		s1 = k.Add(c1.Mul(blind))
	}

	return &BitProof{T0: t0, T1: t1, C0: c0, C1: c1, S0: s0, S1: s1}, nil
}

// verifyBit checks a BitProof against commitment Cb.
func verifyBit(label string, P, Cb *group.Point, proof *BitProof) error {
	tr := NewTranscript(label)
	tr.AppendPoint("P", P)
	tr.AppendPoint("Cb", Cb)
	tr.AppendPoint("t0", proof.T0)
	tr.AppendPoint("t1", proof.T1)
	c := tr.Challenge()

	if !c.Equal(proof.C0.Add(proof.C1)) {
		return fmt.Errorf("zkp: bit proof challenge split mismatch")
	}

	y0 := Cb
	lhs0 := group.A.Mul(proof.S0)
	rhs0 := proof.T0.Add(y0.Mul(proof.C0))
	if !lhs0.Equal(rhs0) {
		return fmt.Errorf("zkp: bit proof branch 0 failed")
	}

	y1 := Cb.Sub(P)
	lhs1 := group.A.Mul(proof.S1)
	rhs1 := proof.T1.Add(y1.Mul(proof.C1))
	if !lhs1.Equal(rhs1) {
		return fmt.Errorf("zkp: bit proof branch 1 failed")
	}
	return nil
}

// RangeProof proves 0 ≤ value ≤ 2^Bits-1 for a value hidden inside a
// commitment Cdiff = value*P + blind*A, by decomposing value into
// Bits individually-committed, individually OR-proved bits and
// checking the public recombination Cdiff = Σ 2^i·Cbi. §4.1 uses three
// instances: 9 bits for level-up freshness, 3 bits for the blockage
// ceiling, 4 bits for invitation freshness.
type RangeProof struct {
	BitCommitments []*group.Point
	BitProofs      []*BitProof
}

// ProveRange builds a RangeProof for value (which must fit in bits
// bits) against base point P, and returns the commitment blinding the
// caller must use as Cdiff's "A" coefficient (Σ 2^i·zi mod Order) so
// Cdiff = value*P + returned-blinding*A recombines correctly.
func ProveRange(label string, P *group.Point, value uint64, bits int) (*RangeProof, *group.Scalar, error) {
	if bits <= 0 || bits > 63 {
		return nil, nil, fmt.Errorf("zkp: invalid bit width %d", bits)
	}
	if value >= uint64(1)<<uint(bits) {
		return nil, nil, fmt.Errorf("zkp: value %d does not fit in %d bits", value, bits)
	}

	commitments := make([]*group.Point, bits)
	proofs := make([]*BitProof, bits)
	totalBlind := group.Zero()
	two := group.FromUint64(2)
	pow := group.One()

	for i := 0; i < bits; i++ {
		bit := int((value >> uint(i)) & 1)
		zi, err := group.RandomScalar(rand.Reader)
		if err != nil {
			return nil, nil, err
		}
		Cbi := P.Mul(group.FromUint64(uint64(bit))).Add(group.A.Mul(zi))
		bitLabel := fmt.Sprintf("%s/bit%d", label, i)
		proof, err := proveBit(bitLabel, P, Cbi, bit, zi)
		if err != nil {
			return nil, nil, err
		}
		commitments[i] = Cbi
		proofs[i] = proof
		totalBlind = totalBlind.Add(pow.Mul(zi))
		pow = pow.Mul(two)
	}

	return &RangeProof{BitCommitments: commitments, BitProofs: proofs}, totalBlind, nil
}

// RecombineRange computes Σ 2^i·Cbi, the commitment a RangeProof's
// per-bit commitments recombine to — callers that need Cdiff for
// RangeLinkTarget compute it here rather than duplicating the weighted
// sum.
func RecombineRange(rp *RangeProof) (*group.Point, error) {
	bits := len(rp.BitCommitments)
	weights := make([]*group.Scalar, bits)
	pow := group.One()
	two := group.FromUint64(2)
	for i := 0; i < bits; i++ {
		weights[i] = pow
		pow = pow.Mul(two)
	}
	return group.MultiMul(rp.BitCommitments, weights)
}

// VerifyRange checks rp's per-bit OR-proofs and that the commitments
// recombine to Cdiff under base P.
func VerifyRange(label string, P, Cdiff *group.Point, rp *RangeProof) error {
	if len(rp.BitCommitments) != len(rp.BitProofs) {
		return fmt.Errorf("zkp: range proof has mismatched bit arrays")
	}
	for i, bc := range rp.BitCommitments {
		bitLabel := fmt.Sprintf("%s/bit%d", label, i)
		if err := verifyBit(bitLabel, P, bc, rp.BitProofs[i]); err != nil {
			return fmt.Errorf("zkp: range proof bit %d: %w", i, err)
		}
	}
	recombined, err := RecombineRange(rp)
	if err != nil {
		return err
	}
	if !recombined.Equal(Cdiff) {
		return fmt.Errorf("zkp: range proof recombination mismatch")
	}
	return nil
}
