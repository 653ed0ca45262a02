package group

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// PointSize is the canonical compressed byte length of a group element.
const PointSize = bls12381.SizeOfG1AffineCompressed

// Point is a non-identity element of the prime-order group, or (only
// transiently, during computation) the identity. Every Point accepted
// as protocol input via Decompress is checked against the identity per
// §3's invariant that identity-point inputs are always rejected;
// Compress itself does not check.
type Point struct {
	p bls12381.G1Affine
}

// IdentityPoint returns the group identity. Used only as an accumulator
// seed; never a valid protocol input or output.
func IdentityPoint() *Point {
	var p bls12381.G1Affine
	p.X.SetZero()
	p.Y.SetZero()
	return &Point{p: p}
}

// IsIdentity reports whether pt is the group identity.
func (pt *Point) IsIdentity() bool { return pt.p.IsInfinity() }

// Add returns pt + o.
func (pt *Point) Add(o *Point) *Point {
	var a, b, r bls12381.G1Jac
	a.FromAffine(&pt.p)
	b.FromAffine(&o.p)
	r.Set(&a)
	r.AddAssign(&b)
	var out bls12381.G1Affine
	out.FromJacobian(&r)
	return &Point{p: out}
}

// Sub returns pt - o.
func (pt *Point) Sub(o *Point) *Point {
	return pt.Add(o.Neg())
}

// Neg returns -pt.
func (pt *Point) Neg() *Point {
	var j bls12381.G1Jac
	j.FromAffine(&pt.p)
	j.Neg(&j)
	var out bls12381.G1Affine
	out.FromJacobian(&j)
	return &Point{p: out}
}

// Mul returns s*pt.
func (pt *Point) Mul(s *Scalar) *Point {
	var j bls12381.G1Jac
	j.FromAffine(&pt.p)
	j.ScalarMultiplication(&j, s.BigInt())
	var out bls12381.G1Affine
	out.FromJacobian(&j)
	return &Point{p: out}
}

// Equal reports whether pt and o represent the same point.
func (pt *Point) Equal(o *Point) bool { return pt.p.Equal(&o.p) }

// Compress serializes pt to its canonical compressed form. The identity
// point is never emitted by a well-formed protocol message; callers
// that hold an identity Point here have a programming error upstream,
// not a wire condition, so Compress does not itself error on it —
// validation happens at construction and at Decompress.
func (pt *Point) Compress() []byte {
	b := pt.p.Bytes()
	return b[:]
}

// Decompress parses a canonical compressed point and rejects both
// malformed encodings and the identity element, per §3's "Identity-point
// inputs are always rejected".
func Decompress(b []byte) (*Point, error) {
	if len(b) != PointSize {
		return nil, fmt.Errorf("group: point must be %d bytes, got %d", PointSize, len(b))
	}
	var p bls12381.G1Affine
	if _, err := p.SetBytes(b); err != nil {
		return nil, fmt.Errorf("group: invalid point encoding: %w", err)
	}
	if p.IsInfinity() {
		return nil, fmt.Errorf("group: identity point rejected")
	}
	return &Point{p: p}, nil
}

// MarshalJSON encodes pt as a base64 string of its compressed form, so
// that request/response/credential structs embedding a Point serialize
// with the standard encoding/json package.
func (pt *Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(pt.Compress()))
}

// UnmarshalJSON is MarshalJSON's inverse.
func (pt *Point) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("group: invalid point JSON: %w", err)
	}
	decoded, err := Decompress(raw)
	if err != nil {
		return err
	}
	*pt = *decoded
	return nil
}

// MultiMul computes the multi-scalar multiplication sum(scalars[i] *
// points[i]). It is the workhorse behind MAC recomputation during
// showing verification, where the verifier folds a dozen-odd terms
// (revealed attributes, blinded commitments, helper points) into one
// point before a single equality check.
func MultiMul(points []*Point, scalars []*Scalar) (*Point, error) {
	if len(points) != len(scalars) {
		return nil, fmt.Errorf("group: mismatched points/scalars lengths: %d vs %d", len(points), len(scalars))
	}
	var acc bls12381.G1Jac
	acc.X.SetOne()
	acc.Y.SetOne()
	acc.Z.SetZero()
	var tmp bls12381.G1Jac
	for i := range points {
		if scalars[i].IsZero() || points[i].p.IsInfinity() {
			continue
		}
		tmp.FromAffine(&points[i].p)
		tmp.ScalarMultiplication(&tmp, scalars[i].BigInt())
		acc.AddAssign(&tmp)
	}
	var out bls12381.G1Affine
	out.FromJacobian(&acc)
	return &Point{p: out}, nil
}

// Sum returns the sum of points with no scalar weighting.
func Sum(points ...*Point) *Point {
	acc := IdentityPoint()
	for _, p := range points {
		acc = acc.Add(p)
	}
	return acc
}

// hashToPoint maps an arbitrary domain-separated seed onto a point in
// the subgroup with gnark-crypto's hash-to-curve (map onto G1, then
// clear the cofactor) over sum512Then256(seed), so no discrete log
// between two derived points is known to anyone.
func hashToPoint(seed []byte) *Point {
	p, err := bls12381.HashToG1(sum512Then256(seed), []byte("LOX-GROUP-GENERATOR"))
	if err != nil {
		panic(fmt.Sprintf("group: deriving generator: %v", err))
	}
	return &Point{p: p}
}
