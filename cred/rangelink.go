package cred

import (
	"github.com/asv/lox/group"
	"github.com/asv/lox/zkp"
)

// RangeLinkTarget computes the public point a range-proof linkage
// constraint binds to. Given a Pedersen commitment C = value*P + z*A
// already published by a Showing and a second commitment
// Cdiff = diff*P + blind*A published alongside a RangeProof, proving
// value + diff = constant (under the same base P) reduces to proving
// C + Cdiff - constant*P = z*A + blind*A: the standard trick for
// folding an additive scalar equality into the existing linear proof
// system, used by §4.1's level_up freshness/blockage-ceiling range
// proofs and redeem_invite's expiry range proof.
func RangeLinkTarget(C, Cdiff *group.Point, constant uint64, P *group.Point) *group.Point {
	return C.Add(Cdiff).Sub(P.Mul(group.FromUint64(constant)))
}

// RangeLinkConstraint asserts that the point named name+"/target"
// (computed by both sides via RangeLinkTarget, so it never appears as
// a bare free name) equals name+"/zsum" copies of A — the
// Schnorr-statement half of RangeLinkTarget's additive-equality trick.
// Pair with RangeLinkPoints and RangeLinkSecrets.
func RangeLinkConstraint(name string) zkp.Constraint {
	return zkp.Eq(name+"/target", zkp.T(name+"/zsum", name+"/A"))
}

// RangeLinkPoints supplies RangeLinkConstraint's point values, given
// the target RangeLinkTarget already computed.
func RangeLinkPoints(name string, target *group.Point) map[string]*group.Point {
	return map[string]*group.Point{
		name + "/target": target,
		name + "/A":      group.A,
	}
}

// RangeLinkSecrets supplies the prover's witness: the sum of the
// Pedersen commitment's blinding factor and the range proof's returned
// blinding.
func RangeLinkSecrets(name string, zSum *group.Scalar) map[string]*group.Scalar {
	return map[string]*group.Scalar{name + "/zsum": zSum}
}
