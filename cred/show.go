package cred

import (
	"fmt"
	"io"

	"github.com/asv/lox/group"
)

// AttrPlan describes, for one credential being shown, which attribute
// indices (1-based, matching PrivateKey.X/PublicKey.X) are revealed in
// the clear and which are blinded behind a Pedersen commitment. Every
// protocol's showing uses the same split on every call, so each
// protocol package declares its AttrPlan once as a package-level value.
type AttrPlan struct {
	Revealed []int
	Blinded  []int
}

// Showing is the wire-visible result of blind-showing one credential:
// a rerandomized P, a blinded Q, and one Pedersen commitment per
// blinded attribute.
type Showing struct {
	P           *group.Point
	CQ          *group.Point
	Commitments map[int]*group.Point // blinded attribute index -> Ci
}

// ShowWitness carries the secrets the combined request proof needs to
// prove Showing was built honestly: the blinded attribute values
// (named so they can be shared with other constraints, e.g. the same
// "bucket" value reused by a companion blind-issuance), each
// commitment's blinding factor, and negzQ.
type ShowWitness struct {
	Attrs  map[int]*group.Scalar // blinded attribute index -> value
	Blinds map[int]*group.Scalar // blinded attribute index -> zi
	NegZQ  *group.Scalar
}

// Show rerandomizes mac and blinds it per plan, returning the wire
// Showing plus the witness the caller folds into a zkp.Statement (see
// ShowConstraints in showproof.go) to prove it was built correctly.
// attrs must hold every attribute the credential carries, indexed from
// 1 exactly as PrivateKey.X is.
func Show(mac *MAC, attrs map[int]*group.Scalar, plan AttrPlan, rng io.Reader) (*Showing, *ShowWitness, error) {
	t, err := group.RandomNonZeroScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	P := mac.P.Mul(t)
	Q := mac.Q.Mul(t)

	commitments := make(map[int]*group.Point, len(plan.Blinded))
	blinds := make(map[int]*group.Scalar, len(plan.Blinded))
	blindedAttrs := make(map[int]*group.Scalar, len(plan.Blinded))
	for _, idx := range plan.Blinded {
		m, ok := attrs[idx]
		if !ok {
			return nil, nil, fmt.Errorf("cred: show plan references unknown attribute %d", idx)
		}
		zi, err := group.RandomScalar(rng)
		if err != nil {
			return nil, nil, err
		}
		commitments[idx] = P.Mul(m).Add(group.ATable.Mul(zi))
		blinds[idx] = zi
		blindedAttrs[idx] = m
	}

	negzQ, err := group.RandomScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	CQ := Q.Add(group.ATable.Mul(negzQ).Neg())

	return &Showing{P: P, CQ: CQ, Commitments: commitments},
		&ShowWitness{Attrs: blindedAttrs, Blinds: blinds, NegZQ: negzQ}, nil
}

// RecomputeVerificationPoint is the issuer-side half of §4.1's "the
// proof ties V=V'": it computes V' = (x[0] + Σ revealed x[i]*m[i])*P +
// Σ blinded x[i]*Ci - CQ directly from the issuer's private key,
// without any ZK machinery. The issuer binds the result to the same
// "V" name the prover's constraint (built by ShowConstraints)
// computed from its own z/negzQ secrets; zkp.Verify accepts iff they
// are in fact the same point.
func RecomputeVerificationPoint(priv *PrivateKey, P *group.Point, revealed map[int]*group.Scalar, showing *Showing) (*group.Point, error) {
	coeff := priv.X[0]
	for idx, m := range revealed {
		if idx <= 0 || idx >= len(priv.X) {
			return nil, fmt.Errorf("cred: revealed attribute index %d out of range", idx)
		}
		coeff = coeff.Add(priv.X[idx].Mul(m))
	}
	acc := P.Mul(coeff)
	for idx, Ci := range showing.Commitments {
		if idx <= 0 || idx >= len(priv.X) {
			return nil, fmt.Errorf("cred: blinded attribute index %d out of range", idx)
		}
		acc = acc.Add(Ci.Mul(priv.X[idx]))
	}
	acc = acc.Sub(showing.CQ)
	return acc, nil
}
