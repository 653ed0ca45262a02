package cred

import (
	"fmt"
	"io"

	"github.com/asv/lox/group"
)

// ElGamalKeyPair is the ephemeral key a requester generates per blind
// issuance so the issuer can construct a new MAC over attributes it
// never sees in the clear.
type ElGamalKeyPair struct {
	Priv *group.Scalar
	Pub  *group.Point
}

// GenerateElGamalKeyPair draws a fresh ElGamal key under generator B.
func GenerateElGamalKeyPair(rng io.Reader) (*ElGamalKeyPair, error) {
	d, err := group.RandomNonZeroScalar(rng)
	if err != nil {
		return nil, err
	}
	return &ElGamalKeyPair{Priv: d, Pub: group.BTable.Mul(d)}, nil
}

// Ciphertext is an ElGamal encryption (C0, C1) = (e*B, m*B + e*D) of
// attribute value m under public key D.
type Ciphertext struct {
	C0 *group.Point
	C1 *group.Point
}

// EncryptAttr encrypts m under pub, returning the ciphertext and the
// randomness e the caller must keep as part of its request proof
// witness.
func EncryptAttr(pub *group.Point, m *group.Scalar, rng io.Reader) (*Ciphertext, *group.Scalar, error) {
	e, err := group.RandomScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	return &Ciphertext{
		C0: group.BTable.Mul(e),
		C1: group.BTable.Mul(m).Add(pub.Mul(e)),
	}, e, nil
}

// Decrypt recovers the plaintext point m*B from c under ElGamal private
// key d. Used only to recover Q (a point, never meant to be taken back
// to a scalar) at the end of blind issuance.
func (c *Ciphertext) Decrypt(d *group.Scalar) *group.Point {
	return c.C1.Sub(c.C0.Mul(d))
}

// BlindAttr is one blinded attribute input to BlindIssue: an ElGamal
// encryption of the requester's share, plus an optional Offset the
// issuer adds to it homomorphically before weighting by x[i]. Several
// protocols cooperatively choose an attribute as (user share + issuer
// share) — most notably a new Lox credential's id, per §3's "each
// protocol consumes an old credential... and issues a new one with a
// fresh id" — so that neither party alone controls its value. Offset
// may be nil, meaning zero.
type BlindAttr struct {
	Enc    *Ciphertext
	Offset *group.Scalar
}

// BlindIssueResult is the issuer's response to a blind issuance request:
// a fresh P, an ElGamal encryption of the new MAC's Q component, the
// published helper point RevealedTerm, and one TA helper point per
// blind-issued attribute — all per §4.1's blind-issuance construction.
type BlindIssueResult struct {
	P            *group.Point
	EncQ         Ciphertext
	RevealedTerm *group.Point
	TA           map[int]*group.Point
}

// BlindIssueWitness carries the issuer's secrets for the blind-issuance
// proof: the MAC blinding b, the ElGamal re-randomization s, the
// revealed-attribute coefficient, and one per-attribute ti = x[i]*b.
type BlindIssueWitness struct {
	B             *group.Scalar
	S             *group.Scalar
	RevealedCoeff *group.Scalar
	Ti            map[int]*group.Scalar
}

// BlindIssue constructs a new MAC over a mix of attributes the issuer
// knows in the clear (revealed) and attributes it only sees ElGamal-
// encrypted under the requester's key (blindedEnc), homomorphically,
// without the issuer ever learning the blinded values.
func BlindIssue(priv *PrivateKey, revealed map[int]*group.Scalar, blindedEnc map[int]*BlindAttr, userPub *group.Point, rng io.Reader) (*BlindIssueResult, *BlindIssueWitness, error) {
	b, err := group.RandomNonZeroScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	P := group.BTable.Mul(b)

	revealedCoeff := priv.X[0]
	for idx, m := range revealed {
		if idx <= 0 || idx >= len(priv.X) {
			return nil, nil, fmt.Errorf("cred: revealed attribute index %d out of range", idx)
		}
		revealedCoeff = revealedCoeff.Add(priv.X[idx].Mul(m))
	}
	revealedTerm := P.Mul(revealedCoeff)

	s, err := group.RandomScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	encQ0 := group.BTable.Mul(s)
	encQ1 := userPub.Mul(s).Add(revealedTerm)

	ti := make(map[int]*group.Scalar, len(blindedEnc))
	ta := make(map[int]*group.Point, len(blindedEnc))
	for idx, attr := range blindedEnc {
		if idx <= 0 || idx >= len(priv.X) {
			return nil, nil, fmt.Errorf("cred: blinded attribute index %d out of range", idx)
		}
		t := priv.X[idx].Mul(b)
		ti[idx] = t
		ta[idx] = group.ATable.Mul(t)
		encQ0 = encQ0.Add(attr.Enc.C0.Mul(t))
		encQ1 = encQ1.Add(attr.Enc.C1.Mul(t))
		if attr.Offset != nil {
			encQ1 = encQ1.Add(group.BTable.Mul(attr.Offset.Mul(t)))
		}
	}

	return &BlindIssueResult{
			P:            P,
			EncQ:         Ciphertext{C0: encQ0, C1: encQ1},
			RevealedTerm: revealedTerm,
			TA:           ta,
		}, &BlindIssueWitness{
			B:             b,
			S:             s,
			RevealedCoeff: revealedCoeff,
			Ti:            ti,
		}, nil
}

// ComputeW computes X[0] + Σ revealed X[i]*m[i], the public-key-side
// term the blind-issuance proof ties the issuer's revealedCoeff secret
// to, letting a requester who never learns x0/x[i] still verify the
// issuer used its genuine, previously-published key.
func ComputeW(pub *PublicKey, revealed map[int]*group.Scalar) *group.Point {
	acc := pub.X[0]
	for idx, m := range revealed {
		acc = acc.Add(pub.X[idx].Mul(m))
	}
	return acc
}
