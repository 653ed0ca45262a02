package cred

import (
	"fmt"
	"io"

	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
)

// PrivateKey is an issuer's algebraic-MAC key for one credential type,
// per §4.1: x0tilde plus x[0..n-1], where n = len(X)-1+1 = NumAttrs()+1.
// Slot 0 is the "no-attribute" constant term added to every MAC;
// slots 1..n-1 each weight one credential attribute.
type PrivateKey struct {
	X0Tilde *group.Scalar
	X       []*group.Scalar
}

// PublicKey is the matching public key: X[0] = x[0]*B + x0tilde*A,
// X[i] = x[i]*A for i>=1.
type PublicKey struct {
	X []*group.Point
}

// NumAttrs returns the number of credential attributes this key signs
// (n-1, since slot 0 is the constant term).
func (pk *PrivateKey) NumAttrs() int { return len(pk.X) - 1 }

// GenerateKeyPair draws a fresh issuer key for a credential type with
// numAttrs attributes.
func GenerateKeyPair(numAttrs int, rng io.Reader) (*PrivateKey, *PublicKey, error) {
	if numAttrs < 0 {
		return nil, nil, fmt.Errorf("cred: numAttrs must be non-negative")
	}
	x0tilde, err := group.RandomScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	x := make([]*group.Scalar, numAttrs+1)
	for i := range x {
		x[i], err = group.RandomScalar(rng)
		if err != nil {
			return nil, nil, err
		}
	}
	priv := &PrivateKey{X0Tilde: x0tilde, X: x}
	return priv, priv.Public(), nil
}

// Public derives the public key matching priv.
func (priv *PrivateKey) Public() *PublicKey {
	X := make([]*group.Point, len(priv.X))
	X[0] = group.BTable.Mul(priv.X[0]).Add(group.ATable.Mul(priv.X0Tilde))
	for i := 1; i < len(priv.X); i++ {
		X[i] = group.ATable.Mul(priv.X[i])
	}
	return &PublicKey{X: X}
}

// MAC is an algebraic MAC on an attribute vector: P is a fresh random
// multiple of B, Q = (x[0] + Σ x[i]*m[i])*P.
type MAC struct {
	P *group.Point
	Q *group.Point
}

// Issue directly MACs attrs (len(attrs) must equal priv.NumAttrs())
// under priv, producing a MAC the holder can show but never verify
// itself — only the issuer (or, via the blind-show proof, a credential
// it trusts) can check an algebraic MAC, unlike a signature.
func Issue(priv *PrivateKey, attrs []*group.Scalar, rng io.Reader) (*MAC, error) {
	if len(attrs) != priv.NumAttrs() {
		return nil, fmt.Errorf("cred: issue expected %d attributes, got %d", priv.NumAttrs(), len(attrs))
	}
	b, err := group.RandomNonZeroScalar(rng)
	if err != nil {
		return nil, err
	}
	P := group.BTable.Mul(b)
	coeff := priv.X[0]
	for i, m := range attrs {
		coeff = coeff.Add(priv.X[i+1].Mul(m))
	}
	Q := P.Mul(coeff)
	return &MAC{P: P, Q: Q}, nil
}

// IssueWithP MACs attrs under priv against a caller-supplied P rather
// than a fresh random multiple of B. check_blockage and trust_promotion
// use this to mint a Migration credential's MAC against the same Pk
// used for the companion MigrationKey credential, once per candidate
// migration row, so that a client who only knows Qk (not the issuer's
// real bucket guess) can still locate its own row by trial decryption.
func IssueWithP(priv *PrivateKey, P *group.Point, attrs []*group.Scalar) (*MAC, error) {
	if len(attrs) != priv.NumAttrs() {
		return nil, fmt.Errorf("cred: issue expected %d attributes, got %d", priv.NumAttrs(), len(attrs))
	}
	if P.IsIdentity() {
		return nil, fmt.Errorf("cred: issueWithP requires a non-identity P")
	}
	coeff := priv.X[0]
	for i, m := range attrs {
		coeff = coeff.Add(priv.X[i+1].Mul(m))
	}
	Q := P.Mul(coeff)
	return &MAC{P: P, Q: Q}, nil
}

// Verify directly checks a MAC against its cleartext attributes using
// the issuer's private key. Protocols never call this during a real
// showing (the credential holder only ever presents a blinded showing,
// verified through the zkp proof in show.go); it exists for tests and
// for the issuer's own bookkeeping when it mints a credential for
// itself to inspect.
func Verify(priv *PrivateKey, mac *MAC, attrs []*group.Scalar) error {
	if len(attrs) != priv.NumAttrs() {
		return fmt.Errorf("cred: verify expected %d attributes, got %d", priv.NumAttrs(), len(attrs))
	}
	if mac.P.IsIdentity() {
		return fmt.Errorf("cred: %w: MAC has identity P", common.ErrCredentialMismatch)
	}
	coeff := priv.X[0]
	for i, m := range attrs {
		coeff = coeff.Add(priv.X[i+1].Mul(m))
	}
	if !mac.P.Mul(coeff).Equal(mac.Q) {
		return fmt.Errorf("cred: %w", common.ErrCredentialMismatch)
	}
	return nil
}
