package cred

import (
	"fmt"
	"strconv"

	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/zkp"
)

// NonZeroWitness builds the witness for proving, without revealing v,
// that the value committed in C = v*P + z*A is nonzero. It reduces to a
// linear statement rather than a dedicated proof type: the prover
// publishes C2 = w*C for w = v^-1 and proves (1) knowledge of w tying
// C2 to C, and (2) that C2 - P is a multiple of A with coefficient
// w*z. If v were 0, C would lie entirely in span(A) and no choice of
// w could make C2 - P land back in span(A), since P and A are
// independent generators — so no satisfying witness exists. This is
// the linear-algebra rendition of checking invites_remaining ≠ 0 in
// issue_invite, the only protocol that uses it.
func NonZeroWitness(idx int, C *group.Point, v, z *group.Scalar) (c2 *group.Point, w, wz *group.Scalar, err error) {
	w, err = v.Inverse()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cred: value is zero, cannot prove non-zero: %w", common.ErrCredentialMismatch)
	}
	wz = w.Mul(z)
	c2 = C.Mul(w)
	return c2, w, wz, nil
}

// NonZeroConstraints returns the two linear constraints proving the
// attribute at idx (already committed as credName+"/C"+idx elsewhere in
// the combined statement) is nonzero.
func NonZeroConstraints(credName string, idx int) []zkp.Constraint {
	s := strconv.Itoa(idx)
	wName := credName + "/nzw" + s
	wzName := credName + "/nzwz" + s
	return []zkp.Constraint{
		zkp.Eq(credName+"/NZC2"+s, zkp.T(wName, credName+"/C"+s)),
		zkp.Eq(credName+"/NZC2minusP"+s, zkp.T(wzName, credName+"/A")),
	}
}

// NonZeroPoints supplies the public point values NonZeroConstraints'
// names refer to, given the credential's P, the committed point C, and
// the prover-published c2 = w*C.
func NonZeroPoints(credName string, idx int, P, c2 *group.Point) map[string]*group.Point {
	s := strconv.Itoa(idx)
	return map[string]*group.Point{
		credName + "/NZC2" + s:        c2,
		credName + "/NZC2minusP" + s: c2.Sub(P),
	}
}

// NonZeroSecrets supplies the prover's witness for NonZeroConstraints.
func NonZeroSecrets(credName string, idx int, w, wz *group.Scalar) map[string]*group.Scalar {
	s := strconv.Itoa(idx)
	return map[string]*group.Scalar{
		credName + "/nzw" + s:  w,
		credName + "/nzwz" + s: wz,
	}
}
