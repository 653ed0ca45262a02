package cred

import (
	"strconv"

	"github.com/asv/lox/group"
	"github.com/asv/lox/zkp"
)

// ShowConstraints returns the zkp constraints asserting a Showing was
// built honestly: the verification-point relation plus one Pedersen
// opening per blinded attribute. credName namespaces every point and
// secret name so several credentials' constraints can be merged into
// one combined zkp.Statement without collision (§4.2's "one combined
// compact proof" per request). attrSecretNames supplies, for each
// blinded attribute index, the secret name to bind its value to —
// protocols that must prove the same attribute equal across two
// credentials pass the same name for both credentials' index.
func ShowConstraints(credName string, plan AttrPlan, attrSecretNames map[int]string) []zkp.Constraint {
	vTerms := make([]zkp.Term, 0, len(plan.Blinded)+1)
	cons := make([]zkp.Constraint, 0, len(plan.Blinded)+1)
	for _, idx := range plan.Blinded {
		zName := credName + "/z" + strconv.Itoa(idx)
		vTerms = append(vTerms, zkp.T(zName, credName+"/X"+strconv.Itoa(idx)))
		cons = append(cons, zkp.Eq(credName+"/C"+strconv.Itoa(idx),
			zkp.T(attrSecretNames[idx], credName+"/P"),
			zkp.T(zName, credName+"/A")))
	}
	vTerms = append(vTerms, zkp.T(credName+"/negzQ", credName+"/A"))
	return append([]zkp.Constraint{zkp.Eq(credName + "/V", vTerms...)}, cons...)
}

// ShowPoints supplies the public point values ShowConstraints' names
// refer to. vPoint is the prover's own V (built from its secrets) when
// called by the shower, or RecomputeVerificationPoint's V' when called
// by the issuer.
func ShowPoints(credName string, pub *PublicKey, P, vPoint *group.Point, showing *Showing, plan AttrPlan) map[string]*group.Point {
	points := map[string]*group.Point{
		credName + "/A": group.A,
		credName + "/P": P,
		credName + "/V": vPoint,
	}
	for _, idx := range plan.Blinded {
		points[credName+"/X"+strconv.Itoa(idx)] = pub.X[idx]
		points[credName+"/C"+strconv.Itoa(idx)] = showing.Commitments[idx]
	}
	return points
}

// ShowSecrets supplies the shower's witness for ShowConstraints' secret
// names.
func ShowSecrets(credName string, witness *ShowWitness, plan AttrPlan, attrSecretNames map[int]string) map[string]*group.Scalar {
	secrets := map[string]*group.Scalar{credName + "/negzQ": witness.NegZQ}
	for _, idx := range plan.Blinded {
		secrets[attrSecretNames[idx]] = witness.Attrs[idx]
		secrets[credName+"/z"+strconv.Itoa(idx)] = witness.Blinds[idx]
	}
	return secrets
}

// ShowVPoint computes the prover's own V = Σ blinded zi*Xi + negzQ*A,
// which by construction equals RecomputeVerificationPoint's V' iff the
// showing was built over genuine attributes and the claimed revealed
// values match.
func ShowVPoint(pub *PublicKey, showing *Showing, witness *ShowWitness, plan AttrPlan) (*group.Point, error) {
	points := make([]*group.Point, 0, len(plan.Blinded)+1)
	scalars := make([]*group.Scalar, 0, len(plan.Blinded)+1)
	for _, idx := range plan.Blinded {
		points = append(points, pub.X[idx])
		scalars = append(scalars, witness.Blinds[idx])
	}
	points = append(points, group.A)
	scalars = append(scalars, witness.NegZQ)
	return group.MultiMul(points, scalars)
}
