package cred

import (
	"strconv"

	"github.com/asv/lox/group"
	"github.com/asv/lox/zkp"
)

// EncAttrConstraints returns the zkp constraints proving that a
// blind-issuance ciphertext at attribute index idx correctly encrypts
// the value named attrSecret under fresh randomness. Protocols that
// must tie a blind-issued attribute to an already-shown credential's
// blinded attribute (migration's bucket, issue_invite's blockages,
// check_blockage's bucket-keyed MigrationKey) pass the SAME secret
// name attrSecret used by the companion ShowConstraints call for that
// attribute — the zkp DSL ties the two relations together simply by
// sharing the name, per §9's declarative builder.
func EncAttrConstraints(credName string, idx int, attrSecret string) []zkp.Constraint {
	s := strconv.Itoa(idx)
	return []zkp.Constraint{
		zkp.Eq(credName+"/EncC0_"+s, zkp.T(credName+"/e"+s, credName+"/B")),
		zkp.Eq(credName+"/EncC1_"+s, zkp.T(attrSecret, credName+"/B"), zkp.T(credName+"/e"+s, credName+"/D")),
	}
}

// EncAttrPoints supplies the public values EncAttrConstraints' names
// refer to.
func EncAttrPoints(credName string, idx int, enc *Ciphertext, D *group.Point) map[string]*group.Point {
	s := strconv.Itoa(idx)
	return map[string]*group.Point{
		credName + "/EncC0_" + s: enc.C0,
		credName + "/EncC1_" + s: enc.C1,
		credName + "/B":          group.B,
		credName + "/D":          D,
	}
}

// EncAttrSecrets supplies the prover's witness for EncAttrConstraints:
// the ElGamal randomness EncryptAttr returned when the ciphertext was
// built. The attrSecret value itself is supplied by whatever other
// constraint (typically a ShowConstraints call) shares its name.
func EncAttrSecrets(credName string, idx int, e *group.Scalar) map[string]*group.Scalar {
	s := strconv.Itoa(idx)
	return map[string]*group.Scalar{credName + "/e" + s: e}
}
