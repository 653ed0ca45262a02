package cred

import (
	"strconv"

	"github.com/asv/lox/group"
	"github.com/asv/lox/zkp"
)

// IssueConstraints returns the zkp constraints for the issuer's blind-
// issuance proof: P=b*B, the TAi helper points tying b to each
// attribute's x[i] from two independent directions, the public-key
// binding for the revealed-attribute coefficient, and the linear
// combination defining EncQ. credName namespaces names exactly as
// ShowConstraints does, so a response's issuance proof can be merged
// with other credentials' constraints in one zkp.Statement.
func IssueConstraints(credName string, blinded []int) []zkp.Constraint {
	cons := []zkp.Constraint{
		zkp.Eq(credName+"/P", zkp.T(credName+"/b", credName+"/B")),
		zkp.Eq(credName+"/W",
			zkp.T(credName+"/revealedCoeff", credName+"/B"),
			zkp.T(credName+"/x0tilde", credName+"/A")),
		zkp.Eq(credName+"/RevealedTerm", zkp.T(credName+"/revealedCoeff", credName+"/P")),
	}
	encQ0Terms := make([]zkp.Term, 0, len(blinded)+1)
	encQ1Terms := make([]zkp.Term, 0, len(blinded)+1)
	for _, idx := range blinded {
		tName := credName + "/t" + strconv.Itoa(idx)
		cons = append(cons,
			zkp.Eq(credName+"/TAb"+strconv.Itoa(idx), zkp.T(credName+"/b", credName+"/X"+strconv.Itoa(idx))),
			zkp.Eq(credName+"/TAt"+strconv.Itoa(idx), zkp.T(tName, credName+"/A")))
		encQ0Terms = append(encQ0Terms, zkp.T(tName, credName+"/EncA0_"+strconv.Itoa(idx)))
		encQ1Terms = append(encQ1Terms, zkp.T(tName, credName+"/EncA1_"+strconv.Itoa(idx)))
	}
	encQ0Terms = append(encQ0Terms, zkp.T(credName+"/s", credName+"/B"))
	encQ1Terms = append(encQ1Terms, zkp.T(credName+"/s", credName+"/D"))
	cons = append(cons,
		zkp.Eq(credName+"/EncQ0", encQ0Terms...),
		zkp.Eq(credName+"/EncQ1adj", encQ1Terms...))
	return cons
}

// IssuePoints supplies the public values IssueConstraints' names refer
// to, for both the issuer (proving) and the requester (verifying).
func IssuePoints(credName string, pub *PublicKey, revealed map[int]*group.Scalar, blindedEnc map[int]*BlindAttr, userPub *group.Point, result *BlindIssueResult) map[string]*group.Point {
	points := map[string]*group.Point{
		credName + "/A":            group.A,
		credName + "/B":            group.B,
		credName + "/D":            userPub,
		credName + "/P":            result.P,
		credName + "/W":            ComputeW(pub, revealed),
		credName + "/RevealedTerm": result.RevealedTerm,
		credName + "/EncQ0":        result.EncQ.C0,
		credName + "/EncQ1adj":     result.EncQ.C1.Sub(result.RevealedTerm),
	}
	for idx, attr := range blindedEnc {
		s := strconv.Itoa(idx)
		enc1 := attr.Enc.C1
		if attr.Offset != nil {
			enc1 = enc1.Add(group.BTable.Mul(attr.Offset))
		}
		points[credName+"/X"+s] = pub.X[idx]
		points[credName+"/EncA0_"+s] = attr.Enc.C0
		points[credName+"/EncA1_"+s] = enc1
		points[credName+"/TAb"+s] = result.TA[idx]
		points[credName+"/TAt"+s] = result.TA[idx]
	}
	return points
}

// IssueSecrets supplies the issuer's witness for IssueConstraints.
func IssueSecrets(credName string, priv *PrivateKey, witness *BlindIssueWitness) map[string]*group.Scalar {
	secrets := map[string]*group.Scalar{
		credName + "/b":             witness.B,
		credName + "/s":             witness.S,
		credName + "/revealedCoeff": witness.RevealedCoeff,
		credName + "/x0tilde":       priv.X0Tilde,
	}
	for idx, t := range witness.Ti {
		secrets[credName+"/t"+strconv.Itoa(idx)] = t
	}
	return secrets
}
