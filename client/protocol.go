package client

import (
	"fmt"
	"sort"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/issuer"
	"github.com/asv/lox/zkp"
)

// mergePoints combines several point maps into one, used to assemble a
// combined zkp.Statement's Assignment from several credentials' and
// linkage proofs' individual point maps.
func mergePoints(maps ...map[string]*group.Point) map[string]*group.Point {
	out := make(map[string]*group.Point)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func mergeScalars(maps ...map[string]*group.Scalar) map[string]*group.Scalar {
	out := make(map[string]*group.Scalar)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// sortedIdx returns m's keys in ascending order, matching the order
// blindIssueAndProve derives on the issuer side so both ends build the
// identical zkp.Statement.
func sortedIdx(m map[int]*cred.BlindAttr) []int {
	idx := make([]int, 0, len(m))
	for i := range m {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// verifyIssuance checks resp's issuance proof against the issuer's
// public key, the attributes revealed to it, and the blinded
// attributes this client submitted.
func verifyIssuance(credName string, pub *cred.PublicKey, revealed map[int]*group.Scalar, blinded map[int]*cred.BlindAttr, userPub *group.Point, resp *issuer.IssuanceResponse) error {
	cons := cred.IssueConstraints(credName, sortedIdx(blinded))
	stmt, err := zkp.NewStatement(credName+"/issue", cons...)
	if err != nil {
		return err
	}
	points := cred.IssuePoints(credName, pub, revealed, blinded, userPub, resp.Result)
	if err := zkp.Verify(stmt, resp.Proof, points); err != nil {
		return fmt.Errorf("client: %w", common.ErrVerificationFailure)
	}
	return nil
}

// decryptMAC recovers the new MAC from resp under the client's
// ephemeral ElGamal private key.
func decryptMAC(d *group.Scalar, resp *issuer.IssuanceResponse) *cred.MAC {
	return &cred.MAC{P: resp.Result.P, Q: resp.Result.EncQ.Decrypt(d)}
}
