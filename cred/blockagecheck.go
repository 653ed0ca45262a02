package cred

import "github.com/asv/lox/zkp"

// BlockageCheckPlan is the Lox showing plan shared by check_blockage
// and trust_promotion: id and trust_level are revealed (the issuer
// checks trust_level's range itself), every other attribute stays
// blinded behind a Pedersen commitment.
var BlockageCheckPlan = AttrPlan{
	Revealed: []int{LoxID, LoxTrustLevel},
	Blinded:  []int{LoxBucket, LoxLevelSince, LoxInvitesRemaining, LoxBlockages},
}

// BlockageCheckEncAttrIdx namespaces the EncAttrConstraints call tying
// the request's ElGamal-blinded bucket to this showing's bucket
// commitment. It is just a slot discriminator within the
// "blockagecheck" namespace, unrelated to any credential's attribute
// numbering.
const BlockageCheckEncAttrIdx = 1

// BlockageCheckSecretNames names the blinded Lox attributes' secrets
// for a combined check_blockage/trust_promotion request proof. The
// bucket entry is also passed to EncAttrConstraints so the combined
// proof ties the ElGamal ciphertext sent alongside the showing to the
// very value committed in the showing's bucket commitment.
func BlockageCheckSecretNames() map[int]string {
	return map[int]string{
		LoxBucket:           "blockagecheck/bucket",
		LoxLevelSince:       "blockagecheck/since",
		LoxInvitesRemaining: "blockagecheck/invremain",
		LoxBlockages:        "blockagecheck/blockages",
	}
}

// BlockageCheckConstraints merges the Lox showing's constraints with
// the bucket-linkage constraint into one combined statement, matching
// the single define_proof! style combination the reference protocol
// uses for its request proof.
func BlockageCheckConstraints() []zkp.Constraint {
	names := BlockageCheckSecretNames()
	cons := ShowConstraints("lox", BlockageCheckPlan, names)
	return append(cons, EncAttrConstraints("blockagecheck", BlockageCheckEncAttrIdx, names[LoxBucket])...)
}
