package cred

import (
	"testing"

	"github.com/asv/lox/group"
	"github.com/asv/lox/zkp"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	priv, _, err := GenerateKeyPair(LoxNumAttrs, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	attrs := LoxAttrs{
		ID:               group.FromUint64(1),
		Bucket:           group.FromUint64(2),
		TrustLevel:       group.FromUint64(0),
		LevelSince:       group.FromUint64(1000),
		InvitesRemaining: group.FromUint64(0),
		Blockages:        group.FromUint64(0),
	}.Slice()

	mac, err := Issue(priv, attrs, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := Verify(priv, mac, attrs); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	tampered := append([]*group.Scalar{}, attrs...)
	tampered[0] = group.FromUint64(999)
	if err := Verify(priv, mac, tampered); err == nil {
		t.Fatalf("Verify accepted tampered attribute")
	}
}

func TestShowVerificationPointMatches(t *testing.T) {
	priv, pub, err := GenerateKeyPair(LoxNumAttrs, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	attrs := LoxAttrs{
		ID:               group.FromUint64(42),
		Bucket:           group.FromUint64(7),
		TrustLevel:       group.FromUint64(1),
		LevelSince:       group.FromUint64(1000),
		InvitesRemaining: group.FromUint64(2),
		Blockages:        group.FromUint64(0),
	}
	attrMap := attrs.Map()
	slice := attrs.Slice()

	mac, err := Issue(priv, slice, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	plan := AttrPlan{
		Revealed: []int{LoxID, LoxTrustLevel},
		Blinded:  []int{LoxBucket, LoxLevelSince, LoxInvitesRemaining, LoxBlockages},
	}
	showing, witness, err := Show(mac, attrMap, plan, nil)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}

	proverV, err := ShowVPoint(pub, showing, witness, plan)
	if err != nil {
		t.Fatalf("ShowVPoint: %v", err)
	}

	revealed := map[int]*group.Scalar{
		LoxID:         attrMap[LoxID],
		LoxTrustLevel: attrMap[LoxTrustLevel],
	}
	issuerV, err := RecomputeVerificationPoint(priv, showing.P, revealed, showing)
	if err != nil {
		t.Fatalf("RecomputeVerificationPoint: %v", err)
	}

	if !proverV.Equal(issuerV) {
		t.Fatalf("prover V and issuer V' disagree")
	}

	attrSecretNames := map[int]string{
		LoxBucket:           "bucket",
		LoxLevelSince:       "since",
		LoxInvitesRemaining: "invremain",
		LoxBlockages:        "blockages",
	}
	cons := ShowConstraints("lox", plan, attrSecretNames)
	stmt, err := zkp.NewStatement("test/show", cons...)
	if err != nil {
		t.Fatalf("NewStatement: %v", err)
	}

	proverPoints := ShowPoints("lox", pub, showing.P, proverV, showing, plan)
	secrets := ShowSecrets("lox", witness, plan, attrSecretNames)
	proof, err := zkp.Prove(stmt, zkp.Assignment{Points: proverPoints, Secrets: secrets})
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	verifierPoints := ShowPoints("lox", pub, showing.P, issuerV, showing, plan)
	if err := zkp.Verify(stmt, proof, verifierPoints); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestBlindIssueDecryptRoundTrip(t *testing.T) {
	priv, pub, err := GenerateKeyPair(LoxNumAttrs, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	eg, err := GenerateElGamalKeyPair(nil)
	if err != nil {
		t.Fatalf("GenerateElGamalKeyPair: %v", err)
	}

	revealed := map[int]*group.Scalar{
		LoxTrustLevel:       group.FromUint64(0),
		LoxInvitesRemaining: group.FromUint64(0),
		LoxBlockages:        group.FromUint64(0),
	}
	bucketVal := group.FromUint64(99)
	idVal := group.FromUint64(555)
	sinceVal := group.FromUint64(1000)

	bucketEnc, _, err := EncryptAttr(eg.Pub, bucketVal, nil)
	if err != nil {
		t.Fatalf("EncryptAttr bucket: %v", err)
	}
	idEnc, _, err := EncryptAttr(eg.Pub, idVal, nil)
	if err != nil {
		t.Fatalf("EncryptAttr id: %v", err)
	}
	sinceEnc, _, err := EncryptAttr(eg.Pub, sinceVal, nil)
	if err != nil {
		t.Fatalf("EncryptAttr since: %v", err)
	}

	blinded := map[int]*BlindAttr{
		LoxBucket:     {Enc: bucketEnc},
		LoxID:         {Enc: idEnc},
		LoxLevelSince: {Enc: sinceEnc},
	}
	result, witness, err := BlindIssue(priv, revealed, blinded, eg.Pub, nil)
	if err != nil {
		t.Fatalf("BlindIssue: %v", err)
	}

	blindedIdx := []int{LoxBucket, LoxID, LoxLevelSince}
	cons := IssueConstraints("lox", blindedIdx)
	stmt, err := zkp.NewStatement("test/issue", cons...)
	if err != nil {
		t.Fatalf("NewStatement: %v", err)
	}
	points := IssuePoints("lox", pub, revealed, blinded, eg.Pub, result)
	secrets := IssueSecrets("lox", priv, witness)
	proof, err := zkp.Prove(stmt, zkp.Assignment{Points: points, Secrets: secrets})
	if err != nil {
		t.Fatalf("Prove issuance: %v", err)
	}
	if err := zkp.Verify(stmt, proof, points); err != nil {
		t.Fatalf("Verify issuance: %v", err)
	}

	Q := result.EncQ.Decrypt(eg.Priv)
	mac := &MAC{P: result.P, Q: Q}
	full := LoxAttrs{
		ID:               idVal,
		Bucket:           bucketVal,
		TrustLevel:       revealed[LoxTrustLevel],
		LevelSince:       sinceVal,
		InvitesRemaining: revealed[LoxInvitesRemaining],
		Blockages:        revealed[LoxBlockages],
	}.Slice()

	if err := Verify(priv, mac, full); err != nil {
		t.Fatalf("blind-issued MAC failed direct verification: %v", err)
	}
	_ = pub
}

func TestNonZeroProof(t *testing.T) {
	P := group.A
	v := group.FromUint64(3)
	z, err := group.RandomScalar(nil)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	C := P.Mul(v).Add(group.A.Mul(z))

	c2, w, wz, err := NonZeroWitness(1, C, v, z)
	if err != nil {
		t.Fatalf("NonZeroWitness: %v", err)
	}

	cons := NonZeroConstraints("t", 1)
	stmt, err := zkp.NewStatement("test/nonzero", cons...)
	if err != nil {
		t.Fatalf("NewStatement: %v", err)
	}
	points := NonZeroPoints("t", 1, P, c2)
	points["t/C1"] = C
	secrets := NonZeroSecrets("t", 1, w, wz)

	proof, err := zkp.Prove(stmt, zkp.Assignment{Points: points, Secrets: secrets})
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if err := zkp.Verify(stmt, proof, points); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if _, _, _, err := NonZeroWitness(1, C, group.Zero(), z); err == nil {
		t.Fatalf("NonZeroWitness accepted a zero value")
	}
}
