package client

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/issuer"
	"github.com/asv/lox/zkp"
)

// LevelUpState is the ephemeral state RequestLevelUp produces,
// consumed by HandleLevelUpResponse.
type LevelUpState struct {
	elgamal      *cred.ElGamalKeyPair
	bucketEnc    *cred.Ciphertext
	blockagesEnc *cred.Ciphertext
	id           *group.Scalar
	bucket       *group.Scalar
	blockages    *group.Scalar
}

// RequestLevelUp builds §4.2.3's request: show the current Lox
// credential alongside a same-day BucketReachability for its bucket,
// prove level_since is at least LEVEL_INTERVAL[level] days old and
// blockages is within MAX_BLOCKAGES[level], and blind-issue a Lox one
// level higher carrying bucket and blockages forward. today and
// levelSinceDay are the client's own plaintext day counts (the latter
// recalled from whenever this Lox was last (re)issued), matching the
// issuer's DateSource epoch.
func RequestLevelUp(loxPub, bucketReachPub *cred.PublicKey, loxMAC *cred.MAC, loxAttrs cred.LoxAttrs, bucketReachMAC *cred.MAC, bucketReachAttrs cred.BucketReachAttrs, today, levelSinceDay uint32, rng io.Reader) (*issuer.LevelUpRequest, *LevelUpState, error) {
	loxShowing, loxWitness, err := cred.Show(loxMAC, loxAttrs.Map(), cred.LevelUpPlan, rng)
	if err != nil {
		return nil, nil, err
	}
	bucketReachShowing, bucketReachWitness, err := cred.Show(bucketReachMAC, bucketReachAttrs.Map(), cred.LevelUpBucketReachPlan, rng)
	if err != nil {
		return nil, nil, err
	}

	levelVal, err := decodeLevel(loxAttrs.TrustLevel)
	if err != nil {
		return nil, nil, err
	}
	blockages, err := decodeBlockages(loxAttrs.Blockages)
	if err != nil {
		return nil, nil, err
	}

	threshold := levelSinceDay + cred.LevelInterval[levelVal]
	if today < threshold {
		return nil, nil, &common.TimeThresholdNotMetError{DaysShort: threshold - today}
	}
	if blockages > cred.MaxBlockages[levelVal] {
		return nil, nil, &common.ExceededBlockagesThresholdError{Ceiling: cred.MaxBlockages[levelVal]}
	}

	freshnessValue := uint64(today) - uint64(levelSinceDay) - uint64(cred.LevelInterval[levelVal])
	freshnessRange, freshnessBlind, err := zkp.ProveRange("levelup/freshness", loxShowing.P, freshnessValue, cred.LevelUpFreshnessBits)
	if err != nil {
		return nil, nil, err
	}
	blockageValue := uint64(cred.MaxBlockages[levelVal]) - uint64(blockages)
	blockageRange, blockageBlind, err := zkp.ProveRange("levelup/blockage", loxShowing.P, blockageValue, cred.LevelUpBlockageBits)
	if err != nil {
		return nil, nil, err
	}
	freshnessDiff, err := zkp.RecombineRange(freshnessRange)
	if err != nil {
		return nil, nil, err
	}
	blockageDiff, err := zkp.RecombineRange(blockageRange)
	if err != nil {
		return nil, nil, err
	}
	freshnessConstant := uint64(today) - uint64(cred.LevelInterval[levelVal])
	blockageConstant := uint64(cred.MaxBlockages[levelVal])
	freshnessTarget := cred.RangeLinkTarget(loxShowing.Commitments[cred.LoxLevelSince], freshnessDiff, freshnessConstant, loxShowing.P)
	blockageTarget := cred.RangeLinkTarget(loxShowing.Commitments[cred.LoxBlockages], blockageDiff, blockageConstant, loxShowing.P)
	freshnessZSum := loxWitness.Blinds[cred.LoxLevelSince].Add(freshnessBlind)
	blockageZSum := loxWitness.Blinds[cred.LoxBlockages].Add(blockageBlind)

	eg, err := cred.GenerateElGamalKeyPair(rng)
	if err != nil {
		return nil, nil, err
	}
	bucketEnc, eBucket, err := cred.EncryptAttr(eg.Pub, loxAttrs.Bucket, rng)
	if err != nil {
		return nil, nil, err
	}
	blockagesEnc, eBlockages, err := cred.EncryptAttr(eg.Pub, loxAttrs.Blockages, rng)
	if err != nil {
		return nil, nil, err
	}

	loxV, err := cred.ShowVPoint(loxPub, loxShowing, loxWitness, cred.LevelUpPlan)
	if err != nil {
		return nil, nil, err
	}
	bucketReachV, err := cred.ShowVPoint(bucketReachPub, bucketReachShowing, bucketReachWitness, cred.LevelUpBucketReachPlan)
	if err != nil {
		return nil, nil, err
	}

	loxNames, bucketReachNames := cred.LevelUpSecretNames()
	points := mergePoints(
		cred.ShowPoints("lox", loxPub, loxShowing.P, loxV, loxShowing, cred.LevelUpPlan),
		cred.ShowPoints("bucketreach", bucketReachPub, bucketReachShowing.P, bucketReachV, bucketReachShowing, cred.LevelUpBucketReachPlan),
		cred.RangeLinkPoints("levelup/freshness", freshnessTarget),
		cred.RangeLinkPoints("levelup/blockage", blockageTarget),
		cred.EncAttrPoints("newlox", cred.LevelUpBucketEncIdx, bucketEnc, eg.Pub),
		cred.EncAttrPoints("newlox", cred.LevelUpBlockagesEncIdx, blockagesEnc, eg.Pub),
	)
	secrets := mergeScalars(
		cred.ShowSecrets("lox", loxWitness, cred.LevelUpPlan, loxNames),
		cred.ShowSecrets("bucketreach", bucketReachWitness, cred.LevelUpBucketReachPlan, bucketReachNames),
		cred.RangeLinkSecrets("levelup/freshness", freshnessZSum),
		cred.RangeLinkSecrets("levelup/blockage", blockageZSum),
		cred.EncAttrSecrets("newlox", cred.LevelUpBucketEncIdx, eBucket),
		cred.EncAttrSecrets("newlox", cred.LevelUpBlockagesEncIdx, eBlockages),
	)
	stmt, err := zkp.NewStatement("levelup/request", cred.LevelUpConstraints()...)
	if err != nil {
		return nil, nil, err
	}
	proof, err := zkp.Prove(stmt, zkp.Assignment{Points: points, Secrets: secrets})
	if err != nil {
		return nil, nil, err
	}

	req := &issuer.LevelUpRequest{
		LoxP:                loxShowing.P,
		LoxShowing:          loxShowing,
		LoxRevealed:         map[int]*group.Scalar{cred.LoxID: loxAttrs.ID, cred.LoxTrustLevel: loxAttrs.TrustLevel},
		BucketReachP:        bucketReachShowing.P,
		BucketReachShowing:  bucketReachShowing,
		BucketReachRevealed: map[int]*group.Scalar{cred.BucketReachDate: bucketReachAttrs.Date},
		FreshnessRange:      freshnessRange,
		BlockageRange:       blockageRange,
		D:                   eg.Pub,
		BucketEnc:           bucketEnc,
		BlockagesEnc:        blockagesEnc,
		Proof:               proof,
	}
	state := &LevelUpState{
		elgamal:      eg,
		bucketEnc:    bucketEnc,
		blockagesEnc: blockagesEnc,
		id:           loxAttrs.ID,
		bucket:       loxAttrs.Bucket,
		blockages:    loxAttrs.Blockages,
	}
	return req, state, nil
}

// HandleLevelUpResponse verifies resp's issuance proof and reconstructs
// the leveled-up Lox credential.
func HandleLevelUpResponse(state *LevelUpState, resp *issuer.LevelUpResponse, loxPub *cred.PublicKey) (*cred.MAC, cred.LoxAttrs, error) {
	blinded := map[int]*cred.BlindAttr{
		cred.LoxBucket:    {Enc: state.bucketEnc},
		cred.LoxBlockages: {Enc: state.blockagesEnc},
	}
	if err := verifyIssuance("lox", loxPub, resp.Revealed, blinded, state.elgamal.Pub, resp.Issuance); err != nil {
		return nil, cred.LoxAttrs{}, err
	}
	mac := decryptMAC(state.elgamal.Priv, resp.Issuance)
	attrs := cred.LoxAttrsFromMap(map[int]*group.Scalar{
		cred.LoxID:               state.id,
		cred.LoxBucket:           state.bucket,
		cred.LoxTrustLevel:       resp.Revealed[cred.LoxTrustLevel],
		cred.LoxLevelSince:       resp.Revealed[cred.LoxLevelSince],
		cred.LoxInvitesRemaining: resp.Revealed[cred.LoxInvitesRemaining],
		cred.LoxBlockages:        state.blockages,
	})
	return mac, attrs, nil
}
