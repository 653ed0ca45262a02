package client

import (
	"testing"

	"github.com/asv/lox/bridgeauth"
	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/issuer"
)

// advancingDate is a DateSource whose reported day can be moved
// forward mid-test, the way real time would pass between a Lox
// credential's level_since stamp and a later level_up attempt.
type advancingDate struct{ day uint32 }

func (d *advancingDate) Today() uint32 { return d.day }

func newTestIssuer(t *testing.T, bucketID uint32, dates *advancingDate) *issuer.Issuer {
	t.Helper()
	bridges := bridgeauth.NewBridgeTable()
	if err := bridges.AddBucket(bucketID, []bridgeauth.BridgeLine{{Descriptor: "test bridge"}}, nil); err != nil {
		t.Fatalf("AddBucket: %v", err)
	}
	iss, err := issuer.New(bridges, bridgeauth.NewHMACAuth([]byte("session test key")), dates, nil)
	if err != nil {
		t.Fatalf("issuer.New: %v", err)
	}
	return iss
}

func sessionKeys(iss *issuer.Issuer) IssuerKeys {
	return IssuerKeys{
		Lox:          iss.Lox.Current().Pub,
		Migration:    iss.Migration.Current().Pub,
		Invitation:   iss.Invitation.Current().Pub,
		BucketReach:  iss.BucketReach.Current().Pub,
		MigrationKey: iss.MigrationKey.Current().Pub,
	}
}

func TestSessionOpenInviteThenLevelUp(t *testing.T) {
	const bucketID = 7
	dates := &advancingDate{day: 1000}
	iss := newTestIssuer(t, bucketID, dates)
	auth := iss.Auth.(*bridgeauth.HMACAuth)

	sess := NewSession(sessionKeys(iss))

	inviteID, err := group.RandomScalar(nil)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	token := auth.Issue(inviteID, bucketID)

	if _, err := sess.OpenInvite(token, nil, func(req *issuer.OpenInviteRequest) (*issuer.OpenInviteResponse, error) {
		return iss.HandleOpenInvite(req, nil)
	}); err != nil {
		t.Fatalf("OpenInvite: %v", err)
	}
	if sess.LoxAttrs.TrustLevel.BigInt().Int64() != 0 {
		t.Fatalf("freshly bootstrapped credential should be trust_level 0")
	}

	// trust_promotion + migration to reach trust_level 1 in a new bucket,
	// required before level_up (which demands level >= 1).
	iss.RegisterMigration(cred.TrustUpgrade, bucketID, bucketID+1)
	if err := iss.Bridges.AddBucket(bucketID+1, []bridgeauth.BridgeLine{{Descriptor: "promoted bridge"}}, nil); err != nil {
		t.Fatalf("AddBucket: %v", err)
	}

	if err := sess.TrustPromotion(nil, func(req *issuer.TrustPromotionRequest) (*issuer.TrustPromotionResponse, error) {
		return iss.HandleTrustPromotion(req, nil)
	}); err != nil {
		t.Fatalf("TrustPromotion: %v", err)
	}
	if err := sess.Migrate(nil, func(req *issuer.MigrationRequest) (*issuer.MigrationResponse, error) {
		return iss.HandleMigration(req, nil)
	}); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if sess.LoxAttrs.TrustLevel.BigInt().Int64() != 1 {
		t.Fatalf("expected trust_level 1 after migration, got %s", sess.LoxAttrs.TrustLevel.BigInt())
	}

	newBucketID, _, err := cred.UnpackBucket(sess.LoxAttrs.Bucket)
	if err != nil {
		t.Fatalf("UnpackBucket: %v", err)
	}
	levelSince := uint32(sess.LoxAttrs.LevelSince.BigInt().Int64())

	// Advance past LEVEL_INTERVAL[1] days before attempting to level up.
	dates.day += cred.LevelInterval[1] + 1

	bucketReachMAC, bucketReachAttrs, err := iss.BucketReachabilityFor(newBucketID, nil)
	if err != nil {
		t.Fatalf("BucketReachabilityFor: %v", err)
	}

	if err := sess.LevelUp(bucketReachMAC, bucketReachAttrs, dates.day, levelSince, nil, func(req *issuer.LevelUpRequest) (*issuer.LevelUpResponse, error) {
		return iss.HandleLevelUp(req, nil)
	}); err != nil {
		t.Fatalf("LevelUp: %v", err)
	}
	if sess.LoxAttrs.TrustLevel.BigInt().Int64() != 2 {
		t.Fatalf("expected trust_level 2 after level up, got %s", sess.LoxAttrs.TrustLevel.BigInt())
	}
}
