package issuer

import (
	"testing"

	"github.com/asv/lox/bridgeauth"
	"github.com/asv/lox/cred"
)

func newTestIssuer(t *testing.T, bucketID uint32) *Issuer {
	t.Helper()
	bridges := bridgeauth.NewBridgeTable()
	if err := bridges.AddBucket(bucketID, []bridgeauth.BridgeLine{{Descriptor: "test bridge"}}, nil); err != nil {
		t.Fatalf("AddBucket: %v", err)
	}
	iss, err := New(bridges, bridgeauth.NewHMACAuth([]byte("test key")), bridgeauth.FixedDate(100), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return iss
}

func TestKeyBundleRoundTrip(t *testing.T) {
	iss := newTestIssuer(t, 1)
	bundle := iss.KeyBundle()

	reloaded := NewFromKeyBundle(bundle, iss.Bridges, iss.Auth, iss.Dates)
	origPub, reloadedPub := iss.Lox.Current().Pub, reloaded.Lox.Current().Pub
	if len(origPub.X) != len(reloadedPub.X) {
		t.Fatalf("reloaded issuer's Lox public key has a different length")
	}
	for i := range origPub.X {
		if !origPub.X[i].Equal(reloadedPub.X[i]) {
			t.Fatalf("reloaded issuer's Lox public key element %d does not match original", i)
		}
	}
	if reloaded.Lox.Generations() != 0 {
		t.Fatalf("reloaded issuer should start with no retired generations")
	}
}

func TestBucketReachabilityForUsesPackedBucket(t *testing.T) {
	iss := newTestIssuer(t, 5)

	_, attrs, err := iss.BucketReachabilityFor(5, nil)
	if err != nil {
		t.Fatalf("BucketReachabilityFor: %v", err)
	}
	want := cred.PackBucket(5, iss.Bridges.Keys[5])
	if !attrs.Bucket.Equal(want) {
		t.Fatalf("BucketReachAttrs.Bucket is not PackBucket(bucketID, key); level_up/issue_invite linkage would fail")
	}

	_, cached, err := iss.BucketReachabilityFor(5, nil)
	if err != nil {
		t.Fatalf("BucketReachabilityFor (cached): %v", err)
	}
	if !cached.Bucket.Equal(want) {
		t.Fatalf("cached BucketReachAttrs.Bucket diverged from the packed form")
	}
}
