package client

import (
	"errors"
	"testing"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
)

func issueLoxCred(t *testing.T, attrs cred.LoxAttrs) (*cred.PublicKey, *cred.MAC) {
	t.Helper()
	priv, pub, err := cred.GenerateKeyPair(cred.LoxNumAttrs, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	mac, err := cred.Issue(priv, attrs.Slice(), nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return pub, mac
}

func issueBucketReachCred(t *testing.T, attrs cred.BucketReachAttrs) (*cred.PublicKey, *cred.MAC) {
	t.Helper()
	priv, pub, err := cred.GenerateKeyPair(cred.BucketReachNumAttrs, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	mac, err := cred.Issue(priv, attrs.Slice(), nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return pub, mac
}

func issueInvitationCred(t *testing.T, attrs cred.InvitationAttrs) (*cred.PublicKey, *cred.MAC) {
	t.Helper()
	priv, pub, err := cred.GenerateKeyPair(cred.InvitationNumAttrs, nil)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	mac, err := cred.Issue(priv, attrs.Slice(), nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return pub, mac
}

// TestRequestLevelUpTimeThresholdNotMet covers the boundary one day
// short of LEVEL_INTERVAL[1]: RequestLevelUp must refuse before ever
// reaching the range proof, reporting exactly how many days remain.
func TestRequestLevelUpTimeThresholdNotMet(t *testing.T) {
	const levelSinceDay = 1000
	loxAttrs := cred.LoxAttrs{
		ID:               group.FromUint64(1),
		Bucket:           group.FromUint64(2),
		TrustLevel:       group.FromUint64(1),
		LevelSince:       group.FromUint64(levelSinceDay),
		InvitesRemaining: group.FromUint64(0),
		Blockages:        group.FromUint64(0),
	}
	loxPub, loxMAC := issueLoxCred(t, loxAttrs)

	bucketReachAttrs := cred.BucketReachAttrs{
		Date:   group.FromUint64(levelSinceDay + cred.LevelInterval[1] - 1),
		Bucket: loxAttrs.Bucket,
	}
	bucketReachPub, bucketReachMAC := issueBucketReachCred(t, bucketReachAttrs)

	today := uint32(levelSinceDay + cred.LevelInterval[1] - 1)
	_, _, err := RequestLevelUp(loxPub, bucketReachPub, loxMAC, loxAttrs, bucketReachMAC, bucketReachAttrs, today, levelSinceDay, nil)
	if err == nil {
		t.Fatalf("expected an error one day short of the level interval")
	}
	if !errors.Is(err, common.ErrTimeThresholdNotMet) {
		t.Fatalf("expected ErrTimeThresholdNotMet, got %v", err)
	}
	var tErr *common.TimeThresholdNotMetError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected a *TimeThresholdNotMetError, got %T", err)
	}
	if tErr.DaysShort != 1 {
		t.Fatalf("expected 1 day short, got %d", tErr.DaysShort)
	}
}

// TestRequestIssueInviteNoInvitationsRemaining covers a Lox credential
// with invites_remaining already at 0: RequestIssueInvite must refuse
// before ever constructing the nonzero proof.
func TestRequestIssueInviteNoInvitationsRemaining(t *testing.T) {
	loxAttrs := cred.LoxAttrs{
		ID:               group.FromUint64(1),
		Bucket:           group.FromUint64(2),
		TrustLevel:       group.FromUint64(1),
		LevelSince:       group.FromUint64(1000),
		InvitesRemaining: group.FromUint64(0),
		Blockages:        group.FromUint64(0),
	}
	loxPub, loxMAC := issueLoxCred(t, loxAttrs)

	bucketReachAttrs := cred.BucketReachAttrs{
		Date:   group.FromUint64(1000),
		Bucket: loxAttrs.Bucket,
	}
	bucketReachPub, bucketReachMAC := issueBucketReachCred(t, bucketReachAttrs)

	_, _, err := RequestIssueInvite(loxPub, bucketReachPub, loxMAC, loxAttrs, bucketReachMAC, bucketReachAttrs, nil)
	if !errors.Is(err, common.ErrNoInvitationsRemaining) {
		t.Fatalf("expected ErrNoInvitationsRemaining, got %v", err)
	}
}

// TestRequestRedeemInviteFutureDate covers an Invitation credential
// whose date is in the future relative to the caller's own clock.
func TestRequestRedeemInviteFutureDate(t *testing.T) {
	invAttrs := cred.InvitationAttrs{
		InvID:     group.FromUint64(1),
		Date:      group.FromUint64(2000),
		Bucket:    group.FromUint64(3),
		Blockages: group.FromUint64(0),
	}
	invPub, invMAC := issueInvitationCred(t, invAttrs)

	_, _, err := RequestRedeemInvite(invPub, invMAC, invAttrs, 1999, 2000, nil)
	if !errors.Is(err, common.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	var fErr *common.InvalidFieldError
	if !errors.As(err, &fErr) {
		t.Fatalf("expected a *InvalidFieldError, got %T", err)
	}
	if fErr.Field != "date" {
		t.Fatalf("expected field %q, got %q", "date", fErr.Field)
	}
}

// TestRequestRedeemInviteExpired covers an Invitation credential dated
// just past INVITATION_EXPIRY days ago.
func TestRequestRedeemInviteExpired(t *testing.T) {
	const dateDay = 1000
	invAttrs := cred.InvitationAttrs{
		InvID:     group.FromUint64(1),
		Date:      group.FromUint64(dateDay),
		Bucket:    group.FromUint64(3),
		Blockages: group.FromUint64(0),
	}
	invPub, invMAC := issueInvitationCred(t, invAttrs)

	today := uint32(dateDay + cred.InvitationExpiry + 1)
	_, _, err := RequestRedeemInvite(invPub, invMAC, invAttrs, today, dateDay, nil)
	if !errors.Is(err, common.ErrCredentialExpired) {
		t.Fatalf("expected ErrCredentialExpired, got %v", err)
	}
}
