package client

import (
	"io"
	"sync"

	"github.com/asv/lox/bridgeauth"
	"github.com/asv/lox/cred"
	"github.com/asv/lox/issuer"
)

// IssuerKeys collects the public keys a Session needs to verify every
// issuer response: one per credential type, matching the generations
// iss.Lox/Migration/Invitation/BucketReach/MigrationKey hand out.
// UpdateCred and UpdateInvite take a retired generation's key as an
// explicit argument instead, since a single IssuerKeys only ever holds
// the current one.
type IssuerKeys struct {
	Lox          *cred.PublicKey
	Migration    *cred.PublicKey
	Invitation   *cred.PublicKey
	BucketReach  *cred.PublicKey
	MigrationKey *cred.PublicKey
}

// Session wraps one user's current credential set and the issuer keys
// needed to extend it, calling the matching Request/HandleResponse pair
// for each protocol and replacing the stored credential atomically on
// success. It is the transport-agnostic analogue of the Tor Browser
// service wrapper's single-credential lifecycle management: callers
// supply a send function that actually moves the request to the
// issuer and carries its response back, by whatever transport they
// like. Session does not persist itself or schedule its own protocol
// runs; both are front-end and persistent-store concerns left outside
// this package.
type Session struct {
	mu sync.Mutex

	Keys IssuerKeys

	LoxMAC   *cred.MAC
	LoxAttrs cred.LoxAttrs

	InvitationMAC   *cred.MAC
	InvitationAttrs cred.InvitationAttrs

	MigrationMAC   *cred.MAC
	MigrationAttrs cred.MigrationAttrs
}

// NewSession starts an empty Session against the given issuer keys.
// Bootstrap it with OpenInvite or RedeemInvite before calling any
// method that requires a Lox credential.
func NewSession(keys IssuerKeys) *Session {
	return &Session{Keys: keys}
}

func (s *Session) lox() (*cred.MAC, cred.LoxAttrs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoxMAC == nil {
		return nil, cred.LoxAttrs{}, errNoLoxCredential
	}
	return s.LoxMAC, s.LoxAttrs, nil
}

func (s *Session) setLox(mac *cred.MAC, attrs cred.LoxAttrs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LoxMAC, s.LoxAttrs = mac, attrs
}

func (s *Session) setMigration(mac *cred.MAC, attrs cred.MigrationAttrs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MigrationMAC, s.MigrationAttrs = mac, attrs
}

func (s *Session) setInvitation(mac *cred.MAC, attrs cred.InvitationAttrs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InvitationMAC, s.InvitationAttrs = mac, attrs
}

// OpenInvite bootstraps the session's Lox credential from a bridge-
// distribution invitation token (§4.2.1).
func (s *Session) OpenInvite(token []byte, rng io.Reader, send func(*issuer.OpenInviteRequest) (*issuer.OpenInviteResponse, error)) (bridgeauth.BridgeLine, error) {
	req, state, err := RequestOpenInvite(token, rng)
	if err != nil {
		return bridgeauth.BridgeLine{}, err
	}
	resp, err := send(req)
	if err != nil {
		return bridgeauth.BridgeLine{}, err
	}
	mac, attrs, bridge, err := HandleOpenInviteResponse(state, resp, s.Keys.Lox)
	if err != nil {
		return bridgeauth.BridgeLine{}, err
	}
	s.setLox(mac, attrs)
	return bridge, nil
}

// TrustPromotion runs §4.2.2's first step against the session's
// current Lox credential, storing the resulting TrustUpgrade Migration
// credential for a following Migrate call.
func (s *Session) TrustPromotion(rng io.Reader, send func(*issuer.TrustPromotionRequest) (*issuer.TrustPromotionResponse, error)) error {
	loxMAC, loxAttrs, err := s.lox()
	if err != nil {
		return err
	}
	req, state, err := RequestTrustPromotion(s.Keys.Lox, loxMAC, loxAttrs, rng)
	if err != nil {
		return err
	}
	resp, err := send(req)
	if err != nil {
		return err
	}
	migMAC, migAttrs, err := HandleTrustPromotionResponse(state, resp, s.Keys.MigrationKey)
	if err != nil {
		return err
	}
	s.setMigration(migMAC, migAttrs)
	return nil
}

// Migrate runs §4.2.2's second step, consuming the TrustUpgrade-type
// Migration credential TrustPromotion stored and replacing the
// session's Lox credential with the migrated one. The issuer rejects a
// Blockage-type Migration credential here; BlockageMigration consumes
// those.
func (s *Session) Migrate(rng io.Reader, send func(*issuer.MigrationRequest) (*issuer.MigrationResponse, error)) error {
	loxMAC, loxAttrs, err := s.lox()
	if err != nil {
		return err
	}
	s.mu.Lock()
	migMAC, migAttrs := s.MigrationMAC, s.MigrationAttrs
	s.mu.Unlock()
	if migMAC == nil {
		return errNoMigrationCredential
	}
	req, state, err := RequestMigration(s.Keys.Lox, s.Keys.Migration, loxMAC, loxAttrs, migMAC, migAttrs, rng)
	if err != nil {
		return err
	}
	resp, err := send(req)
	if err != nil {
		return err
	}
	newMAC, newAttrs, err := HandleMigrationResponse(state, resp, s.Keys.Lox)
	if err != nil {
		return err
	}
	s.setLox(newMAC, newAttrs)
	s.setMigration(nil, cred.MigrationAttrs{})
	return nil
}

// LevelUp runs §4.2.3 against the session's Lox credential and a
// BucketReachability credential the caller fetched from the issuer for
// today, replacing the Lox credential with one at the next trust
// level.
func (s *Session) LevelUp(bucketReachMAC *cred.MAC, bucketReachAttrs cred.BucketReachAttrs, today, levelSinceDay uint32, rng io.Reader, send func(*issuer.LevelUpRequest) (*issuer.LevelUpResponse, error)) error {
	loxMAC, loxAttrs, err := s.lox()
	if err != nil {
		return err
	}
	req, state, err := RequestLevelUp(s.Keys.Lox, s.Keys.BucketReach, loxMAC, loxAttrs, bucketReachMAC, bucketReachAttrs, today, levelSinceDay, rng)
	if err != nil {
		return err
	}
	resp, err := send(req)
	if err != nil {
		return err
	}
	newMAC, newAttrs, err := HandleLevelUpResponse(state, resp, s.Keys.Lox)
	if err != nil {
		return err
	}
	s.setLox(newMAC, newAttrs)
	return nil
}

// IssueInvite runs §4.2.4, spending one of the session's invites to
// mint a fresh Invitation credential for a prospective invitee. The
// session's own Lox credential is replaced by the one the issuer
// returns (invites_remaining decremented); the minted Invitation is
// returned to hand off, not retained in the session.
func (s *Session) IssueInvite(bucketReachMAC *cred.MAC, bucketReachAttrs cred.BucketReachAttrs, rng io.Reader, send func(*issuer.IssueInviteRequest) (*issuer.IssueInviteResponse, error)) (*cred.MAC, cred.InvitationAttrs, error) {
	loxMAC, loxAttrs, err := s.lox()
	if err != nil {
		return nil, cred.InvitationAttrs{}, err
	}
	req, state, err := RequestIssueInvite(s.Keys.Lox, s.Keys.BucketReach, loxMAC, loxAttrs, bucketReachMAC, bucketReachAttrs, rng)
	if err != nil {
		return nil, cred.InvitationAttrs{}, err
	}
	resp, err := send(req)
	if err != nil {
		return nil, cred.InvitationAttrs{}, err
	}
	newLoxMAC, newLoxAttrs, invMAC, invAttrs, err := HandleIssueInviteResponse(state, resp, s.Keys.Lox, s.Keys.Invitation)
	if err != nil {
		return nil, cred.InvitationAttrs{}, err
	}
	s.setLox(newLoxMAC, newLoxAttrs)
	return invMAC, invAttrs, nil
}

// RedeemInvite bootstraps a new Session's Lox credential from an
// Invitation credential handed off by another user (§4.2.5),
// the alternative entry point to OpenInvite.
func (s *Session) RedeemInvite(invMAC *cred.MAC, invAttrs cred.InvitationAttrs, today, dateDay uint32, rng io.Reader, send func(*issuer.RedeemInviteRequest) (*issuer.RedeemInviteResponse, error)) error {
	req, state, err := RequestRedeemInvite(s.Keys.Invitation, invMAC, invAttrs, today, dateDay, rng)
	if err != nil {
		return err
	}
	resp, err := send(req)
	if err != nil {
		return err
	}
	mac, attrs, err := HandleRedeemInviteResponse(state, resp, s.Keys.Lox)
	if err != nil {
		return err
	}
	s.setLox(mac, attrs)
	return nil
}

// CheckBlockage runs §4.2.6's first step, the Blockage-type sibling of
// TrustPromotion: it looks for a demotion row for the session's
// current bucket and, if found, stores the resulting Migration
// credential for a following BlockageMigration call.
func (s *Session) CheckBlockage(rng io.Reader, send func(*issuer.CheckBlockageRequest) (*issuer.CheckBlockageResponse, error)) error {
	loxMAC, loxAttrs, err := s.lox()
	if err != nil {
		return err
	}
	req, state, err := RequestCheckBlockage(s.Keys.Lox, loxMAC, loxAttrs, rng)
	if err != nil {
		return err
	}
	resp, err := send(req)
	if err != nil {
		return err
	}
	migMAC, migAttrs, err := HandleCheckBlockageResponse(state, resp, s.Keys.MigrationKey)
	if err != nil {
		return err
	}
	s.setMigration(migMAC, migAttrs)
	return nil
}

// BlockageMigration runs §4.2.7, consuming the Blockage-type Migration
// credential CheckBlockage stored and replacing the session's Lox
// credential with the demoted one.
func (s *Session) BlockageMigration(rng io.Reader, send func(*issuer.BlockageMigrationRequest) (*issuer.BlockageMigrationResponse, error)) error {
	loxMAC, loxAttrs, err := s.lox()
	if err != nil {
		return err
	}
	s.mu.Lock()
	migMAC, migAttrs := s.MigrationMAC, s.MigrationAttrs
	s.mu.Unlock()
	if migMAC == nil {
		return errNoMigrationCredential
	}
	req, state, err := RequestBlockageMigration(s.Keys.Lox, s.Keys.Migration, loxMAC, loxAttrs, migMAC, migAttrs, rng)
	if err != nil {
		return err
	}
	resp, err := send(req)
	if err != nil {
		return err
	}
	newMAC, newAttrs, err := HandleBlockageMigrationResponse(state, resp, s.Keys.Lox)
	if err != nil {
		return err
	}
	s.setLox(newMAC, newAttrs)
	s.setMigration(nil, cred.MigrationAttrs{})
	return nil
}

// UpdateCred runs §4.2.8 for the Lox credential type, reissuing it
// under the issuer's current key within the grace window. retiredPub
// and generation name the retired key generation the session's current
// credential is still valid under.
func (s *Session) UpdateCred(retiredPub *cred.PublicKey, generation int, rng io.Reader, send func(*issuer.UpdateCredRequest) (*issuer.UpdateCredResponse, error)) error {
	loxMAC, loxAttrs, err := s.lox()
	if err != nil {
		return err
	}
	req, state, err := RequestUpdateCred(retiredPub, generation, loxMAC, loxAttrs, rng)
	if err != nil {
		return err
	}
	resp, err := send(req)
	if err != nil {
		return err
	}
	newMAC, newAttrs, err := HandleUpdateCredResponse(state, resp, s.Keys.Lox)
	if err != nil {
		return err
	}
	s.setLox(newMAC, newAttrs)
	return nil
}

// UpdateInvite runs §4.2.8 for the Invitation credential type,
// mirroring UpdateCred.
func (s *Session) UpdateInvite(retiredPub *cred.PublicKey, generation int, rng io.Reader, send func(*issuer.UpdateInviteRequest) (*issuer.UpdateInviteResponse, error)) error {
	s.mu.Lock()
	invMAC, invAttrs := s.InvitationMAC, s.InvitationAttrs
	s.mu.Unlock()
	if invMAC == nil {
		return errNoInvitationCredential
	}
	req, state, err := RequestUpdateInvite(retiredPub, generation, invMAC, invAttrs, rng)
	if err != nil {
		return err
	}
	resp, err := send(req)
	if err != nil {
		return err
	}
	newMAC, newAttrs, err := HandleUpdateInviteResponse(state, resp, s.Keys.Invitation)
	if err != nil {
		return err
	}
	s.setInvitation(newMAC, newAttrs)
	return nil
}
