package issuer

import (
	"fmt"
	"io"
	"sync"

	"github.com/asv/lox/bridgeauth"
	"github.com/asv/lox/cred"
	"github.com/asv/lox/filter"
)

// TypeState is one credential type's current key and replay filter,
// the issuer's Active(pub, priv, filter) per §5.
type TypeState struct {
	Priv   *cred.PrivateKey
	Pub    *cred.PublicKey
	Filter *filter.Filter
}

// TypeHistory is TypeState plus every retired generation, newest
// first. Rotation pushes the current state onto Retired and installs
// a fresh one; retired states are never mutated again.
type TypeHistory struct {
	mu      sync.RWMutex
	current TypeState
	retired []TypeState
}

// NewTypeHistory generates a fresh key and filter for a credential
// type with numAttrs attributes.
func NewTypeHistory(numAttrs int, rng io.Reader) (*TypeHistory, error) {
	priv, pub, err := cred.GenerateKeyPair(numAttrs, rng)
	if err != nil {
		return nil, err
	}
	return &TypeHistory{current: TypeState{Priv: priv, Pub: pub, Filter: filter.NewMemory()}}, nil
}

// NewTypeHistoryFromKey wraps an already-generated key pair in a fresh
// TypeHistory with an empty filter and no retired generations. It lets
// a persisted key outlive the process that generated it (cmd/loxctl's
// issuer-init/serve split) at the cost of the in-memory replay filter
// resetting on reload — a diagnostic-tool limitation, not a property
// of the protocol.
func NewTypeHistoryFromKey(priv *cred.PrivateKey, pub *cred.PublicKey) *TypeHistory {
	return &TypeHistory{current: TypeState{Priv: priv, Pub: pub, Filter: filter.NewMemory()}}
}

// Current returns the active generation.
func (h *TypeHistory) Current() TypeState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Generations reports how many retired generations are retained.
func (h *TypeHistory) Generations() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.retired)
}

// Retired returns retired generation i (0 = most recently retired).
func (h *TypeHistory) Retired(i int) (TypeState, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= len(h.retired) {
		return TypeState{}, fmt.Errorf("issuer: no retired generation %d", i)
	}
	return h.retired[i], nil
}

// Rotate generates a fresh key and filter, retiring the current one.
func (h *TypeHistory) Rotate(numAttrs int, rng io.Reader) error {
	priv, pub, err := cred.GenerateKeyPair(numAttrs, rng)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.retired = append([]TypeState{h.current}, h.retired...)
	h.current = TypeState{Priv: priv, Pub: pub, Filter: filter.NewMemory()}
	return nil
}

// Issuer aggregates every credential type's key/filter history plus
// the external collaborators §6 scopes out of the protocol engine
// proper: the bridge inventory, the bridge-distribution token
// authenticator, and the date source. It is safe for single-threaded
// use per request; §5 describes the issuer as one logical instance per
// shard, not a freely-concurrent server.
type Issuer struct {
	mu sync.Mutex

	Lox          *TypeHistory
	Migration    *TypeHistory
	Invitation   *TypeHistory
	BucketReach  *TypeHistory
	MigrationKey *TypeHistory

	OpenInviteFilter *filter.History

	Bridges *bridgeauth.BridgeTable
	Auth    bridgeauth.BridgeAuth
	Dates   bridgeauth.DateSource

	// Migrations holds the (from_bucket, to_bucket) routes the issuer
	// offers per migration type, populated by RegisterMigration. Every
	// check_blockage/trust_promotion response's encrypted table is
	// built by walking the routes registered here.
	Migrations map[cred.MigrationType][]MigrationPair

	bucketReachCache map[uint32]bucketReachEntry
}

type bucketReachEntry struct {
	day uint32
	mac *cred.MAC
}

// New builds a fresh Issuer with one generation of keys per credential
// type.
func New(bridges *bridgeauth.BridgeTable, auth bridgeauth.BridgeAuth, dates bridgeauth.DateSource, rng io.Reader) (*Issuer, error) {
	lox, err := NewTypeHistory(cred.LoxNumAttrs, rng)
	if err != nil {
		return nil, err
	}
	migration, err := NewTypeHistory(cred.MigrationNumAttrs, rng)
	if err != nil {
		return nil, err
	}
	invitation, err := NewTypeHistory(cred.InvitationNumAttrs, rng)
	if err != nil {
		return nil, err
	}
	bucketReach, err := NewTypeHistory(cred.BucketReachNumAttrs, rng)
	if err != nil {
		return nil, err
	}
	migrationKey, err := NewTypeHistory(cred.MigrationKeyNumAttrs, rng)
	if err != nil {
		return nil, err
	}
	return &Issuer{
		Lox:              lox,
		Migration:        migration,
		Invitation:       invitation,
		BucketReach:      bucketReach,
		MigrationKey:     migrationKey,
		OpenInviteFilter: filter.NewHistory(filter.NewMemory()),
		Bridges:          bridges,
		Auth:             auth,
		Dates:            dates,
		Migrations:       make(map[cred.MigrationType][]MigrationPair),
		bucketReachCache: make(map[uint32]bucketReachEntry),
	}, nil
}

// KeyBundle is the exportable half of an Issuer's state: each
// credential type's current key pair, without replay filters or
// retired generations. cmd/loxctl persists a KeyBundle between its
// issuer-init and serve invocations.
type KeyBundle struct {
	Lox          *cred.PrivateKey
	LoxPub       *cred.PublicKey
	Migration    *cred.PrivateKey
	MigrationPub *cred.PublicKey
	Invitation   *cred.PrivateKey
	InvitationPub *cred.PublicKey
	BucketReach    *cred.PrivateKey
	BucketReachPub *cred.PublicKey
	MigrationKey    *cred.PrivateKey
	MigrationKeyPub *cred.PublicKey
}

// KeyBundle snapshots iss's current keys.
func (iss *Issuer) KeyBundle() KeyBundle {
	return KeyBundle{
		Lox: iss.Lox.Current().Priv, LoxPub: iss.Lox.Current().Pub,
		Migration: iss.Migration.Current().Priv, MigrationPub: iss.Migration.Current().Pub,
		Invitation: iss.Invitation.Current().Priv, InvitationPub: iss.Invitation.Current().Pub,
		BucketReach: iss.BucketReach.Current().Priv, BucketReachPub: iss.BucketReach.Current().Pub,
		MigrationKey: iss.MigrationKey.Current().Priv, MigrationKeyPub: iss.MigrationKey.Current().Pub,
	}
}

// NewFromKeyBundle rebuilds an Issuer around a previously persisted
// KeyBundle, with fresh empty replay filters and no retired
// generations (see NewTypeHistoryFromKey).
func NewFromKeyBundle(b KeyBundle, bridges *bridgeauth.BridgeTable, auth bridgeauth.BridgeAuth, dates bridgeauth.DateSource) *Issuer {
	return &Issuer{
		Lox:              NewTypeHistoryFromKey(b.Lox, b.LoxPub),
		Migration:        NewTypeHistoryFromKey(b.Migration, b.MigrationPub),
		Invitation:       NewTypeHistoryFromKey(b.Invitation, b.InvitationPub),
		BucketReach:      NewTypeHistoryFromKey(b.BucketReach, b.BucketReachPub),
		MigrationKey:     NewTypeHistoryFromKey(b.MigrationKey, b.MigrationKeyPub),
		OpenInviteFilter: filter.NewHistory(filter.NewMemory()),
		Bridges:          bridges,
		Auth:             auth,
		Dates:            dates,
		Migrations:       make(map[cred.MigrationType][]MigrationPair),
		bucketReachCache: make(map[uint32]bucketReachEntry),
	}
}

// BucketReachabilityFor returns today's BucketReachability MAC for
// bucketID, minting one on first use each day. level_up and
// issue_invite both require the requester to show one of these
// dated today for the bucket being claimed.
func (iss *Issuer) BucketReachabilityFor(bucketID uint32, rng io.Reader) (*cred.MAC, cred.BucketReachAttrs, error) {
	iss.mu.Lock()
	defer iss.mu.Unlock()

	today := iss.Dates.Today()
	// bucket is packed the same way Lox's own bucket attribute is
	// (PackBucket with the bucket's key), since level_up and
	// issue_invite both prove this value equals the requester's Lox
	// credential's bucket attribute under a shared secret name.
	bucket := cred.PackBucket(bucketID, iss.Bridges.Keys[bucketID])
	if entry, ok := iss.bucketReachCache[bucketID]; ok && entry.day == today {
		attrs := cred.BucketReachAttrs{Date: groupFromUint32(today), Bucket: bucket}
		return entry.mac, attrs, nil
	}
	attrs := cred.BucketReachAttrs{Date: groupFromUint32(today), Bucket: bucket}
	mac, err := cred.Issue(iss.BucketReach.Current().Priv, attrs.Slice(), rng)
	if err != nil {
		return nil, attrs, err
	}
	iss.bucketReachCache[bucketID] = bucketReachEntry{day: today, mac: mac}
	return mac, attrs, nil
}
