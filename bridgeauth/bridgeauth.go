package bridgeauth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/asv/lox/group"
)

// BridgeLine is the user-consumable description of one bridge; its
// actual fields (address, fingerprint, pluggable-transport args) are
// the front-end's concern per §6 and are left as an opaque string here.
type BridgeLine struct {
	Descriptor string
}

// BridgeTable is the issuer's read-only bridge inventory: a 128-bit
// AES key per bucket (used nowhere in this package directly, but
// carried because the issuer's own state keys BucketReachability and
// open-invite issuance off it) and the bridge lines each bucket
// contains.
type BridgeTable struct {
	Keys    map[uint32][16]byte
	Buckets map[uint32][]BridgeLine
}

// NewBridgeTable returns an empty table ready for bucket registration.
func NewBridgeTable() *BridgeTable {
	return &BridgeTable{Keys: make(map[uint32][16]byte), Buckets: make(map[uint32][]BridgeLine)}
}

// AddBucket registers bucketID with a fresh key and its bridge lines.
func (t *BridgeTable) AddBucket(bucketID uint32, lines []BridgeLine, rng io.Reader) error {
	if rng == nil {
		rng = rand.Reader
	}
	var key [16]byte
	if _, err := io.ReadFull(rng, key[:]); err != nil {
		return fmt.Errorf("bridgeauth: %w", err)
	}
	t.Keys[bucketID] = key
	t.Buckets[bucketID] = lines
	return nil
}

// Representative returns one bridge line for bucketID, as returned by
// open_invite's response (§4.2).
func (t *BridgeTable) Representative(bucketID uint32) (BridgeLine, bool) {
	lines, ok := t.Buckets[bucketID]
	if !ok || len(lines) == 0 {
		return BridgeLine{}, false
	}
	return lines[0], true
}

// OpenInviteTokenSize is the fixed length of an open-invitation token:
// a 32-byte invite_id scalar, a 4-byte bucket id, and a 32-byte
// authentication tag.
const OpenInviteTokenSize = group.ScalarSize + 4 + sha256.Size

// BridgeAuth authenticates and parses open-invitation tokens. §6
// scopes the actual bridge-distribution signature scheme out of this
// module; HMACAuth below is a placeholder suitable for tests and
// demos, standing in for whatever signature scheme a real deployment's
// bridge-distribution authority uses.
type BridgeAuth interface {
	// Verify checks token's authentication tag under any currently
	// trusted key (current or retained-old, to tolerate bridge-
	// distribution key rotation) and returns the invite_id and
	// bucket_id it carries.
	Verify(token []byte) (inviteID *group.Scalar, bucketID uint32, err error)
}

// HMACAuth authenticates tokens with HMAC-SHA256 under a set of
// trusted keys, newest first. It is not the production bridge-
// distribution signature scheme (§6 leaves that external); it exists
// so tests and examples can construct and verify tokens end to end.
type HMACAuth struct {
	mu   sync.RWMutex
	keys [][]byte
}

// NewHMACAuth starts an HMACAuth trusting key as its only key.
func NewHMACAuth(key []byte) *HMACAuth {
	return &HMACAuth{keys: [][]byte{key}}
}

// RotateKey adds a new current key, retaining the previous one as
// trusted for verification (mirroring the issuer's own retired-key
// tolerance).
func (a *HMACAuth) RotateKey(key []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append([][]byte{key}, a.keys...)
}

// Issue authenticates (inviteID, bucketID) under the current key,
// producing a token Verify will accept.
func (a *HMACAuth) Issue(inviteID *group.Scalar, bucketID uint32) []byte {
	a.mu.RLock()
	key := a.keys[0]
	a.mu.RUnlock()
	return a.sign(key, inviteID, bucketID)
}

func (a *HMACAuth) sign(key []byte, inviteID *group.Scalar, bucketID uint32) []byte {
	body := make([]byte, group.ScalarSize+4)
	copy(body, inviteID.Bytes())
	binary.BigEndian.PutUint32(body[group.ScalarSize:], bucketID)
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return append(body, mac.Sum(nil)...)
}

// Verify implements BridgeAuth.
func (a *HMACAuth) Verify(token []byte) (*group.Scalar, uint32, error) {
	if len(token) != OpenInviteTokenSize {
		return nil, 0, fmt.Errorf("bridgeauth: token must be %d bytes, got %d", OpenInviteTokenSize, len(token))
	}
	body, tag := token[:group.ScalarSize+4], token[group.ScalarSize+4:]

	a.mu.RLock()
	keys := append([][]byte(nil), a.keys...)
	a.mu.RUnlock()

	var valid bool
	for _, key := range keys {
		mac := hmac.New(sha256.New, key)
		mac.Write(body)
		if hmac.Equal(mac.Sum(nil), tag) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, 0, fmt.Errorf("bridgeauth: invalid token signature")
	}

	inviteID, err := group.ScalarFromBytes(body[:group.ScalarSize])
	if err != nil {
		return nil, 0, fmt.Errorf("bridgeauth: %w", err)
	}
	bucketID := binary.BigEndian.Uint32(body[group.ScalarSize:])
	return inviteID, bucketID, nil
}

// DateSource supplies the issuer's notion of "today" as days since a
// fixed epoch, matching the scale of level_since/date attributes. A
// real deployment wires a clock; tests pin a fixed value.
type DateSource interface {
	Today() uint32
}

// FixedDate is a DateSource returning a constant day, for tests and
// deterministic walkthroughs.
type FixedDate uint32

func (d FixedDate) Today() uint32 { return uint32(d) }

// StateSink persists issuer state snapshots. §6 scopes the actual
// storage technology out; an in-memory StateSink is enough to satisfy
// the interface for tests.
type StateSink interface {
	Save(blob []byte) error
	Load() ([]byte, error)
}

// MemoryStateSink is a StateSink backed by a process-local byte slice.
type MemoryStateSink struct {
	mu   sync.RWMutex
	blob []byte
}

// NewMemoryStateSink returns an empty MemoryStateSink.
func NewMemoryStateSink() *MemoryStateSink { return &MemoryStateSink{} }

func (s *MemoryStateSink) Save(blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = append([]byte(nil), blob...)
	return nil
}

func (s *MemoryStateSink) Load() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.blob...), nil
}
