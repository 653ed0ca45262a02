package migrationtable

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/asv/lox/group"
)

// PlaintextEntryBytes is the fixed size of one decrypted table row:
// to_bucket's canonical scalar encoding plus two compressed group
// points (P, Q of the Migration credential's MAC). §4.3's distilled
// spec states this as 96 bytes for a 32-byte point encoding; this
// module's group realization uses 48-byte compressed BLS12-381 G1
// points (SPEC_FULL.md §A), so the derived size is 32 + 2*48 = 128.
const PlaintextEntryBytes = 32 + 2*group.PointSize

// NonceBytes and TagBytes are AES-128-GCM's standard nonce and
// authentication-tag sizes.
const (
	NonceBytes = 12
	TagBytes   = 16
)

// EncEntryBytes is the on-the-wire size of one table value: nonce,
// ciphertext (equal in length to the plaintext), and tag.
const EncEntryBytes = NonceBytes + PlaintextEntryBytes + TagBytes

// Entry is one decrypted migration-table row.
type Entry struct {
	ToBucket *group.Scalar
	P        *group.Point
	Q        *group.Point
}

// Marshal encodes e in its fixed 128-byte layout: to_bucket(32) ||
// P_compressed(48) || Q_compressed(48).
func (e *Entry) Marshal() []byte {
	out := make([]byte, 0, PlaintextEntryBytes)
	out = append(out, e.ToBucket.Bytes()...)
	out = append(out, e.P.Compress()...)
	out = append(out, e.Q.Compress()...)
	return out
}

// Unmarshal decodes a 128-byte plaintext entry.
func Unmarshal(b []byte) (*Entry, error) {
	if len(b) != PlaintextEntryBytes {
		return nil, fmt.Errorf("migrationtable: entry must be %d bytes, got %d", PlaintextEntryBytes, len(b))
	}
	toBucket, err := group.ScalarFromBytes(b[:32])
	if err != nil {
		return nil, fmt.Errorf("migrationtable: to_bucket: %w", err)
	}
	P, err := group.Decompress(b[32 : 32+group.PointSize])
	if err != nil {
		return nil, fmt.Errorf("migrationtable: P: %w", err)
	}
	Q, err := group.Decompress(b[32+group.PointSize : 32+2*group.PointSize])
	if err != nil {
		return nil, fmt.Errorf("migrationtable: Q: %w", err)
	}
	return &Entry{ToBucket: toBucket, P: P, Q: Q}, nil
}

// Label identifies one table row.
type Label [16]byte

// Table is the full encrypted structure returned on every
// check_blockage response: uniformly, regardless of whether the
// requester's own row is present, per §4.3's traffic-analysis
// invariant.
type Table map[Label][]byte

// deriveLabelKey computes h = SHA-256(id || from_bucket ||
// Qk_compressed), splitting it into a 16-byte label and a 16-byte
// AES-128 key — the two halves of one SHA-256 digest, per §4.3.
func deriveLabelKey(id, fromBucket *group.Scalar, Qk *group.Point) (label Label, key [16]byte) {
	h := sha256.New()
	h.Write(id.Bytes())
	h.Write(fromBucket.Bytes())
	h.Write(Qk.Compress())
	sum := h.Sum(nil)
	copy(label[:], sum[:16])
	copy(key[:], sum[16:32])
	return label, key
}

// EncryptEntry derives (label, key) from id/fromBucket/Qk and seals
// entry under a fresh random nonce, returning the label to insert into
// Table and the nonce||ciphertext||tag value to store under it.
func EncryptEntry(id, fromBucket *group.Scalar, Qk *group.Point, entry *Entry, rng io.Reader) (Label, []byte, error) {
	if rng == nil {
		rng = rand.Reader
	}
	label, key := deriveLabelKey(id, fromBucket, Qk)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return label, nil, fmt.Errorf("migrationtable: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, TagBytes)
	if err != nil {
		return label, nil, fmt.Errorf("migrationtable: %w", err)
	}
	nonce := make([]byte, NonceBytes)
	if _, err := io.ReadFull(rng, nonce); err != nil {
		return label, nil, fmt.Errorf("migrationtable: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, entry.Marshal(), nil)
	return label, append(nonce, ciphertext...), nil
}

// Lookup derives (label, key) from id/fromBucket/Qk and, if the table
// has a row for that label, decrypts and decodes it. A missing label
// is not an error: per §4.3, "your bucket's row exists in this table
// or not" is the only thing a lookup is allowed to reveal.
func Lookup(table Table, id, fromBucket *group.Scalar, Qk *group.Point) (*Entry, bool, error) {
	label, key := deriveLabelKey(id, fromBucket, Qk)
	sealed, ok := table[label]
	if !ok {
		return nil, false, nil
	}
	if len(sealed) != EncEntryBytes {
		return nil, false, fmt.Errorf("migrationtable: malformed row for label")
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, false, fmt.Errorf("migrationtable: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, TagBytes)
	if err != nil {
		return nil, false, fmt.Errorf("migrationtable: %w", err)
	}
	nonce, ciphertext := sealed[:NonceBytes], sealed[NonceBytes:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, false, fmt.Errorf("migrationtable: authentication failed: %w", err)
	}
	entry, err := Unmarshal(plaintext)
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}
