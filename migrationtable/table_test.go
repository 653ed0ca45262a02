package migrationtable

import (
	"testing"

	"github.com/asv/lox/group"
)

func TestEncryptLookupRoundTrip(t *testing.T) {
	id := group.FromUint64(123)
	fromBucket := group.FromUint64(7)
	Qk := group.A.Mul(group.FromUint64(99))

	entry := &Entry{
		ToBucket: group.FromUint64(8),
		P:        group.B.Mul(group.FromUint64(3)),
		Q:        group.B.Mul(group.FromUint64(5)),
	}

	label, sealed, err := EncryptEntry(id, fromBucket, Qk, entry, nil)
	if err != nil {
		t.Fatalf("EncryptEntry: %v", err)
	}
	table := Table{label: sealed}

	got, ok, err := Lookup(table, id, fromBucket, Qk)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatalf("Lookup reported no row")
	}
	if !got.ToBucket.Equal(entry.ToBucket) || !got.P.Equal(entry.P) || !got.Q.Equal(entry.Q) {
		t.Fatalf("decrypted entry mismatch")
	}

	wrongBucket := group.FromUint64(8)
	if _, ok, err := Lookup(table, id, wrongBucket, Qk); err != nil || ok {
		t.Fatalf("Lookup with wrong bucket should miss cleanly, got (%v, %v)", ok, err)
	}
}
