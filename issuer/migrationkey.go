package issuer

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/migrationtable"
)

// MigrationPair is one (from_bucket, to_bucket) route the issuer offers
// under a given migration type. An operator registers these out of
// band via RegisterMigration; §5 describes this inventory as part of
// the issuer's state alongside the bucket table, not part of the
// protocol engine's per-request logic.
type MigrationPair struct {
	From uint32
	To   uint32
}

// RegisterMigration adds a (from, to) route under migType to the
// issuer's inventory. check_blockage consults cred.Blockage routes,
// trust_promotion consults cred.TrustUpgrade routes.
func (iss *Issuer) RegisterMigration(migType cred.MigrationType, from, to uint32) {
	iss.mu.Lock()
	defer iss.mu.Unlock()
	iss.Migrations[migType] = append(iss.Migrations[migType], MigrationPair{From: from, To: to})
}

// migrationKeyResponse bundles the blind-issued MigrationKey MAC
// (Pk, EncQk, its issuance proof) with the encrypted migration table
// built against that same Pk, per §4.2.6/§4.3.
type migrationKeyResponse struct {
	Issuance *IssuanceResponse
	Table    migrationtable.Table
}

// buildMigrationKeyResponse implements the shared second half of
// check_blockage and trust_promotion: blind-issue a MigrationKey
// credential over (id revealed, bucket blinded via bucketEnc), then
// compute one encrypted migration-table row per migType route
// registered in the issuer's inventory. Because id is already known to
// the issuer in the clear (it was revealed by the companion Lox
// showing) and from_bucket ranges over the issuer's own public bucket
// ids, the issuer can compute Qk_i = (xk0+xk1*id+xk2*from_i)*Pk for
// every route directly, without ever learning which one matches the
// requester's real, still-hidden bucket.
func (iss *Issuer) buildMigrationKeyResponse(migType cred.MigrationType, id *group.Scalar, bucketEnc *cred.Ciphertext, userPub *group.Point, rng io.Reader) (*migrationKeyResponse, error) {
	revealed := map[int]*group.Scalar{cred.MigrationKeyID: id}
	blinded := map[int]*cred.BlindAttr{cred.MigrationKeyFromBucket: {Enc: bucketEnc}}
	issuance, _, err := blindIssueAndProve("migrationkey", iss.MigrationKey.Current().Priv, revealed, blinded, userPub, rng)
	if err != nil {
		return nil, err
	}

	Pk := issuance.Result.P
	mkPriv := iss.MigrationKey.Current().Priv
	migPriv := iss.Migration.Current().Priv
	idCoeff := mkPriv.X[0].Add(mkPriv.X[cred.MigrationKeyID].Mul(id))

	table := make(migrationtable.Table)
	for _, pair := range iss.Migrations[migType] {
		fromKey, ok := iss.Bridges.Keys[pair.From]
		if !ok {
			continue
		}
		toKey, ok := iss.Bridges.Keys[pair.To]
		if !ok {
			continue
		}
		fromPacked := cred.PackBucket(pair.From, fromKey)
		toPacked := cred.PackBucket(pair.To, toKey)

		coeff := idCoeff.Add(mkPriv.X[cred.MigrationKeyFromBucket].Mul(fromPacked))
		Qk := Pk.Mul(coeff)

		mac, err := cred.IssueWithP(migPriv, Pk, cred.MigrationAttrs{
			LoxID:      id,
			FromBucket: fromPacked,
			ToBucket:   toPacked,
			Type:       migType,
		}.Slice())
		if err != nil {
			return nil, err
		}

		label, sealed, err := migrationtable.EncryptEntry(id, fromPacked, Qk, &migrationtable.Entry{ToBucket: toPacked, P: Pk, Q: mac.Q}, rng)
		if err != nil {
			return nil, err
		}
		table[label] = sealed
	}

	return &migrationKeyResponse{Issuance: issuance, Table: table}, nil
}
