package cred

import "github.com/asv/lox/zkp"

// MigrationLoxPlan is the old Lox credential's showing plan shared by
// migration and blockage_migration: id and trust_level revealed (the
// issuer checks trust_level's precondition itself), bucket blinded and
// linked to the Migration credential's from_bucket, the remaining
// attributes blinded but unlinked to anything else in the request.
var MigrationLoxPlan = AttrPlan{
	Revealed: []int{LoxID, LoxTrustLevel},
	Blinded:  []int{LoxBucket, LoxLevelSince, LoxInvitesRemaining, LoxBlockages},
}

// MigrationCredPlan is the Migration credential's showing plan: lox_id
// and migration_type revealed (the issuer already knows id from the
// companion Lox showing and checks the type matches the protocol being
// run), from_bucket and to_bucket blinded and linked respectively to
// the old Lox's bucket and the new Lox's blind-issued bucket.
var MigrationCredPlan = AttrPlan{
	Revealed: []int{MigrationLoxID, MigrationType_},
	Blinded:  []int{MigrationFromBucket, MigrationToBucket},
}

// MigrationNewBucketIdx namespaces the EncAttrConstraints call tying
// the new Lox's blind-issued bucket ciphertext to the shown Migration
// credential's to_bucket.
const MigrationNewBucketIdx = 1

// MigrationNewBlockagesIdx namespaces blockage_migration's extra
// EncAttrConstraints call tying the new Lox's blind-issued blockages
// ciphertext (shifted down by the constant 1, so it proves equality to
// the OLD blockages value rather than the new one directly) to the old
// Lox showing's blockages commitment.
const MigrationNewBlockagesIdx = 2

// MigrationSecretNames bundles the shared secret names tying the old
// Lox showing's bucket to the Migration credential's from_bucket, and
// the Migration credential's to_bucket to the new Lox's blind-issued
// bucket.
type MigrationSecretNames struct {
	Lox       map[int]string
	Migration map[int]string
}

// NewMigrationSecretNames builds the shared-name wiring for one
// migration/blockage_migration request, namespaced by ns so
// migration.go and blockagemigration.go don't collide when both are
// compiled into the same binary.
func NewMigrationSecretNames(ns string) MigrationSecretNames {
	return MigrationSecretNames{
		Lox: map[int]string{
			LoxBucket:           ns + "/bucket",
			LoxLevelSince:       ns + "/since",
			LoxInvitesRemaining: ns + "/invremain",
			LoxBlockages:        ns + "/blockages",
		},
		Migration: map[int]string{
			MigrationFromBucket: ns + "/bucket",
			MigrationToBucket:   ns + "/tobucket",
		},
	}
}

// MigrationRequestConstraints merges the old Lox credential's showing,
// the Migration credential's showing, and the new Lox's blinded-bucket
// linkage into one combined statement, mirroring check_blockage's
// single-proof style.
func MigrationRequestConstraints(names MigrationSecretNames) []zkp.Constraint {
	cons := ShowConstraints("lox", MigrationLoxPlan, names.Lox)
	cons = append(cons, ShowConstraints("mig", MigrationCredPlan, names.Migration)...)
	return append(cons, EncAttrConstraints("newlox", MigrationNewBucketIdx, names.Migration[MigrationToBucket])...)
}
