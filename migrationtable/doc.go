// Package migrationtable implements the encrypted migration table of
// §4.3: a mapping from a per-user, per-bucket derived label to an
// AES-128-GCM-encrypted (to_bucket, P, Q) entry, returned in full on
// every check_blockage request so traffic analysis cannot distinguish
// blocked from non-blocked users beyond the existence of a row.
package migrationtable
