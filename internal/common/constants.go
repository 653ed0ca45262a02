package common

// WireVersion tags every serialized request/response so a future
// protocol revision can reject or migrate old wire formats instead of
// misparsing them.
const WireVersion = 1

// UpdateGraceGenerations is how many past key generations update_cred
// and update_invite still accept for migration, per §4.1's "update
// proofs must also work across one generation of key rotation"
// requirement: a credential stays migratable for exactly one rotation
// after its signing key is retired, not indefinitely.
const UpdateGraceGenerations = 1
