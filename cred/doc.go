// Package cred implements the credential algebra of §4.1: algebraic
// MAC issuance, the blind-show transformation, and the blind-issue
// transformation, plus the typed attribute records of §3 (Lox,
// Migration, Invitation, BucketReachability, MigrationKey).
//
// Every exported type here is a building block shared by all ten
// protocols in packages issuer and client; no protocol re-derives the
// MAC or ElGamal algebra on its own.
package cred
