// Package group provides the prime-order group the credential algebra is
// built over.
//
// The group is realized as the BLS12-381 G1 subgroup from
// github.com/consensys/gnark-crypto, used purely as a discrete-log group:
// no pairing is ever computed here, and G2 never appears. Two independent
// generators A and B are derived once at package init by hashing
// domain-separated seeds onto the curve and clearing the cofactor, the
// same way the teacher corpus's GenerateGenerators derives per-message
// generators.
//
// Points compress to PointSize bytes (48, not the 32 a Ristretto point
// would use — see SPEC_FULL.md section A). Scalars are field elements
// mod Order and compress to ScalarSize bytes.
package group
