// Package zkp provides a declarative compact Schnorr-proof DSL: callers
// describe a system of linear group equations (point = sum of secret
// scalar * public base) once, and the package compiles it into a
// Fiat-Shamir "compact" proof — a single challenge scalar plus one
// response scalar per secret variable, rather than one commitment point
// per equation. This is the Go analogue of the macro the teacher
// corpus's design documentation describes (see DESIGN NOTES in
// SPEC_FULL.md), modeled after the compact-proof construction used by
// the original Rust lox-library's zkp dependency.
//
// Every protocol in package issuer/client builds one Statement per
// transcript (labeled "<protocol>/request" for the requester's proof,
// e.g. "levelup/request", or "<credential>/issue" for the issuer's
// blind-issuance proof, e.g. "lox/issue") and calls Prove/Verify
// against it; no protocol hand-rolls its own Fiat-Shamir loop.
package zkp
