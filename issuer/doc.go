// Package issuer implements the Issuer side of all ten protocols: the
// key/filter state machine (§5) and one handler per protocol, each
// verifying a combined showing+issuance proof, consulting the right
// replay filter, and blind-issuing the resulting credentials. Handlers
// never return anything but the single ErrVerificationFailure sentinel
// on any check failure, per §4.6.
package issuer
