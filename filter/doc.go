// Package filter implements the issuer's single-use replay filters
// (§4.4): a persistent set keyed by a scalar (a credential's id,
// inv_id, or invite_id) supporting a non-mutating Check and a
// mutating Consult, plus the parallel retired-generation vectors key
// rotation requires so a credential minted under an old key can still
// be redeemed exactly once after its key retires.
package filter
