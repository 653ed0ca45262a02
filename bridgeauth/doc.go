// Package bridgeauth declares the external collaborator interfaces
// §6 names as out of scope for the protocol engine itself: the bridge
// inventory and reachability oracle, the bridge-distribution signature
// that authenticates open-invitation tokens, the date source, and the
// persistent state sink. It also ships minimal in-memory
// implementations of each, sufficient for tests, the CLI, and the
// benchmark — never for production use, where an issuer deployment
// supplies its own.
package bridgeauth
